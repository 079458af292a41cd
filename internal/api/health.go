package api

import (
	"net/http"

	"github.com/Negativehue/Auxilium/internal/serverstate"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// HealthHandler reports 503 once the server starts draining so load
// balancers stop routing new requests to it.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if serverstate.IsDraining() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: serverstate.StatusDraining})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
