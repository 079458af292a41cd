package api

import (
	"encoding/json"
	"net/http"

	"github.com/Negativehue/Auxilium/internal/logx"
	"github.com/Negativehue/Auxilium/internal/relay"
)

// GenerateResponse is the success body of POST /generate.
type GenerateResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Log.Error().Err(err).Msg("encode response")
	}
}

// writeRelayError maps err to its status code and caller-facing message.
func writeRelayError(w http.ResponseWriter, err error) {
	re := relay.Classify(err)
	writeJSON(w, re.Status(), ErrorResponse{Error: re.Message})
}

// NotFound answers unknown routes with a JSON error.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not Found"})
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method Not Allowed"})
}
