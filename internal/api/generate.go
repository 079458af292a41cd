package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Negativehue/Auxilium/internal/logx"
	"github.com/Negativehue/Auxilium/internal/relay"
)

// GenerateHandler handles POST /generate. Bodies larger than maxBody bytes
// are rejected as malformed.
func GenerateHandler(rel *relay.Relay, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				err = fmt.Errorf("body exceeds %d bytes", mbe.Limit)
			}
			logx.Log.Warn().Err(err).Msg("read generate body")
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Malformed request body: " + err.Error()})
			return
		}

		req, err := relay.DecodeRequest(body)
		if err != nil {
			logx.Log.Debug().Err(err).Msg("decode generate body")
			writeRelayError(w, err)
			return
		}

		text, err := rel.Generate(r.Context(), req)
		if err != nil {
			writeRelayError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, GenerateResponse{Response: text})
	}
}
