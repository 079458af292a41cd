package api

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime/debug"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Negativehue/Auxilium/internal/logx"
	"github.com/Negativehue/Auxilium/internal/relay"
)

// logBodyLimit caps how much of a request body is buffered for debug logs.
// The rest is streamed to the handler untouched.
const logBodyLimit = 4 << 10

type prefixedBody struct {
	io.Reader
	io.Closer
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (lw *loggingResponseWriter) WriteHeader(status int) {
	if !lw.wroteHeader {
		lw.status = status
		lw.wroteHeader = true
	}
	lw.ResponseWriter.WriteHeader(status)
}

func (lw *loggingResponseWriter) Write(b []byte) (int, error) {
	lw.wroteHeader = true
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		logx.Log.Debug().Bytes("body", b).Msg("http response chunk")
	}
	return lw.ResponseWriter.Write(b)
}

func (lw *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := lw.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("hijacker not supported")
}

func (lw *loggingResponseWriter) Flush() {
	if f, ok := lw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MiddlewareChain is applied to every route, outermost first.
func MiddlewareChain() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		chiMiddleware.RequestID,
		requestLogger,
		recoverer,
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lvl := zerolog.GlobalLevel()
		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		reqID := chiMiddleware.GetReqID(r.Context())
		if lvl <= zerolog.DebugLevel {
			var body []byte
			if r.Body != nil {
				body, _ = io.ReadAll(io.LimitReader(r.Body, logBodyLimit))
				r.Body = prefixedBody{Reader: io.MultiReader(bytes.NewReader(body), r.Body), Closer: r.Body}
			}
			logx.Log.Debug().Str("request_id", reqID).Str("method", r.Method).Str("url", r.URL.String()).Bytes("body", body).Msg("http request")
		}
		next.ServeHTTP(lrw, r)
		if lvl <= zerolog.InfoLevel {
			logx.Log.Info().Str("request_id", reqID).Str("method", r.Method).Str("url", r.URL.String()).Int("status", lrw.status).Msg("http")
		}
	})
}

// recoverer turns a panic into a JSON 500 so no fault escapes the request.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			logx.Log.Error().Err(err).Str("request_id", chiMiddleware.GetReqID(r.Context())).
				Bytes("stack", debug.Stack()).Msg("panic in handler")
			writeRelayError(w, relay.Internal(err))
		}()
		next.ServeHTTP(w, r)
	})
}
