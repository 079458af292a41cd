package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/Negativehue/Auxilium/internal/gemini"
	"github.com/Negativehue/Auxilium/internal/logx"
	"github.com/Negativehue/Auxilium/internal/metrics"
)

const logBodyExcerpt = 512

// Provider turns a prompt into an upstream reply. *gemini.Client implements
// it; tests substitute scripted doubles.
type Provider interface {
	GenerateContent(ctx context.Context, prompt string) (gemini.Reply, error)
}

// Relay validates generation requests, forwards the derived prompt to the
// provider and normalizes the outcome. It holds no per-request state.
type Relay struct {
	provider Provider
}

// New returns a Relay backed by p.
func New(p Provider) *Relay {
	return &Relay{provider: p}
}

// Generate runs one request/response cycle. On failure the returned error is
// an *Error whose Kind selects the HTTP status.
func (r *Relay) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		metrics.RecordOutcome("invalid_request")
		return "", err
	}

	callID := uuid.NewString()
	reqID := chiMiddleware.GetReqID(ctx)
	logx.Log.Debug().Str("request_id", reqID).Str("call_id", callID).
		Str("summary_type", req.SummaryType).Str("reviewer_type", req.ReviewerType).
		Int("text_bytes", len(req.ExtractedText)).Msg("dispatch")

	reply, dur, err := r.call(ctx, req.Prompt())
	if err != nil {
		metrics.RecordOutcome("upstream_transport")
		logx.Log.Error().Err(err).Str("request_id", reqID).Str("call_id", callID).Dur("duration", dur).Msg("upstream unreachable")
		return "", &Error{
			Kind:    KindUpstreamTransport,
			Message: MsgServerError + ": " + err.Error(),
			Err:     fmt.Errorf("%w: %w", ErrUpstreamTransport, err),
		}
	}

	if reply.StatusCode != http.StatusOK {
		metrics.RecordOutcome("upstream_status")
		logx.Log.Warn().Str("request_id", reqID).Str("call_id", callID).Int("upstream_status", reply.StatusCode).
			Str("upstream_body", excerpt(reply.Body)).Dur("duration", dur).Msg("upstream rejected request")
		return "", &Error{
			Kind:    KindUpstreamProtocol,
			Message: fmt.Sprintf("%s (upstream status %d)", MsgUnavailable, reply.StatusCode),
			Err:     fmt.Errorf("%w: %d", ErrUpstreamStatus, reply.StatusCode),
		}
	}

	text, ok := gemini.ExtractText(reply.Body)
	if !ok {
		metrics.RecordOutcome("invalid_response")
		logx.Log.Warn().Str("request_id", reqID).Str("call_id", callID).
			Str("upstream_body", excerpt(reply.Body)).Msg("upstream response has no text")
		return "", &Error{Kind: KindUpstreamProtocol, Message: MsgInvalidResponse, Err: ErrInvalidResponse}
	}

	metrics.RecordOutcome("success")
	logx.Log.Info().Str("request_id", reqID).Str("call_id", callID).Dur("duration", dur).
		Int("response_bytes", len(text)).Msg("complete")
	return text, nil
}

// call invokes the provider once. The in-flight gauge is released even if
// the provider panics.
func (r *Relay) call(ctx context.Context, prompt string) (reply gemini.Reply, dur time.Duration, err error) {
	start := time.Now()
	metrics.UpstreamStart()
	defer func() {
		dur = time.Since(start)
		metrics.UpstreamEnd(reply.StatusCode, dur)
	}()
	reply, err = r.provider.GenerateContent(ctx, prompt)
	return reply, dur, err
}

// IsValidation reports whether err was caused by the caller's input.
func IsValidation(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == KindValidation
}

func excerpt(b []byte) string {
	if len(b) > logBodyExcerpt {
		return string(b[:logBodyExcerpt]) + "..."
	}
	return string(b)
}
