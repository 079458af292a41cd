package relay

import (
	"errors"
	"fmt"
	"net/http"
)

// Caller-facing messages.
const (
	MsgMissingParameters = "Missing required parameters"
	MsgInvalidResponse   = "Invalid AI response format."
	MsgUnavailable       = "AI service unavailable, please try again later."
	MsgServerError       = "Server Error"
)

var (
	ErrMissingParameters = errors.New("missing required parameters")
	ErrMalformedBody     = errors.New("malformed request body")
	ErrUpstreamStatus    = errors.New("upstream returned non-200 status")
	ErrInvalidResponse   = errors.New("upstream response has no text")
	ErrUpstreamTransport = errors.New("upstream transport failure")
)

// Kind classifies a relay failure.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUpstreamTransport
	KindUpstreamProtocol
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpstreamTransport:
		return "upstream_transport"
	case KindUpstreamProtocol:
		return "upstream_protocol"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Status is the HTTP status reported to the caller for k.
func (k Kind) Status() int {
	if k == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error is a classified relay failure. Message is safe to return to the
// caller; Err carries the cause for logs and errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Status is the HTTP status for e.
func (e *Error) Status() int { return e.Kind.Status() }

// Internal classifies an unexpected fault, such as a recovered panic.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: MsgServerError + ": " + cause.Error(), Err: cause}
}

// Classify returns err as an *Error, treating unknown errors as internal.
func Classify(err error) *Error {
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	return Internal(err)
}
