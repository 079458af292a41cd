package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Negativehue/Auxilium/internal/secret"
)

const (
	// DefaultModel is used when Options.Model is empty.
	DefaultModel = "gemini-1.5-flash"
	// DefaultTimeout bounds one upstream call when Options.Timeout is unset.
	DefaultTimeout = 60 * time.Second

	maxReplyBytes = 8 << 20
)

// ErrMissingAPIKey is returned by New when no credential is configured.
var ErrMissingAPIKey = errors.New("gemini: missing api key")

// Options configures a Client.
type Options struct {
	// BaseURL is the full generateContent URL; "{model}" is replaced by Model.
	BaseURL    string
	Model      string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client posts prompts to the generateContent endpoint. It is safe for
// concurrent use and holds no per-request state.
type Client struct {
	hc       *http.Client
	endpoint *url.URL
	apiKey   string
	timeout  time.Duration
}

// New validates opts and returns a Client.
func New(opts Options) (*Client, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	raw := strings.ReplaceAll(opts.BaseURL, "{model}", url.PathEscape(opts.Model))
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("gemini: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gemini: unsupported url scheme %q", u.Scheme)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{hc: hc, endpoint: u, apiKey: key, timeout: opts.Timeout}, nil
}

// Endpoint returns the request URL with the credential masked.
func (c *Client) Endpoint() string {
	return c.url(secret.Mask(c.apiKey))
}

func (c *Client) url(key string) string {
	u := *c.endpoint
	q := u.Query()
	q.Set("key", key)
	u.RawQuery = q.Encode()
	return u.String()
}

// GenerateContent posts prompt upstream and returns the status and body as
// received. A non-nil error means no usable HTTP response was obtained;
// its text never contains the credential.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (Reply, error) {
	body, err := json.Marshal(NewTextRequest(prompt))
	if err != nil {
		return Reply{}, fmt.Errorf("encode request: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(c.apiKey), bytes.NewReader(body))
	if err != nil {
		return Reply{}, c.redact(fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return Reply{}, c.redact(err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return Reply{StatusCode: resp.StatusCode}, c.redact(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode/100 != 2 {
		// error bodies end up in logs
		b = []byte(secret.Redact(string(b), c.apiKey))
	}
	return Reply{StatusCode: resp.StatusCode, Body: b}, nil
}

// redact rewrites err so the credential cannot leak through *url.Error,
// which embeds the full request URL. errors.Is still sees the cause.
func (c *Client) redact(err error) error {
	return &redactedError{msg: secret.Redact(err.Error(), c.apiKey), cause: err}
}

type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error {
	var ue *url.Error
	if errors.As(e.cause, &ue) {
		return ue.Err
	}
	return e.cause
}
