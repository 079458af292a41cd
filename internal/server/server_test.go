package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Negativehue/Auxilium/internal/config"
	"github.com/Negativehue/Auxilium/internal/gemini"
	"github.com/Negativehue/Auxilium/internal/inflight"
	"github.com/Negativehue/Auxilium/internal/relay"
)

type stubProvider struct {
	reply gemini.Reply
}

func (s stubProvider) GenerateContent(context.Context, string) (gemini.Reply, error) {
	return s.reply, nil
}

func testConfig() config.ServerConfig {
	cfg := config.ServerConfig{GeminiAPIKey: "k", Port: 8080, MetricsAddr: ":8080"}
	cfg.SetDefaults()
	return cfg
}

func newTestServer(t *testing.T, cfg config.ServerConfig, opts Options) *httptest.Server {
	t.Helper()
	rel := relay.New(stubProvider{reply: gemini.Reply{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"candidates":[{"content":{"parts":[{"text":"Hello world"}]}}]}`),
	}})
	ts := httptest.NewServer(New(cfg, rel, opts))
	t.Cleanup(ts.Close)
	return ts
}

func TestGenerateRoute(t *testing.T) {
	ts := newTestServer(t, testConfig(), Options{})

	resp, err := http.Post(ts.URL+"/generate", "application/json",
		strings.NewReader(`{"summary_type":"s","reviewer_type":"r","extracted_text":"t"}`))
	if err != nil {
		t.Fatalf("POST /generate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["response"] != "Hello world" {
		t.Fatalf("body = %v", out)
	}
}

func TestGenerateWrongMethod(t *testing.T) {
	ts := newTestServer(t, testConfig(), Options{})

	resp, err := http.Get(ts.URL + "/generate")
	if err != nil {
		t.Fatalf("GET /generate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q", ct)
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, testConfig(), Options{})

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET /nope: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpointDefaultPort(t *testing.T) {
	ts := newTestServer(t, testConfig(), Options{})

	if _, err := http.Post(ts.URL+"/generate", "application/json", strings.NewReader(`{}`)); err != nil {
		t.Fatalf("POST /generate: %v", err)
	}
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), `auxilium_relay_requests_total{outcome="invalid_request"}`) {
		t.Fatalf("missing relay metrics in:\n%s", data)
	}
}

func TestMetricsEndpointSeparatePort(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsAddr = ":9090"
	ts := newTestServer(t, cfg, Options{})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHealthzAndOpenAPI(t *testing.T) {
	ts := newTestServer(t, testConfig(), Options{Version: "1.2.3"})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/openapi.json")
	if err != nil {
		t.Fatalf("GET /openapi.json: %v", err)
	}
	defer resp.Body.Close()
	var doc struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode openapi: %v", err)
	}
	if doc.Info.Version != "1.2.3" {
		t.Fatalf("version = %q", doc.Info.Version)
	}
	if _, ok := doc.Paths["/generate"]; !ok {
		t.Fatalf("missing /generate in %v", doc.Paths)
	}
}

func TestCORSAllowedOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://example.com"}
	ts := newTestServer(t, cfg, Options{})

	req, _ := http.NewRequest("GET", ts.URL+"/healthz", nil)
	req.Header.Set("Origin", "https://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	resp.Body.Close()
	if ao := resp.Header.Get("Access-Control-Allow-Origin"); ao != "https://example.com" {
		t.Fatalf("expected allowed origin header, got %q", ao)
	}

	req2, _ := http.NewRequest("GET", ts.URL+"/healthz", nil)
	req2.Header.Set("Origin", "https://evil.com")
	resp2, err := http.DefaultClient.Do(req2)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	resp2.Body.Close()
	if ao := resp2.Header.Get("Access-Control-Allow-Origin"); ao != "" {
		t.Fatalf("expected no allowed origin header, got %q", ao)
	}
}

func TestInflightCounterReleased(t *testing.T) {
	counter := &inflight.Counter{}
	ts := newTestServer(t, testConfig(), Options{Inflight: counter})

	resp, err := http.Post(ts.URL+"/generate", "application/json",
		strings.NewReader(`{"summary_type":"s","reviewer_type":"r","extracted_text":"t"}`))
	if err != nil {
		t.Fatalf("POST /generate: %v", err)
	}
	resp.Body.Close()
	if n := counter.Load(); n != 0 {
		t.Fatalf("in-flight = %d after request", n)
	}
}
