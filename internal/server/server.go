package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Negativehue/Auxilium/internal/api"
	"github.com/Negativehue/Auxilium/internal/config"
	"github.com/Negativehue/Auxilium/internal/inflight"
	"github.com/Negativehue/Auxilium/internal/metrics"
	"github.com/Negativehue/Auxilium/internal/relay"
)

// Options carries the process-wide collaborators of the router. Nil fields
// are replaced with fresh instances.
type Options struct {
	Version  string
	Registry *prometheus.Registry
	Inflight *inflight.Counter
}

// New constructs the HTTP handler for the relay.
func New(cfg config.ServerConfig, rel *relay.Relay, opts Options) http.Handler {
	if opts.Registry == nil {
		opts.Registry = metrics.NewRegistry()
	}
	if opts.Inflight == nil {
		opts.Inflight = &inflight.Counter{}
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	r := chi.NewRouter()
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))
	}
	for _, m := range api.MiddlewareChain() {
		r.Use(m)
	}
	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/healthz", api.HealthHandler())
	r.Get("/openapi.json", api.OpenAPIHandler(opts.Version))
	r.With(opts.Inflight.Middleware()).Post("/generate", api.GenerateHandler(rel, cfg.MaxBodyBytes))

	if cfg.MetricsOnAPIPort() {
		r.Handle("/metrics", MetricsHandler(opts.Registry))
	}
	return r
}

// MetricsHandler serves the registry in the Prometheus exposition format.
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
