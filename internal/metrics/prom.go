package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "auxilium_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "relay"},
		},
		[]string{"date", "sha", "version"},
	)

	relayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auxilium_relay_requests_total",
			Help: "Generate requests by outcome",
		},
		[]string{"outcome"},
	)

	relayInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "auxilium_relay_inflight",
			Help: "Generate requests currently waiting on the upstream",
		},
	)

	upstreamResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auxilium_upstream_responses_total",
			Help: "Upstream responses by HTTP status code; 0 means no response",
		},
		[]string{"code"},
	)

	upstreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auxilium_upstream_request_duration_seconds",
			Help:    "Duration of upstream generateContent calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)
)

// Register registers all relay collectors with r.
func Register(r prometheus.Registerer) {
	r.MustRegister(buildInfo, relayRequests, relayInflight, upstreamResponses, upstreamDuration)
}

// NewRegistry returns a registry holding the relay collectors plus the Go
// runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	Register(reg)
	return reg
}

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordOutcome counts one finished generate request.
func RecordOutcome(outcome string) {
	relayRequests.WithLabelValues(outcome).Inc()
}

// UpstreamStart marks an upstream call as in flight.
func UpstreamStart() { relayInflight.Inc() }

// UpstreamEnd records a finished upstream call. code is 0 when no HTTP
// response was received.
func UpstreamEnd(code int, d time.Duration) {
	relayInflight.Dec()
	upstreamResponses.WithLabelValues(strconv.Itoa(code)).Inc()
	upstreamDuration.Observe(d.Seconds())
}
