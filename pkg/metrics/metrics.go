package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Execution metrics
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiln_executions_total",
			Help: "Total number of executions by language and classification",
		},
		[]string{"language", "classification"},
	)

	ExecutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kiln_execution_duration_seconds",
			Help:    "Wall-clock execution duration in seconds by language",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"language"},
	)

	ExecutionsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kiln_executions_in_flight",
			Help: "Number of executions currently running",
		},
	)

	// Output metrics
	OutputTruncationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiln_output_truncations_total",
			Help: "Total number of truncated output streams by stream name",
		},
		[]string{"stream"},
	)

	// Sandbox metrics
	SandboxJailed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kiln_sandbox_jailed",
			Help: "Whether executions run inside the namespace jail (1 = jailed, 0 = direct)",
		},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiln_api_requests_total",
			Help: "Total number of API requests by path and status",
		},
		[]string{"path", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kiln_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ExecutionsTotal)
	prometheus.MustRegister(ExecutionDuration)
	prometheus.MustRegister(ExecutionsInFlight)
	prometheus.MustRegister(OutputTruncationsTotal)
	prometheus.MustRegister(SandboxJailed)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
