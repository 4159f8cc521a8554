/*
Package metrics exposes Prometheus metrics for the Kiln service.

Collectors are package-level and registered at init, following the
standard client_golang pattern: components record into the collectors
directly, and the API server mounts Handler at /metrics.

# Metrics

Execution:

	kiln_executions_total{language, classification}
	    Counter. One increment per job, labeled with its outcome
	    (ok, runtime_not_found, workspace_error, sandbox_error,
	    timeout, internal_error).

	kiln_execution_duration_seconds{language}
	    Histogram. Wall-clock job duration; buckets span 100ms to the
	    5-minute ceiling so timeout pileups are visible.

	kiln_executions_in_flight
	    Gauge. Jobs currently running.

Output:

	kiln_output_truncations_total{stream}
	    Counter. Streams (stdout/stderr) that hit their capture cap.

Sandbox:

	kiln_sandbox_jailed
	    Gauge. 1 when jobs run inside the namespace jail, 0 in direct
	    mode. Alert on 0: the service is running without containment.

API:

	kiln_api_requests_total{path, status}
	kiln_api_request_duration_seconds{path}
	    Request counts and latencies per route.

# Usage

Recording (from the executor):

	metrics.ExecutionsInFlight.Inc()
	defer metrics.ExecutionsInFlight.Dec()
	...
	metrics.ExecutionsTotal.WithLabelValues(lang, string(classification)).Inc()
	metrics.ExecutionDuration.WithLabelValues(lang).Observe(elapsed.Seconds())

Serving:

	mux.Handle("GET /metrics", metrics.Handler())

# Useful Queries

Error rate by classification:

	sum by (classification) (rate(kiln_executions_total{classification!="ok"}[5m]))

Timeout fraction:

	sum(rate(kiln_executions_total{classification="timeout"}[5m]))
	  / sum(rate(kiln_executions_total[5m]))

P95 job duration per language:

	histogram_quantile(0.95,
	  sum by (language, le) (rate(kiln_execution_duration_seconds_bucket[5m])))

Degraded containment:

	kiln_sandbox_jailed == 0

# Alerting Suggestions

  - kiln_sandbox_jailed == 0 for more than a few minutes: the host lost
    jail capability; jobs are running with kernel limits only
  - rising internal_error rate: a service bug, not user programs failing
  - kiln_executions_in_flight pinned at a plateau: jobs wedged at the
    wall-clock ceiling, or the host cannot keep up

# Integration Points

This package integrates with:

  - pkg/executor: execution, truncation, and in-flight metrics
  - pkg/api: request metrics and the exposition endpoint

# Cardinality Notes

Label values are bounded by construction: language comes from the closed
supported set, classification from the closed outcome vocabulary, path
from the fixed route table, and status from the handful of codes the
handlers emit. Nothing request-derived (versions, file names, job ids)
becomes a label.

# Design Patterns

Package-level collectors:
  - Metrics are declared as vars and registered in init, the standard
    client_golang shape; recording sites reference them directly with
    no indirection or dependency injection
  - The cost of the pattern — one global registry — is acceptable
    because the collector set is small, closed, and label-bounded

Record at the source of truth:
  - The executor records outcomes because it assigns classifications;
    the API layer records transport facts it owns (status, latency);
    neither reaches into the other's domain

Gauges for states, counters for events:
  - kiln_sandbox_jailed and kiln_executions_in_flight describe current
    state; everything countable is monotonic and rate()-able

# Dashboard Sketch

A minimal service dashboard:

	Row 1: request rate by path; execute latency p50/p95
	Row 2: executions by classification (stacked); in-flight gauge
	Row 3: duration histogram heatmap by language
	Row 4: truncations by stream; sandbox mode gauge as a state timeline

The classification stack is the single most informative panel: a healthy
service is a thick "ok" band with thin "timeout" edges; any visible
workspace_error/sandbox_error/internal_error band is actionable.

# Troubleshooting

Metric absent from /metrics:
  - Counters with label dimensions appear only after first increment;
    a fresh service legitimately lacks kiln_executions_total series
  - Plain gauges (in-flight, sandbox mode) are always present

Double-registration panic on startup:
  - Something imported the package twice under different module paths;
    check replace directives and vendoring

# See Also

  - client_golang: https://github.com/prometheus/client_golang
  - Histogram best practices: https://prometheus.io/docs/practices/histograms/
  - Metric and label naming: https://prometheus.io/docs/practices/naming/
*/
package metrics
