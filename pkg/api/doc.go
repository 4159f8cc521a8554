/*
Package api serves the JSON-over-HTTP interface of the Kiln service.

The server is a plain net/http ServeMux with method-qualified patterns, a
permissive CORS layer, per-route Prometheus instrumentation, and graceful
shutdown. Request validation happens here, at the boundary; everything past
it deals in normalized, immutable requests.

# Architecture

	┌───────────────────── API SERVER ──────────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐           │
	│  │            CORS middleware                  │           │
	│  │  - Access-Control-Allow-Origin: *           │           │
	│  │  - OPTIONS preflight → 204                  │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │            Instrumented mux                 │           │
	│  │  - kiln_api_requests_total{path,status}     │           │
	│  │  - kiln_api_request_duration_seconds{path}  │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                      │
	│    ┌────────────────┼──────────────┬───────────────┐      │
	│    ▼                ▼              ▼               ▼      │
	│  GET /         GET /health   GET /api/v2/    POST /api/v2/│
	│  identity      capability    runtimes        execute      │
	│                + mode        enumeration     validate+run │
	│                                                            │
	│                      GET /metrics (Prometheus)             │
	└───────────────────────────────────────────────────────────┘

# Endpoints

GET /
  - Service identity: {"name", "version", "status": "running"}

GET /health
  - {"status", "execution_mode", "jail_installed", "jail_working"}
  - status is "healthy" iff the jail is functional and enabled;
    direct mode is a "degraded" service, still accepting jobs
  - execution_mode is human-readable:
    "sandboxed (bubblewrap)", "direct (bubblewrap not installed)",
    "direct (bubblewrap installed but not working)",
    "direct (bubblewrap disabled by configuration)"

GET /api/v2/runtimes
  - {"runtimes": [{"language", "version", "runtime": "<lang>-<version>"}]}
  - Enumerates every version directory discovered under the package root

POST /api/v2/execute
  - Body: an ExecRequest (see pkg/types)
  - 200 with an ExecResult for every job that was admitted, including
    jobs that failed (missing runtime, timeout, sandbox error)
  - 422 with a machine-readable detail for requests that never became
    jobs (unknown language, oversized files, bad limits, malformed body)

GET /metrics
  - Prometheus exposition (see pkg/metrics)

# Wire Contract

HTTP status encodes "could we run the job at all", not "did the user's
code succeed":

	Request problem                      HTTP    Body
	────────────────────────────────────────────────────────────
	malformed JSON                       422     {"detail": "..."}
	validation failure                   422     {"detail": {field, message}}
	job admitted, any outcome            200     ExecResult
	unknown route                        404     —

So a client distinguishes three planes: transport errors (non-2xx),
job-level failures (200 + classification), and program-level failures
(200 + classification "ok" + the child's own nonzero exit code).

Example 422 detail:

	{"detail": {"field": "files[0].name", "message": "file name escapes the workspace"}}

Example result envelope:

	{
	  "language": "python",
	  "version": "3.11",
	  "job_id": "4b2f6c0e-...",
	  "classification": "ok",
	  "run": {
	    "stdout": "42\n", "stderr": "", "output": "42\n",
	    "code": 0, "cpu_time": 11, "wall_time": 38, "memory": 9650176
	  }
	}

# Usage

Serving:

	registry := runtime.NewRegistry(cfg.PackagesDir)
	builder := sandbox.NewBuilder(cfg)
	exec := executor.New(cfg, registry, builder)

	server := api.NewServer(cfg, exec, registry, builder)
	go func() { errCh <- server.Start() }()
	...
	server.Shutdown(ctx) // drains in-flight jobs

Embedding in tests:

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

# Request Lifecycle

 1. CORS middleware answers preflights and stamps response headers.
 2. The body is bounded by MaxBytesReader at the total-files budget plus
    framing slack; larger bodies could never validate.
 3. The request is decoded, normalized (language lowercased, unset limits
    defaulted), and validated against configured limits.
 4. The executor runs the job synchronously; the connection blocks until
    the child is reaped, so the server's write timeout sits above the
    maximum wall-clock limit.
 5. The result is JSON-encoded with Content-Type: application/json.

# Timeouts

	ReadTimeout   30s                      slow-client defense
	WriteTimeout  max_time_limit + 30s     must outlive the longest job
	IdleTimeout   60s                      keep-alive hygiene

# Integration Points

This package integrates with:

  - pkg/executor: one Execute call per admitted job
  - pkg/types: request decoding, normalization, validation
  - pkg/runtime: runtimes enumeration and the supported-language set
  - pkg/sandbox: capability and execution mode for /health
  - pkg/metrics: request metrics and the /metrics handler
  - pkg/config: listen address, limits, service identity

# Security Notes

The service has no authentication by design; deployments front it with
their own gateway. The permissive CORS policy reflects that: there are no
credentials to protect, and the sandbox — not the HTTP layer — is the
security boundary for the code being executed. The body size bound and
validation keep the request plane from becoming a resource exhaustion
vector before a job is ever admitted.

# Troubleshooting

422 on every execute:
  - Check: the detail field; it names the offending request field
  - Check: language is in the supported set (the 422 message lists it;
    /api/v2/runtimes lists installed versions, not the supported set)

200 but exit code 127 and "not found" message:
  - The request validated but no installed runtime matched; install the
    version or use a prefix that matches an installed one

Client timeouts on long jobs:
  - Results return only after termination; clients must allow
    max_time_limit plus teardown margin before giving up

Empty runtimes list:
  - Check: packages_dir layout is <root>/<language>/<version>/bin/
  - Note: with the package-tree watcher running, new installs appear as
    soon as the watcher observes the directory change

# Design Patterns

Boundary validation:
  - Decode, normalize, validate, then hand an immutable request to the
    executor; nothing downstream re-checks fields
  - The supported-language set comes from pkg/runtime, so the validator
    and the resolver can never disagree

Two failure planes:
  - 422 answers "this never became a job"; 200 + classification answers
    "the job ran, here is what happened" — clients branch on exactly one
    of the two, never both

Thin handlers:
  - Handlers translate between HTTP and the domain and nothing else;
    every decision that matters (classification, truncation, mode) is
    made in the packages they call

Instrumentation as wrapping:
  - Metrics live in a handler decorator with a status-capturing
    ResponseWriter; handlers stay unaware of Prometheus

# Complete Example

Driving the API with curl:

	# identity
	curl -s localhost:8000/ | jq
	# {"name":"Kiln Code Execution Engine","version":"2.0.0","status":"running"}

	# capability
	curl -s localhost:8000/health | jq
	# {"status":"healthy","execution_mode":"sandboxed (bubblewrap)",
	#  "jail_installed":true,"jail_working":true}

	# run a program
	curl -s -X POST localhost:8000/api/v2/execute \
	  -H 'Content-Type: application/json' \
	  -d '{"language":"python","version":"3.11",
	       "files":[{"name":"main.py","content":"print(6*7)"}],
	       "time_limit":5,"memory_limit":128}' | jq .run.stdout
	# "42\n"

	# a rejected request
	curl -s -X POST localhost:8000/api/v2/execute \
	  -d '{"language":"cobol","version":"1","files":[{"name":"x","content":""}]}' \
	  | jq .detail
	# {"field":"language","message":"language 'cobol' not supported. ..."}

# Monitoring

	kiln_api_requests_total{path, status}
	    422 spikes: a misbehaving client, not failing jobs
	    5xx presence: framework-level trouble; handlers do not emit 5xx
	kiln_api_request_duration_seconds{path}
	    /api/v2/execute latency tracks job wall time by construction;
	    watch the other routes for host saturation instead

Health probing: point liveness at GET / and readiness at GET /health,
treating "degraded" as ready-but-alerting — the service still executes
jobs in direct mode, with reduced containment.

# Deployment

The server binds host:port from configuration and shuts down gracefully:
Shutdown stops accepting connections and lets in-flight jobs finish
within the caller's context (cmd/kiln allows 30 seconds, comfortably
above the drain needs of anything but maximum-length jobs).

Because execute responses block for the job's full duration, reverse
proxies in front of the service need their read timeouts raised above
max_time_limit; the server's own write timeout already accounts for it.

# Best Practices

Do:
  - Front the service with a gateway for authentication and rate
    limiting; the API is deliberately open
  - Surface the 422 detail object to end users; it is written to be
    shown ("file content too large: ... Maximum allowed: ...")
  - Treat execution_mode changes as operational events

Don't:
  - Infer job failure from HTTP status; only the classification and
    run.code carry that
  - Poll /api/v2/runtimes aggressively without the watcher running;
    each call rescans the package tree
  - Put a CDN or cache in front of POST /api/v2/execute; every call has
    side effects and a unique result

# See Also

  - pkg/types: the full request/response schema
  - pkg/executor: classification semantics behind the 200 plane
  - pkg/client: the Go encoding of this contract
  - Go 1.22 ServeMux patterns: https://pkg.go.dev/net/http#ServeMux
*/
package api
