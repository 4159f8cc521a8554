/*
Package log provides structured logging for Kiln using zerolog.

The log package wraps the zerolog library to provide JSON-structured
logging with component-specific loggers, configurable log levels, and
helper functions for common logging patterns. All logs include timestamps
and support filtering by severity level for production debugging.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - Zerolog instance                         │          │
	│  │  - Initialized via log.Init()               │          │
	│  │  - Thread-safe for concurrent use           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                     │          │
	│  │  - Level: debug/info/warn/error (string)    │          │
	│  │  - Debug: force debug level + call sites    │          │
	│  │  - JSON: machine vs console format          │          │
	│  │  - Output: stdout, file, or custom writer   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Context Loggers                     │          │
	│  │  - WithComponent("executor")                │          │
	│  │  - WithJobID("4b2f6c0e-...")                │          │
	│  │  - WithRuntime("python", "3.11.9")          │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Log Output                       │          │
	│  │  JSON:                                      │          │
	│  │  {"level":"info","component":"executor",    │          │
	│  │   "job_id":"4b2f...","message":"job done"}  │          │
	│  │  Console:                                   │          │
	│  │  2026-08-01T10:30:00Z INF job done          │          │
	│  └────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────┘

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init() before anything else logs
  - Accessible from all Kiln packages
  - Thread-safe concurrent writes

Configuration:
  - Level: free-form string parsed by zerolog ("debug", "info", "warn",
    "error"); unrecognized values fall back to info
  - Debug: the service debug flag; forces debug level and annotates every
    line with its file:line call site
  - JSON: one JSON object per line vs human-readable console
  - Output: io.Writer destination, stdout by default

Context Loggers:
  - WithComponent: one per service component (api, executor, sandbox,
    runtime, supervisor)
  - WithJobID: traces one job's lifecycle across components
  - WithRuntime: carries language and version fields

# Usage

Initializing the Logger:

	import "github.com/cuemby/kiln/pkg/log"

	// Production: JSON at info level
	log.Init(log.Config{Level: "info", JSON: true})

	// Development: console with call sites
	log.Init(log.Config{Level: "info", Debug: true})

	// Tests: discard output
	log.Init(log.Config{Level: "error", Output: io.Discard})

Simple Logging:

	log.Info("service started")
	log.Warn("degraded to direct mode")
	log.Error("probe failed")
	log.Fatal("cannot bind listen address") // exits the process

Structured Logging:

	log.Logger.Info().
		Str("addr", cfg.ListenAddr()).
		Msg("API listening")

Component and Job Loggers:

	apiLog := log.WithComponent("api")
	apiLog.Error().Err(err).Msg("failed to encode response")

	jobLog := log.WithJobID(jobID)
	jobLog.Info().Int("exit_code", out.ExitCode).Msg("job completed")

# Log Levels

Debug:
  - Detailed tracing (runtime cache invalidations)
  - Development and troubleshooting only

Info:
  - Job start/completion, server lifecycle; the production default

Warn:
  - Degradations that keep the service running: direct-mode execution,
    abandoned pipe drains, watcher errors

Error:
  - Failed operations tied to a job or request; always carry .Err(err)

Fatal:
  - Unrecoverable startup failures; logs and exits the process

# Integration Points

This package integrates with:

  - cmd/kiln: initializes from config + flags before anything runs
  - pkg/executor: per-job loggers keyed by job_id
  - pkg/sandbox: probe outcomes and degradation warnings
  - pkg/runtime: package-tree watcher events
  - pkg/supervisor: drain-abandonment warnings
  - pkg/api: request handling errors

# Output Examples

JSON Format (Production):

	{"level":"info","component":"main","version":"dev","mode":"sandboxed (bubblewrap)","time":"2026-08-01T10:30:00Z","message":"starting kiln"}
	{"level":"warn","job_id":"4b2f6c0e","language":"python","version":"3.11","time":"2026-08-01T10:30:02Z","message":"executing job (direct mode - bubblewrap unavailable)"}
	{"level":"info","job_id":"4b2f6c0e","exit_code":0,"wall_time_ms":38,"time":"2026-08-01T10:30:02Z","message":"job completed"}

Console Format (Development):

	2026-08-01T10:30:00Z INF starting kiln component=main mode="sandboxed (bubblewrap)"
	2026-08-01T10:30:02Z INF job completed exit_code=0 job_id=4b2f6c0e wall_time_ms=38

# Design Patterns

Global logger, injected context:
  - The root logger is package-level for ergonomics; everything with
    per-request identity derives a child logger and passes it down

Job tracing:
  - The job_id the client receives in the result equals the job_id in the
    logs, so client reports map directly to server-side history

Structured fields over interpolation:
  - Typed fields (.Str, .Int, .Err) keep logs queryable and injection-safe

# Troubleshooting

No log output:
  - Check: log.Init() ran before the first log call; loggers created
    earlier write nowhere

Debug lines missing in production:
  - Expected: set the debug flag or log_level=debug explicitly

Unparseable level strings:
  - Unrecognized values silently fall back to info; check for typos in
    KILN_LOG_LEVEL or --log-level

# Performance Characteristics

Logging overhead:
  - Disabled level: effectively free; zerolog short-circuits before
    formatting
  - JSON encode: sub-microsecond per line; string fields add tens of
    nanoseconds each
  - Console format: a few times slower than JSON; meant for humans, not
    production volume
  - Debug's Caller annotation adds a runtime.Caller per line; another
    reason the flag is opt-in

Volume expectations:
  - Steady state at info level: two lines per job (start, completion)
    plus server lifecycle; log volume tracks job throughput linearly

# Security

Log content:
  - Job stdout/stderr never enters the logs; captured output belongs to
    the result payload only, so user programs cannot spam or poison the
    service logs
  - Request file contents and stdin are likewise never logged; the logs
    carry identifiers (job_id, language, version) and outcomes
  - Structured fields are injection-safe; user-influenced values always
    travel through .Str, never string concatenation

# Best Practices

Do:
  - Use info in production; debug is for development and incident
    archaeology
  - Derive WithJobID loggers once per job and pass them down
  - Keep .Err(err) on every error line; bare messages lose the cause

Don't:
  - Log inside the supervisor's drain path or other per-byte hot paths
  - Put secrets in config values that get logged at startup
  - Re-Init mid-process except in tests; components hold derived
    loggers that would keep the old output

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - Structured logging: https://www.thoughtworks.com/radar/techniques/structured-logging
  - 12-Factor App Logs: https://12factor.net/logs
*/
package log
