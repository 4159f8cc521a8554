/*
Package executor orchestrates the execution pipeline for one job at a time.

Per request the executor generates a job id, resolves the runtime binary,
materializes the workspace, selects the confinement mode, composes the
argv, supervises the child, and assembles the result record. Failures at
each stage map to a fixed classification and exit code; job-level failures
are results, not errors — callers always receive an ExecResult.

# Architecture

	┌──────────────────── EXECUTION PIPELINE ───────────────────┐
	│                                                            │
	│  ExecRequest (validated at the API boundary)               │
	│        │                                                   │
	│        ▼                                                   │
	│  ┌───────────────┐   failure → runtime_not_found (127)     │
	│  │ Runtime       │                                         │
	│  │ resolution    │   pkg/runtime.Resolve                   │
	│  └──────┬────────┘                                         │
	│         ▼                                                  │
	│  ┌───────────────┐   failure → workspace_error (1)         │
	│  │ Workspace     │                                         │
	│  │ creation      │   pkg/workspace.Create + defer Destroy  │
	│  └──────┬────────┘                                         │
	│         ▼                                                  │
	│  ┌───────────────┐                                         │
	│  │ Mode + argv   │   pkg/sandbox SelectMode/BuildArgv      │
	│  └──────┬────────┘                                         │
	│         ▼                                                  │
	│  ┌───────────────┐   spawn failure → sandbox_error (1)     │
	│  │ Supervision   │   deadline → timeout (124)              │
	│  │               │   pkg/supervisor.Run                    │
	│  └──────┬────────┘                                         │
	│         ▼                                                  │
	│  ┌───────────────┐   panic anywhere → internal_error (1)   │
	│  │ Result        │                                         │
	│  │ assembly      │   ExecResult{classification, run}       │
	│  └───────────────┘                                         │
	└───────────────────────────────────────────────────────────┘

# Classification Table

	Condition                     Classification      Exit  Signal
	─────────────────────────────────────────────────────────────
	unknown language              runtime_not_found   127   —
	missing version/binary        runtime_not_found   127   —
	workspace create/write fails  workspace_error       1   —
	spawn (fork/exec) fails       sandbox_error         1   —
	child exits normally          ok                  child  —
	child killed by signal        ok                  128+N  name
	wall-clock timeout            timeout             124   SIGKILL
	anything unexpected           internal_error        1   —

The classification is encoded in the orchestration sequence: each pipeline
stage has exactly one failure classification, so no error-type inspection
is needed beyond the stage that produced it.

# Resource Guarantees

Two invariants hold on every control-flow exit from Execute, including
panics:

  - The workspace directory is destroyed before the result is returned;
    nothing a job wrote outlives its response.
  - No child process outlives the response; the supervisor kills the
    job's entire process group on timeout and reaps on every path.

# Usage

Construction is explicit; there is no package-level executor:

	registry := runtime.NewRegistry(cfg.PackagesDir)
	builder := sandbox.NewBuilder(cfg)
	exec := executor.New(cfg, registry, builder)

Running a job:

	res := exec.Execute(&types.ExecRequest{
		Language:    "python",
		Version:     "3.11",
		Files:       []types.File{{Name: "main.py", Content: "print(6*7)"}},
		TimeLimit:   5,
		MemoryLimit: 128,
	})

	switch res.Classification {
	case types.ClassificationOK:
		fmt.Println(res.Run.Stdout)
	case types.ClassificationTimeout:
		// res.Run.Code == 124, stderr begins with TIMEOUT:
	case types.ClassificationRuntimeNotFound:
		// res.Run.Code == 127, res.Run.Message names the missing runtime
	default:
		// workspace_error / sandbox_error / internal_error, exit 1
	}

Execute is safe for concurrent use: every job owns its workspace and child
process, and the executor holds no per-job state. The request must already
be normalized and validated (see pkg/types); the executor trusts its
immutable inputs.

# Observability

Every job emits:

  - A job_id-scoped log line at start (info when jailed, warn when the
    host degraded to direct mode) and completion (exit code, wall time)
  - kiln_executions_total{language, classification}
  - kiln_execution_duration_seconds{language}
  - kiln_executions_in_flight while running
  - kiln_output_truncations_total{stream} when a cap was hit

The job_id in the result matches the job_id in the logs, so a client
report can be traced to its server-side lifecycle.

# Integration Points

This package integrates with:

  - pkg/runtime: binary resolution (stage 1)
  - pkg/workspace: scratch directory lifecycle (stage 2)
  - pkg/sandbox: mode selection and argv composition (stage 3)
  - pkg/supervisor: child supervision (stage 4)
  - pkg/metrics, pkg/log: per-job observability
  - pkg/api: the only caller in the service

# Design Patterns

Errors-as-results:
  - The job lifecycle is the unit the client contracted for; a missing
    runtime is a job outcome, not a transport failure
  - Only the API boundary rejects requests (validation, HTTP 422)

Scoped acquisition:
  - The workspace defer runs on every exit path, panics included
  - Result assembly never begins before the child is reaped

Injected collaborators:
  - Registry and builder arrive via New; tests swap in synthetic package
    trees and forced modes without touching globals

# Troubleshooting

All jobs classify runtime_not_found:
  - Check: packages_dir points at the runtime tree
    (<root>/<language>/<version>/bin/<binary>)
  - Check: binaries carry an execute bit

Jobs classify sandbox_error immediately:
  - Check: the runtime binary's interpreter line resolves inside the jail
  - Check: service logs for the underlying exec error

internal_error appears:
  - A bug: something panicked mid-pipeline. The panic value is logged
    with the job_id; the client receives a redacted message

Wall times exceed the limit by about a second:
  - Expected: the deadline adds a 500ms kill margin and up to 1s of pipe
    drain grace after the kill

# Concurrency Model

The service is multi-request concurrent; the executor imposes no queue
and no admission control beyond per-request resource caps:

  - Each HTTP request drives one Execute call on its own goroutine
  - Jobs share nothing mutable: workspaces are unique directories,
    children are separate process groups, outcomes are assembled from
    per-job state only
  - The only cross-job state is read-only after first use: the
    capability probe cache (sync.Once) and the registry's enumeration
    cache (invalidated by the watcher, never consulted by Resolve)

Suspension points within one job — writing stdin, draining both output
streams, awaiting exit — run concurrently inside the supervisor; the
executor itself is a straight-line sequence.

# Result Assembly

The RunOutcome mirrors what the supervisor observed, plus derived fields:

	stdout, stderr   finalized streams, truncation trailers applied
	output           stdout then stderr concatenated, empties skipped
	code             child's exit code, or the fixed code for the
	                 classification (127 / 124 / 1)
	signal           terminating signal name when the child was killed
	message, status  populated only for jobs that did not run to
	                 completion (runtime_not_found, workspace_error,
	                 sandbox_error, internal_error)
	cpu_time         child user+system CPU, milliseconds
	wall_time        monotonic wall clock, milliseconds
	memory           peak RSS bytes when the platform reports it

The result always echoes the requested language and version — a request
for "3.11" reports "3.11" even though it bound to "3.11.9"; the logs
carry the resolved version.

# Complete Example

	package main

	import (
		"fmt"

		"github.com/cuemby/kiln/pkg/config"
		"github.com/cuemby/kiln/pkg/executor"
		"github.com/cuemby/kiln/pkg/log"
		"github.com/cuemby/kiln/pkg/runtime"
		"github.com/cuemby/kiln/pkg/sandbox"
		"github.com/cuemby/kiln/pkg/types"
	)

	func main() {
		log.Init(log.Config{Level: "info"})
		cfg := config.Default()

		exec := executor.New(cfg,
			runtime.NewRegistry(cfg.PackagesDir),
			sandbox.NewBuilder(cfg))

		res := exec.Execute(&types.ExecRequest{
			Language:    "python",
			Version:     "3.11",
			Files:       []types.File{{Name: "main.py", Content: "print(6*7)"}},
			TimeLimit:   5,
			MemoryLimit: 128,
		})
		fmt.Printf("[%s] job %s exit=%d\n%s",
			res.Classification, res.JobID, res.Run.Code, res.Run.Stdout)
	}

# Monitoring

Per-classification rates separate user failures from service failures:

	ok                  user programs behaving; their exit codes vary
	timeout             user programs exceeding their own limits
	runtime_not_found   client requests for uninstalled toolchains
	workspace_error     host disk or temp-root trouble — investigate
	sandbox_error       broken runtime binaries or jail setup — investigate
	internal_error      service bugs — page

kiln_executions_in_flight against request rate shows whether the host
keeps up; duration histograms per language separate slow toolchain
startup from slow user code.

# Best Practices

Do:
  - Construct one executor per server and inject it; it is stateless
    and safe to share across all request goroutines
  - Pass only normalized, validated requests; the executor trusts its
    inputs by contract
  - Alert on workspace_error/sandbox_error/internal_error rates; those
    are host or service problems, not user code

Don't:
  - Map non-ok classifications to HTTP errors; the wire contract
    returns them as 200-plane results
  - Retry timeouts automatically; a wedged program wedges again
  - Read fields of Run beyond code/message/status/wall_time for
    runtime_not_found, workspace_error, sandbox_error or internal_error;
    they are zero-valued (a timeout result does carry the captured
    streams and the signal)

# See Also

  - pkg/supervisor: timeout and capture semantics
  - pkg/sandbox: what the child can and cannot touch
  - pkg/api: how classifications map onto the wire contract
  - pkg/workspace: the scoped-acquisition contract
*/
package executor
