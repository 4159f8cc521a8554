package executor

import (
	"time"

	"github.com/google/uuid"

	"github.com/cuemby/kiln/pkg/config"
	"github.com/cuemby/kiln/pkg/log"
	"github.com/cuemby/kiln/pkg/metrics"
	"github.com/cuemby/kiln/pkg/runtime"
	"github.com/cuemby/kiln/pkg/sandbox"
	"github.com/cuemby/kiln/pkg/supervisor"
	"github.com/cuemby/kiln/pkg/types"
	"github.com/cuemby/kiln/pkg/workspace"
)

// Executor drives the execution pipeline for one request at a time: resolve
// runtime, materialize workspace, pick confinement mode, supervise the child,
// assemble the result. It holds no per-job state and is safe for concurrent
// use; every job owns its own workspace and child process.
type Executor struct {
	cfg      *config.Config
	registry *runtime.Registry
	builder  *sandbox.Builder
}

// New creates an executor with its collaborators injected
func New(cfg *config.Config, registry *runtime.Registry, builder *sandbox.Builder) *Executor {
	return &Executor{cfg: cfg, registry: registry, builder: builder}
}

// Execute runs one job to completion and always returns a result record.
// Errors inside the job lifecycle become classifications, never Go errors:
// the job is the unit of observation the client contracted for.
func (e *Executor) Execute(req *types.ExecRequest) (res *types.ExecResult) {
	jobID := uuid.New().String()
	jobLog := log.WithJobID(jobID)
	start := time.Now()

	metrics.ExecutionsInFlight.Inc()
	defer func() {
		metrics.ExecutionsInFlight.Dec()
		if r := recover(); r != nil {
			jobLog.Error().Interface("panic", r).Msg("unexpected error during execution")
			res = e.failure(req, jobID, types.ClassificationInternalError, 1,
				"Internal error during execution", start)
		}
		metrics.ExecutionsTotal.WithLabelValues(req.Language, string(res.Classification)).Inc()
		metrics.ExecutionDuration.WithLabelValues(req.Language).Observe(time.Since(start).Seconds())
	}()

	desc, err := e.registry.Resolve(req.Language, req.Version)
	if err != nil {
		jobLog.Error().Err(err).Msg("runtime resolution failed")
		return e.failure(req, jobID, types.ClassificationRuntimeNotFound, 127, err.Error(), start)
	}

	ws, err := workspace.Create(req.Files)
	if err != nil {
		jobLog.Error().Err(err).Msg("workspace preparation failed")
		return e.failure(req, jobID, types.ClassificationWorkspaceError, 1, err.Error(), start)
	}
	defer func() {
		if derr := ws.Destroy(); derr != nil {
			jobLog.Error().Err(derr).Msg("workspace teardown failed")
		}
	}()

	mode := e.builder.SelectMode()
	if mode == sandbox.ModeJailed {
		metrics.SandboxJailed.Set(1)
		jobLog.Info().Str("language", req.Language).Str("version", req.Version).
			Str("resolved_version", desc.Version).Msg("executing job (sandboxed)")
	} else {
		metrics.SandboxJailed.Set(0)
		jobLog.Warn().Str("language", req.Language).Str("version", req.Version).
			Str("resolved_version", desc.Version).Msg("executing job (direct mode - bubblewrap unavailable)")
	}

	// Child argv is [binary, entryFile, args...]; the first request file is
	// the entry point
	runtimeArgv := append([]string{desc.BinaryPath, req.Files[0].Name}, req.Args...)
	argv := e.builder.BuildArgv(mode, ws.Root(), runtimeArgv, req.InternetEnabled())

	spec := supervisor.Spec{
		Argv:      argv,
		Stdin:     req.Stdin,
		TimeLimit: req.TimeLimit,
		Limits:    sandbox.Limits{MemoryMB: req.MemoryLimit, TimeLimit: req.TimeLimit},
		MaxStdout: e.cfg.MaxOutputSize,
		MaxStderr: e.cfg.MaxStderrSize,
	}
	if mode == sandbox.ModeDirect {
		spec.Dir = ws.Root()
	}

	outcome, err := supervisor.Run(spec)
	if err != nil {
		jobLog.Error().Err(err).Msg("sandbox spawn failed")
		return e.failure(req, jobID, types.ClassificationSandboxError, 1, err.Error(), start)
	}

	if outcome.StdoutTruncated {
		metrics.OutputTruncationsTotal.WithLabelValues("stdout").Inc()
	}
	if outcome.StderrTruncated {
		metrics.OutputTruncationsTotal.WithLabelValues("stderr").Inc()
	}

	classification := types.ClassificationOK
	if outcome.TimedOut {
		classification = types.ClassificationTimeout
	}

	jobLog.Info().Int("exit_code", outcome.ExitCode).
		Int64("wall_time_ms", outcome.WallTime.Milliseconds()).
		Msg("job completed")

	return &types.ExecResult{
		Language:       req.Language,
		Version:        req.Version,
		JobID:          jobID,
		Classification: classification,
		Run: types.RunOutcome{
			Stdout:   outcome.Stdout,
			Stderr:   outcome.Stderr,
			Output:   combineOutput(outcome.Stdout, outcome.Stderr),
			Code:     outcome.ExitCode,
			Signal:   outcome.Signal,
			CPUTime:  outcome.CPUTime.Milliseconds(),
			WallTime: outcome.WallTime.Milliseconds(),
			Memory:   outcome.MaxRSS,
		},
	}
}

// failure builds the result record for a job that could not run to completion
func (e *Executor) failure(req *types.ExecRequest, jobID string, c types.Classification,
	code int, message string, start time.Time) *types.ExecResult {
	return &types.ExecResult{
		Language:       req.Language,
		Version:        req.Version,
		JobID:          jobID,
		Classification: c,
		Run: types.RunOutcome{
			Code:     code,
			Message:  message,
			Status:   "error",
			WallTime: time.Since(start).Milliseconds(),
		},
	}
}

// combineOutput concatenates the streams, stdout first, skipping empties
func combineOutput(stdout, stderr string) string {
	if stderr == "" {
		return stdout
	}
	if stdout == "" {
		return stderr
	}
	return stdout + stderr
}
