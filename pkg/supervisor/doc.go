/*
Package supervisor starts, monitors, and reaps one confined child process
per job.

The supervisor owns every suspension point of a running job: it feeds stdin,
drains stdout and stderr concurrently under per-stream byte caps, and waits
for exit with a wall-clock deadline. The three activities run in parallel —
sequential handling would deadlock as soon as the child blocks on an
undrained pipe. Run returns an error only when the child could not be
spawned or confined; everything else (normal exit, signal death, timeout,
truncated output) is an Outcome.

# Architecture

One Run call supervises one child from spawn to reap:

	┌───────────────────── SUPERVISOR ──────────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐           │
	│  │                 Spawn                       │           │
	│  │  - exec.Command(argv)                       │           │
	│  │  - Own process group (Setpgid)              │           │
	│  │  - Pipes for stdin/stdout/stderr            │           │
	│  │  - Kernel limits applied via prlimit        │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                      │
	│     ┌───────────────┼────────────────┐                     │
	│     ▼               ▼                ▼                     │
	│  ┌────────┐   ┌──────────┐   ┌──────────┐                 │
	│  │ stdin  │   │  stdout  │   │  stderr  │                 │
	│  │ writer │   │  drain   │   │  drain   │                 │
	│  │        │   │ (capped) │   │ (capped) │                 │
	│  └────────┘   └──────────┘   └──────────┘                 │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │               Waiter                        │           │
	│  │  - Deadline = time_limit + 500ms            │           │
	│  │  - On deadline: SIGKILL process group       │           │
	│  │  - Drain grace: 1s (WaitDelay)              │           │
	│  │  - Reap child, collect rusage               │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │               Outcome                       │           │
	│  │  - Captured stdout/stderr (finalized)       │           │
	│  │  - Exit code / signal name / timeout flag   │           │
	│  │  - Wall time, CPU time, peak RSS            │           │
	│  └────────────────────────────────────────────┘           │
	└───────────────────────────────────────────────────────────┘

# Core Components

Spec:
  - Argv: the full command vector (bwrap invocation or bare runtime argv)
  - Dir: working directory, set only in direct mode
  - Stdin: bytes written to the child's standard input, then closed
  - TimeLimit: wall-clock seconds; the authoritative termination trigger
  - Limits: kernel rlimits applied to the child after spawn
  - MaxStdout/MaxStderr: per-stream capture caps in bytes

Outcome:
  - Stdout/Stderr: finalized streams, truncation trailer applied
  - StdoutTruncated/StderrTruncated: whether a cap was hit
  - ExitCode: child's code; 124 on timeout; 128+signo on signal death
  - Signal: terminating signal name (SIGKILL, SIGTERM, ...), empty otherwise
  - TimedOut: whether the wall-clock deadline fired
  - WallTime/CPUTime: monotonic wall clock and user+system CPU of the child
  - MaxRSS: peak resident set in bytes, 0 when unavailable

cappedBuffer:
  - io.Writer fed by the exec copy goroutines
  - Stores at most the cap; counts and discards the excess
  - Finalize cuts to a valid UTF-8 prefix and appends the trailer line

# Timeout Semantics

The wall clock is the only external termination trigger. The sequence on
deadline expiry:

 1. SIGKILL is delivered to the child's entire process group, so
    grandchildren spawned by the job die with it.
 2. Pipe drains get a bounded grace (1 second) to flush whatever the kernel
    buffered before the kill.
 3. The outcome is forced to exit code 124, signal SIGKILL, and stderr is
    prefixed with "TIMEOUT: Execution exceeded time limit".

The CPU-time rlimit (soft = floored wall limit, hard = soft+1) and the
address-space rlimit applied at spawn are backstops for the cases the wall
clock cannot see, such as a job that escapes into a grandchild after the
direct-mode shell exits.

A descendant that survives the group kill — for example by calling setsid —
can hold the output pipes open indefinitely. WaitDelay bounds that: after
the grace period the pipes are force-closed, Wait returns ErrWaitDelay, and
the partial output captured so far is returned.

# Output Capture

Both streams are captured concurrently into capped buffers:

  - Bytes up to the cap are stored; bytes past it are counted and dropped,
    so a hostile writer cannot grow memory, and draining continues so the
    child never blocks on a full pipe.
  - When the total exceeded the cap, the finalized stream is the first
    cap-minus-trailer bytes, cut back to a valid UTF-8 boundary, followed
    by a single trailer line:

	[TRUNCATED: stdout exceeded 4096 bytes (4 KB)]

  - On timeout the TIMEOUT prefix claims part of the stderr budget, so the
    finalized stderr is re-capped to stay within the configured limit.

Ordering: each stream preserves the byte order the child produced on it; no
interleaving order is guaranteed between the two streams.

# Usage

Basic supervision:

	out, err := supervisor.Run(supervisor.Spec{
		Argv:      []string{"/packages/python/3.11.9/bin/python3", "main.py"},
		Stdin:     "21\n",
		TimeLimit: 5,
		Limits:    sandbox.Limits{MemoryMB: 256, TimeLimit: 5},
		MaxStdout: 256 * 1024,
		MaxStderr: 256 * 1024,
	})
	if err != nil {
		// spawn failure: fork/exec failed or limits could not be applied
		return err
	}
	if out.TimedOut {
		fmt.Printf("killed after %v\n", out.WallTime)
	}
	fmt.Printf("exit=%d stdout=%q\n", out.ExitCode, out.Stdout)

Direct mode (no jail) sets the working directory instead of relying on the
jail's chdir:

	out, err := supervisor.Run(supervisor.Spec{
		Argv: runtimeArgv,
		Dir:  workspaceRoot,
		...
	})

Interpreting the outcome:

	switch {
	case out.TimedOut:
		// exit 124, signal SIGKILL, stderr begins with TIMEOUT:
	case out.Signal != "":
		// child died on a signal; exit code is 128+signo
	default:
		// child exited on its own; exit code is authoritative
	}

# Integration Points

This package integrates with:

  - pkg/executor: the only caller; one Run per job
  - pkg/sandbox: Limits values composed there are applied here after spawn
  - pkg/log: warns when a pipe drain is abandoned after the grace period

# Platform Notes

Process groups, group kill, and signal names are implemented for unix
(sys_unix.go); other platforms degrade to single-process kill with no
signal reporting (sys_other.go). Peak RSS accounting is platform-specific:
Linux reports ru_maxrss in kilobytes, Darwin and the BSDs in bytes; both
are normalized to bytes, and platforms without wait4 rusage report 0.

The RSS value covers the direct child as reaped by wait4. Under the jail
that child is bwrap, so deep descendant peaks are not fully attributed; the
field is best-effort and never authoritative.

# Failure Modes

Spawn failure:
  - exec.Command start fails (missing binary, bad interpreter, EACCES)
  - Resource limit application fails (prlimit error)
  - Both kill any started child and return an error; callers classify
    these as sandbox errors

Wait failure:
  - ExitError: normal capture path, child status read from ProcessState
  - ErrWaitDelay: drains abandoned after grace, partial output returned
  - Anything else: returned as an error (should not happen in practice)

# Performance Characteristics

Per-job overhead:
  - One fork/exec, three copy goroutines, one timer
  - Capture memory bounded by MaxStdout+MaxStderr regardless of child output
  - Timeout precision: deadline fires within timer resolution (~ms); the
    124 path adds at most the 1s drain grace to the response time

Concurrency:
  - Run is safe for concurrent use; each call owns its child, buffers, and
    timer, and shares nothing
  - The process-group kill affects only the job's group

# Troubleshooting

Job finishes about a second after the child exits:
  - Symptom: wall time is the child's own run time plus roughly 1s
  - Cause: a descendant escaped the process group and holds the pipes
  - Check: "pipe drain abandoned after grace period" warnings in the log
  - Note: output captured so far is returned after the 1s grace

Exit code 124 but the program is fast:
  - Check: TimeLimit in seconds, not milliseconds
  - Check: CPU starvation on an overloaded host; the wall clock keeps
    running regardless of scheduling

Truncated output without a visible trailer:
  - The trailer sits at the very end of the stream; combined output fields
    concatenate stdout then stderr, so look at the individual stream

Empty Signal on a killed child:
  - Non-unix platforms do not report signal names
  - A child that catches the signal and exits normally reports its own
    exit code instead

# Design Patterns

Single-owner supervision:
  - One Run call owns one child from spawn to reap; no registry of live
    children exists, so there is no shared state to corrupt and nothing
    to leak when a caller goes away
  - All cleanup is anchored to the one Wait call

Writer-side capping:
  - The cap lives in the io.Writer, not in a reader loop; the exec copy
    goroutines stay oblivious and the discard path costs one comparison
  - Counting continues past the cap so Truncated and the trailer can
    report what actually happened

Kill-the-group, not the process:
  - Signals address the negative pgid; a job is its whole process tree
  - Escaped descendants are handled by bounding the drain, not by
    chasing pids

Outcome over error:
  - Only spawn problems are errors; every observed child behavior is
    data in the Outcome, leaving classification policy to the caller

# Complete Example

	package main

	import (
		"fmt"

		"github.com/cuemby/kiln/pkg/sandbox"
		"github.com/cuemby/kiln/pkg/supervisor"
	)

	func main() {
		out, err := supervisor.Run(supervisor.Spec{
			Argv:      []string{"/bin/sh", "-c", "read x; echo $((x*2))"},
			Stdin:     "21\n",
			TimeLimit: 2,
			Limits:    sandbox.Limits{MemoryMB: 64, TimeLimit: 2},
			MaxStdout: 4096,
			MaxStderr: 4096,
		})
		if err != nil {
			panic(err)
		}
		fmt.Printf("exit=%d stdout=%q wall=%v cpu=%v rss=%d\n",
			out.ExitCode, out.Stdout, out.WallTime, out.CPUTime, out.MaxRSS)
		// exit=0 stdout="42\n" wall=3.1ms cpu=1.2ms rss=1867776
	}

# Monitoring

The supervisor itself is silent except for one warning; the signals worth
watching come from the executor's metrics built on its outcomes:

Drain abandonment:
  - Log: "pipe drain abandoned after grace period" (component=supervisor)
  - Meaning: a job left a detached descendant holding its pipes; output
    for that job is partial
  - Frequent occurrences suggest users daemonizing from jobs

Timeout pressure:
  - Metric: kiln_executions_total{classification="timeout"}
  - Rising rates mean limits are too tight or programs are wedging

Wall vs CPU divergence:
  - A job with wall time at the limit but near-zero CPU time slept or
    blocked; one with CPU ≈ wall spun. Both are visible per-outcome.

# Best Practices

Do:
  - Keep TimeLimit authoritative and the rlimits as backstops; never
    rely on RLIMIT_CPU for interactive-latency termination
  - Size MaxStdout/MaxStderr from the wire budget, not from memory
    comfort — the buffers are the response payload
  - Treat Signal=="SIGKILL" with TimedOut==false as the OOM killer or an
    external actor, not a supervisor decision

Don't:
  - Call Run with an empty Argv; composition belongs to pkg/sandbox
  - Parse the TIMEOUT prefix out of stderr to detect timeouts — use the
    TimedOut flag; the prefix is for humans reading the stream
  - Assume MaxRSS covers grandchildren; it is the reaped child's peak

# See Also

  - os/exec WaitDelay semantics: https://pkg.go.dev/os/exec#Cmd.WaitDelay
  - Process groups: https://man7.org/linux/man-pages/man2/setpgid.2.html
  - wait4 rusage: https://man7.org/linux/man-pages/man2/wait4.2.html
  - RLIMIT_CPU behavior: https://man7.org/linux/man-pages/man2/setrlimit.2.html
*/
package supervisor
