package supervisor

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/cuemby/kiln/pkg/log"
	"github.com/cuemby/kiln/pkg/sandbox"
)

// killDelay is added to the wall-clock limit before the child is killed,
// giving well-behaved programs a margin to flush and exit
const killDelay = 500 * time.Millisecond

// drainGrace bounds how long pipe drains may run after the child is reaped
const drainGrace = 1 * time.Second

// timeoutPrefix is prepended to stderr when the wall clock expires
const timeoutPrefix = "TIMEOUT: Execution exceeded time limit\n"

// Spec describes one supervised child process
type Spec struct {
	Argv      []string
	Dir       string // working directory; empty in jailed mode
	Stdin     string
	TimeLimit float64 // wall-clock seconds
	Limits    sandbox.Limits
	MaxStdout int // stdout byte cap
	MaxStderr int // stderr byte cap
}

// Outcome carries everything observed about a reaped child
type Outcome struct {
	Stdout          string
	Stderr          string
	StdoutTruncated bool
	StderrTruncated bool
	ExitCode        int
	Signal          string
	TimedOut        bool
	WallTime        time.Duration
	CPUTime         time.Duration
	MaxRSS          int64 // peak RSS in bytes; 0 when unavailable
}

// Run starts the child, feeds stdin, drains both output streams under their
// byte caps, enforces the wall-clock deadline, and reaps the child. The
// returned error is non-nil only for spawn failures (fork/exec or resource
// limit setup); every other path produces an Outcome.
func Run(spec Spec) (*Outcome, error) {
	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.SysProcAttr = sysProcAttr()

	stdout := newCappedBuffer(spec.MaxStdout)
	stderr := newCappedBuffer(spec.MaxStderr)
	cmd.Stdin = bytes.NewReader([]byte(spec.Stdin))
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Bounded grace for the stdin writer and the two drain goroutines after
	// the child exits. A descendant that survives the group kill and holds
	// the pipe open cannot stall the job past this.
	cmd.WaitDelay = drainGrace

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start process: %w", err)
	}

	if err := spec.Limits.Apply(cmd.Process.Pid); err != nil {
		killGroup(cmd.Process.Pid)
		_ = cmd.Wait()
		return nil, err
	}

	var timedOut atomic.Bool
	deadline := time.Duration(spec.TimeLimit*float64(time.Second)) + killDelay
	timer := time.AfterFunc(deadline, func() {
		timedOut.Store(true)
		killGroup(cmd.Process.Pid)
	})

	waitErr := cmd.Wait()
	timer.Stop()
	wall := time.Since(start)

	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			// Child failed or was killed; captured below from ProcessState
		case errors.Is(waitErr, exec.ErrWaitDelay):
			// Pipes were force-closed after the grace period; partial
			// output captured so far is returned
			logger := log.WithComponent("supervisor")
			logger.Warn().Msg("pipe drain abandoned after grace period")
		default:
			return nil, fmt.Errorf("failed waiting for process: %w", waitErr)
		}
	}

	out := &Outcome{
		TimedOut: timedOut.Load(),
		WallTime: wall,
		CPUTime:  cmd.ProcessState.UserTime() + cmd.ProcessState.SystemTime(),
		MaxRSS:   maxRSSBytes(cmd.ProcessState),
	}

	out.Stdout = stdout.Finalize("stdout")
	out.StdoutTruncated = stdout.Truncated()
	out.StderrTruncated = stderr.Truncated()
	if out.TimedOut {
		out.ExitCode = 124
		out.Signal = "SIGKILL"
		out.Stderr = timeoutPrefix + stderr.FinalizeWithCap("stderr", spec.MaxStderr-len(timeoutPrefix))
	} else {
		out.Stderr = stderr.Finalize("stderr")
		out.ExitCode, out.Signal = exitStatus(cmd.ProcessState)
	}
	return out, nil
}
