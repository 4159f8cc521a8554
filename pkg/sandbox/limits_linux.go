//go:build linux

package sandbox

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// maxProcesses caps the number of concurrent processes a job may hold.
// Defeats fork bombs.
const maxProcesses = 16

// Limits holds the per-process kernel limits applied to a job's child
type Limits struct {
	MemoryMB  int     // RLIMIT_AS ceiling
	TimeLimit float64 // wall-clock seconds; drives the RLIMIT_CPU backstop
}

// Apply sets the kernel resource limits on the started child. The CPU limit
// is a backstop; the supervisor's wall-clock deadline is the authoritative
// termination trigger. A failure here means the job cannot be confined and
// the caller must kill the child and report a spawn failure.
func (l Limits) Apply(pid int) error {
	as := uint64(l.MemoryMB) * 1024 * 1024
	if err := prlimit(pid, unix.RLIMIT_AS, as, as); err != nil {
		return fmt.Errorf("failed to set address-space limit: %w", err)
	}

	// Sub-second wall limits still get a whole CPU second; a zero soft
	// limit would kill the child on its first tick
	cpuSoft := uint64(l.TimeLimit)
	if cpuSoft == 0 {
		cpuSoft = 1
	}
	if err := prlimit(pid, unix.RLIMIT_CPU, cpuSoft, cpuSoft+1); err != nil {
		return fmt.Errorf("failed to set cpu limit: %w", err)
	}

	if err := prlimit(pid, unix.RLIMIT_NPROC, maxProcesses, maxProcesses); err != nil {
		return fmt.Errorf("failed to set process limit: %w", err)
	}
	return nil
}

func prlimit(pid, resource int, soft, hard uint64) error {
	lim := unix.Rlimit{Cur: soft, Max: hard}
	return unix.Prlimit(pid, resource, &lim, nil)
}
