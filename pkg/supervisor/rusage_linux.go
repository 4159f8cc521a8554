//go:build linux

package supervisor

import (
	"os"
	"syscall"
)

// maxRSSBytes reports the reaped child's peak resident set. Linux accounts
// ru_maxrss in kilobytes.
func maxRSSBytes(ps *os.ProcessState) int64 {
	ru, ok := ps.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil {
		return 0
	}
	return ru.Maxrss * 1024
}
