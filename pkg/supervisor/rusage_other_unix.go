//go:build unix && !linux

package supervisor

import (
	"os"
	"syscall"
)

// maxRSSBytes reports the reaped child's peak resident set. Darwin and the
// BSDs account ru_maxrss in bytes.
func maxRSSBytes(ps *os.ProcessState) int64 {
	ru, ok := ps.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil {
		return 0
	}
	return int64(ru.Maxrss)
}
