//go:build unix

package supervisor

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// sysProcAttr places the child in its own process group so the whole tree
// can be killed with one signal
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killGroup delivers SIGKILL to the child's process group
func killGroup(pid int) {
	_ = unix.Kill(-pid, unix.SIGKILL)
}

// exitStatus extracts the exit code and, for signal deaths, the signal name.
// A signaled child reports the shell convention 128+signo.
func exitStatus(ps *os.ProcessState) (int, string) {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		sig := ws.Signal()
		return 128 + int(sig), unix.SignalName(sig)
	}
	return ps.ExitCode(), ""
}
