//go:build !unix

package supervisor

import (
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

func killGroup(pid int) {
	if p, err := os.FindProcess(pid); err == nil {
		_ = p.Kill()
	}
}

func exitStatus(ps *os.ProcessState) (int, string) {
	return ps.ExitCode(), ""
}

func maxRSSBytes(ps *os.ProcessState) int64 {
	return 0
}
