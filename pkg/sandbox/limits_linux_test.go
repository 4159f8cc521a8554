//go:build linux

package sandbox

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readLimit returns the soft and hard values of one row in /proc/<pid>/limits
func readLimit(t *testing.T, pid int, name string) (string, string) {
	t.Helper()
	f, err := os.Open(fmt.Sprintf("/proc/%d/limits", pid))
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, name) {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, name))
		require.GreaterOrEqual(t, len(fields), 2, "limits line %q", line)
		return fields[0], fields[1]
	}
	t.Fatalf("no %q row in /proc/%d/limits", name, pid)
	return "", ""
}

func TestLimitsApply(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	l := Limits{MemoryMB: 128, TimeLimit: 2.7}
	require.NoError(t, l.Apply(cmd.Process.Pid))

	soft, hard := readLimit(t, cmd.Process.Pid, "Max address space")
	assert.Equal(t, "134217728", soft)
	assert.Equal(t, "134217728", hard)

	soft, hard = readLimit(t, cmd.Process.Pid, "Max cpu time")
	assert.Equal(t, "2", soft, "soft CPU limit is the floored wall limit")
	assert.Equal(t, "3", hard, "hard CPU limit is soft plus one")

	soft, hard = readLimit(t, cmd.Process.Pid, "Max processes")
	assert.Equal(t, "16", soft)
	assert.Equal(t, "16", hard)
}

func TestLimitsApplySubSecondClampsCPU(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	l := Limits{MemoryMB: 64, TimeLimit: 0.5}
	require.NoError(t, l.Apply(cmd.Process.Pid))

	soft, hard := readLimit(t, cmd.Process.Pid, "Max cpu time")
	assert.Equal(t, "1", soft, "sub-second jobs keep a whole CPU second")
	assert.Equal(t, "2", hard)
}

func TestLimitsApplyDeadProcess(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	require.NoError(t, cmd.Wait())

	l := Limits{MemoryMB: 128, TimeLimit: 1}
	assert.Error(t, l.Apply(cmd.Process.Pid))
}
