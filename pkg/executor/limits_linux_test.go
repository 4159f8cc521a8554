//go:build linux

package executor

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/kiln/pkg/types"
)

// sleepMarker makes the fork bomb's descendants identifiable in the host
// process table
const sleepMarker = "1.372"

// countMarkedSleeps scans /proc for live descendants of the fork bomb
func countMarkedSleeps() int {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() || e.Name()[0] < '0' || e.Name()[0] > '9' {
			continue
		}
		data, err := os.ReadFile(filepath.Join("/proc", e.Name(), "cmdline"))
		if err != nil {
			continue
		}
		if string(data) == "sleep\x00"+sleepMarker+"\x00" {
			n++
		}
	}
	return n
}

// A job spawning descendants in a tight loop cannot hold more than the
// process ceiling concurrently. Root is exempt from RLIMIT_NPROC, so the
// test only means something for ordinary users.
func TestForkBombBounded(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("RLIMIT_NPROC is not enforced for root")
	}
	e := newTestExecutor(t)

	script := "i=0; while [ $i -lt 40 ]; do sleep " + sleepMarker +
		" 2>/dev/null & i=$((i+1)); done; wait 2>/dev/null; exit 0"
	req := request(types.File{Name: "main.py", Content: script})
	req.TimeLimit = 5

	done := make(chan *types.ExecResult, 1)
	go func() { done <- e.Execute(req) }()

	maxConcurrent := 0
	for {
		select {
		case res := <-done:
			require.NotNil(t, res)
			assert.LessOrEqual(t, maxConcurrent, 16,
				"fork bomb exceeded the process ceiling")
			return
		case <-time.After(5 * time.Millisecond):
			if n := countMarkedSleeps(); n > maxConcurrent {
				maxConcurrent = n
			}
		}
	}
}

// A child allocating past the address-space ceiling fails allocation rather
// than dragging the host down. dd's single bs-sized buffer makes the
// allocation deterministic.
func TestMemoryLimitEnforced(t *testing.T) {
	if _, err := exec.LookPath("dd"); err != nil {
		t.Skip("dd not available")
	}
	e := newTestExecutor(t)

	req := request(types.File{Name: "main.py",
		Content: "exec dd if=/dev/zero of=/dev/null bs=300M count=1"})
	req.MemoryLimit = 128

	res := e.Execute(req)
	assert.Equal(t, types.ClassificationOK, res.Classification)
	assert.NotEqual(t, 0, res.Run.Code, "allocation past the limit must fail")
	assert.NotEmpty(t, res.Run.Stderr, "allocator failure is reported on stderr")
}

func TestMemoryLimitAllowsModestAllocation(t *testing.T) {
	if _, err := exec.LookPath("dd"); err != nil {
		t.Skip("dd not available")
	}
	e := newTestExecutor(t)

	req := request(types.File{Name: "main.py",
		Content: "exec dd if=/dev/zero of=/dev/null bs=8M count=1 2>/dev/null"})
	req.MemoryLimit = 128

	res := e.Execute(req)
	assert.Equal(t, types.ClassificationOK, res.Classification)
	assert.Equal(t, 0, res.Run.Code)
}

// Output of a runaway writer is capped with the truncation trailer; the
// fixed caps also bound memory held per stream
func TestOutputCapBoundsCapture(t *testing.T) {
	e := newTestExecutor(t)
	e.cfg.MaxOutputSize = 4096

	script := "i=0; while [ $i -lt 10000 ]; do echo xxxxxxxxxxxxxxxxxxxx; i=$((i+1)); done"
	res := e.Execute(request(types.File{Name: "main.py", Content: script}))

	require.Equal(t, types.ClassificationOK, res.Classification)
	assert.LessOrEqual(t, len(res.Run.Stdout), 4096)
	assert.True(t, strings.HasSuffix(res.Run.Stdout,
		"[TRUNCATED: stdout exceeded 4096 bytes (4 KB)]\n"))
}
