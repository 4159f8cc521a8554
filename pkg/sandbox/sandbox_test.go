package sandbox

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/kiln/pkg/config"
	"github.com/cuemby/kiln/pkg/log"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: "error", Output: io.Discard})
	os.Exit(m.Run())
}

func newTestBuilder(useBwrap bool, c Capability) *Builder {
	cfg := config.Default()
	cfg.UseBubblewrap = useBwrap
	b := NewBuilder(cfg)
	b.capability = func() Capability { return c }
	return b
}

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name     string
		useBwrap bool
		cap      Capability
		want     Mode
	}{
		{"working jail", true, Capability{Installed: true, Working: true}, ModeJailed},
		{"installed but broken", true, Capability{Installed: true}, ModeDirect},
		{"not installed", true, Capability{}, ModeDirect},
		{"disabled by config", false, Capability{Installed: true, Working: true}, ModeDirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(tt.useBwrap, tt.cap)
			assert.Equal(t, tt.want, b.SelectMode())
		})
	}
}

func TestExecutionModeStrings(t *testing.T) {
	tests := []struct {
		name     string
		useBwrap bool
		cap      Capability
		want     string
	}{
		{"jailed", true, Capability{Installed: true, Working: true}, "sandboxed (bubblewrap)"},
		{"broken", true, Capability{Installed: true}, "direct (bubblewrap installed but not working)"},
		{"missing", true, Capability{}, "direct (bubblewrap not installed)"},
		{"disabled", false, Capability{Installed: true, Working: true}, "direct (bubblewrap disabled by configuration)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(tt.useBwrap, tt.cap)
			assert.Equal(t, tt.want, b.ExecutionMode())
		})
	}
}

func TestBuildArgvDirectPassthrough(t *testing.T) {
	b := newTestBuilder(true, Capability{})
	runtimeArgv := []string{"/packages/python/3.10/bin/python3", "main.py", "--flag"}

	argv := b.BuildArgv(ModeDirect, "/tmp/job", runtimeArgv, false)
	assert.Equal(t, runtimeArgv, argv)
}

func TestBuildArgvJailed(t *testing.T) {
	cfg := config.Default()
	cfg.PackagesDir = "/packages"
	b := NewBuilder(cfg)

	runtimeArgv := []string{"/packages/python/3.10/bin/python3", "main.py", "arg1"}
	argv := b.BuildArgv(ModeJailed, "/tmp/job-x", runtimeArgv, true)

	require.Equal(t, "bwrap", argv[0])
	assert.Contains(t, argv, "--ro-bind")
	assert.Contains(t, argv, "/usr")
	assert.Contains(t, argv, "/packages")

	// Workspace is bound read-write at the fixed interior path
	i := indexOf(argv, "--bind")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "/tmp/job-x", argv[i+1])
	assert.Equal(t, InteriorWorkdir, argv[i+2])

	// Child argv follows the separator untouched
	sep := indexOf(argv, "--")
	require.GreaterOrEqual(t, sep, 0)
	assert.Equal(t, runtimeArgv, argv[sep+1:])

	// Internet enabled: no network unsharing
	assert.NotContains(t, argv, "--unshare-net")
}

func TestBuildArgvJailedNoInternet(t *testing.T) {
	b := NewBuilder(config.Default())
	argv := b.BuildArgv(ModeJailed, "/tmp/job", []string{"/bin/true"}, false)

	unshare := indexOf(argv, "--unshare-net")
	sep := indexOf(argv, "--")
	require.GreaterOrEqual(t, unshare, 0)
	// The unshare flag must come before the separator to act on the jail
	assert.Less(t, unshare, sep)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
