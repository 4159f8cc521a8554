package sandbox

import (
	"context"
	"os/exec"
	"sync"
	"time"

	"github.com/cuemby/kiln/pkg/log"
)

// Capability reports whether the jail tool is present and usable on this host
type Capability struct {
	Installed bool
	Working   bool
}

var (
	probeOnce   sync.Once
	probeResult Capability
)

// probeTimeout bounds the benign test invocation
const probeTimeout = 2 * time.Second

// Probe detects bubblewrap availability. Installed means the binary is on
// PATH; Working means a minimal benign invocation succeeded. The result is
// computed once and cached for the lifetime of the process.
func Probe() Capability {
	probeOnce.Do(func() {
		probeResult = runProbe()
	})
	return probeResult
}

func runProbe() Capability {
	logger := log.WithComponent("sandbox")

	if _, err := exec.LookPath("bwrap"); err != nil {
		logger.Warn().Msg("bubblewrap not installed, falling back to direct mode")
		return Capability{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bwrap", "--ro-bind", "/", "/", "--", "echo", "test")
	if err := cmd.Run(); err != nil {
		logger.Warn().Err(err).Msg("bubblewrap installed but cannot create namespaces")
		return Capability{Installed: true}
	}

	logger.Info().Msg("bubblewrap functional")
	return Capability{Installed: true, Working: true}
}
