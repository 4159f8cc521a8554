package sandbox

import (
	"github.com/cuemby/kiln/pkg/config"
)

// Mode selects how the child is confined
type Mode string

const (
	// ModeJailed runs the child inside a bubblewrap namespace jail
	ModeJailed Mode = "jailed"
	// ModeDirect runs the child without namespaces; only kernel resource
	// limits apply. Security-degraded fallback.
	ModeDirect Mode = "direct"
)

// InteriorWorkdir is the fixed path the workspace is mapped to inside the jail
const InteriorWorkdir = "/app"

// Builder composes the invocation for a confined child process
type Builder struct {
	packagesDir   string
	useBubblewrap bool
	capability    func() Capability
}

// NewBuilder creates a sandbox builder from service configuration
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		packagesDir:   cfg.PackagesDir,
		useBubblewrap: cfg.UseBubblewrap,
		capability:    Probe,
	}
}

// SelectMode picks jailed mode when bubblewrap is enabled and functional on
// this host, direct mode otherwise.
func (b *Builder) SelectMode() Mode {
	if b.useBubblewrap && b.capability().Working {
		return ModeJailed
	}
	return ModeDirect
}

// Capability reports the cached jail probe result
func (b *Builder) Capability() Capability {
	return b.capability()
}

// ExecutionMode describes the effective mode for the health endpoint
func (b *Builder) ExecutionMode() string {
	if !b.useBubblewrap {
		return "direct (bubblewrap disabled by configuration)"
	}
	c := b.capability()
	switch {
	case c.Working:
		return "sandboxed (bubblewrap)"
	case c.Installed:
		return "direct (bubblewrap installed but not working)"
	default:
		return "direct (bubblewrap not installed)"
	}
}

// BuildArgv composes the full argument vector for the given mode. runtimeArgv
// is [binary, entryFile, args...]; in jailed mode it is appended after the
// bwrap separator, in direct mode it is returned unchanged and the supervisor
// applies cwd=workdir instead.
func (b *Builder) BuildArgv(mode Mode, workdir string, runtimeArgv []string, internet bool) []string {
	if mode == ModeDirect {
		return runtimeArgv
	}

	argv := []string{
		"bwrap",
		// Essential system directories, read-only
		"--ro-bind", "/usr", "/usr",
		"--ro-bind", "/lib", "/lib",
		"--ro-bind", "/lib64", "/lib64",
		"--ro-bind", "/bin", "/bin",
		// Scratch tmp before the package bind, so a package root under
		// /tmp is mounted on top of the tmpfs instead of hidden by it
		"--tmpfs", "/tmp",
		// Runtime packages, read-only at the same path
		"--ro-bind", b.packagesDir, b.packagesDir,
		// Per-job workspace, read-write at the fixed interior path
		"--bind", workdir, InteriorWorkdir,
		"--chdir", InteriorWorkdir,
		// Fresh proc, minimal dev
		"--proc", "/proc",
		"--dev", "/dev",
	}
	if !internet {
		argv = append(argv, "--unshare-net")
	}
	argv = append(argv, "--")
	argv = append(argv, runtimeArgv...)
	return argv
}
