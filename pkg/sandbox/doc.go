/*
Package sandbox composes the two-layer confinement for job children.

The outer layer is a bubblewrap namespace jail: read-only binds of the
essential system directories and the package root, a read-write bind of the
per-job workspace at a fixed interior path, a fresh /proc, a minimal /dev,
a tmpfs /tmp, and optionally an unshared network namespace. The inner layer
is a set of per-process kernel limits (address space, CPU time, process
count) that apply in both modes. When bubblewrap is unavailable or disabled
the builder degrades to direct mode, where only the kernel limits apply.

# Architecture

	┌──────────────────── CONFINEMENT ──────────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐           │
	│  │        bwrap namespace jail (outer)         │           │
	│  │  - ro-bind /usr /lib /lib64 /bin            │           │
	│  │  - ro-bind <packages_dir>                   │           │
	│  │  - bind <workspace> → /app (rw)             │           │
	│  │  - chdir /app                               │           │
	│  │  - fresh /proc, minimal /dev, tmpfs /tmp    │           │
	│  │  - --unshare-net when internet=false        │           │
	│  │                                              │           │
	│  │  ┌────────────────────────────────────────┐ │           │
	│  │  │      kernel rlimits (inner)            │ │           │
	│  │  │  - RLIMIT_AS    = memory_limit MiB     │ │           │
	│  │  │  - RLIMIT_CPU   = wall limit (+1 hard) │ │           │
	│  │  │  - RLIMIT_NPROC = 16                   │ │           │
	│  │  │                                         │ │           │
	│  │  │  ┌──────────────────────────────────┐  │ │           │
	│  │  │  │  runtime binary + user program   │  │ │           │
	│  │  │  └──────────────────────────────────┘  │ │           │
	│  │  └────────────────────────────────────────┘ │           │
	│  └────────────────────────────────────────────┘           │
	│                                                            │
	│  Direct mode: outer layer absent, inner layer remains.     │
	└───────────────────────────────────────────────────────────┘

# Core Components

Builder:
  - Composes the full argument vector for a job
  - SelectMode picks jailed vs direct from config and capability
  - ExecutionMode renders the effective mode for the health endpoint
  - Stateless beyond its configuration; safe for concurrent use

Capability / Probe:
  - Installed: the bwrap binary is discoverable on PATH
  - Working: a minimal benign invocation (ro-bind / over /, echo test)
    succeeded within 2 seconds
  - Computed lazily on first query, cached for the process lifetime via
    sync.Once; concurrent first queries are safe and idempotent

Limits:
  - MemoryMB: address-space ceiling, soft and hard equal
  - TimeLimit: drives the CPU-time backstop (soft = floor, hard = soft+1,
    clamped up to 1s for sub-second jobs)
  - A fixed process ceiling of 16 defeats fork bombs
  - Applied to a started child via prlimit on Linux; no-op elsewhere

# Jail Composition

The jailed argument vector mirrors the filesystem view a job is allowed:

	bwrap
	  --ro-bind /usr /usr          read-only system binaries and libraries
	  --ro-bind /lib /lib
	  --ro-bind /lib64 /lib64
	  --ro-bind /bin /bin
	  --tmpfs /tmp                 scratch space, discarded with the jail
	  --ro-bind <packages> <packages>   runtime toolchains, never writable
	  --bind <workspace> /app      the only writable host path
	  --chdir /app
	  --proc /proc                 fresh proc, host pids invisible
	  --dev /dev                   minimal device set
	  [--unshare-net]              when the request disables internet
	  --
	  <binary> <entry-file> <args...>

Everything not bound simply does not exist inside the jail: home
directories, /etc secrets, other jobs' workspaces. Mount propagation is
one-way; nothing the child mounts or writes escapes to the host.

# Mode Selection

	          use_bubblewrap=false ──────────────► direct
	                   │
	                   ▼
	          bwrap on PATH? ── no ──────────────► direct (degraded)
	                   │
	                  yes
	                   ▼
	          probe invocation ok? ── no ────────► direct (degraded)
	                   │
	                  yes
	                   ▼
	                jailed

Direct mode is a deliberate degradation, not an error: the service stays
available on hosts without user namespaces (some container runtimes,
hardened kernels), the health endpoint reports "degraded", and every job
logs a warning. Kernel limits still apply; filesystem and network
containment do not.

# Usage

Selecting a mode and composing an invocation:

	builder := sandbox.NewBuilder(cfg)

	mode := builder.SelectMode()
	argv := builder.BuildArgv(mode, ws.Root(), runtimeArgv, req.InternetEnabled())

	spec := supervisor.Spec{
		Argv:   argv,
		Limits: sandbox.Limits{MemoryMB: req.MemoryLimit, TimeLimit: req.TimeLimit},
		...
	}
	if mode == sandbox.ModeDirect {
		spec.Dir = ws.Root() // the jail's chdir is unavailable
	}

Reporting capability:

	cap := builder.Capability()
	fmt.Println(builder.ExecutionMode())
	// "sandboxed (bubblewrap)"
	// "direct (bubblewrap installed but not working)"
	// "direct (bubblewrap not installed)"
	// "direct (bubblewrap disabled by configuration)"

# Integration Points

This package integrates with:

  - pkg/executor: selects the mode and composes argv per job
  - pkg/supervisor: applies Limits to the spawned child
  - pkg/api: Capability and ExecutionMode feed the health endpoint
  - pkg/config: packages_dir and use_bubblewrap come from configuration

# Security Model

The jail is the containment boundary:

  - Write attempts to /usr, /lib, /bin, or the package root fail (EROFS)
  - Host paths outside the bind set are invisible, not merely unreadable
  - With internet=false the network namespace is unshared; outbound
    connections fail because no interface in the namespace is routable
  - A fresh /proc hides host processes

The kernel limits are the resource boundary:

  - RLIMIT_AS makes runaway allocation fail in the allocator instead of
    invoking the host OOM killer
  - RLIMIT_NPROC caps a fork bomb at 16 concurrent processes
  - RLIMIT_CPU backstops busy loops that outlive the supervisor

Known limitations:

  - In direct mode the internet flag has no effect and the filesystem is
    only protected by ordinary permissions; callers can detect this via
    the health endpoint and must not assume containment
  - RLIMIT_NPROC is enforced per UID; root is exempt by kernel policy
  - The limits are applied immediately after spawn rather than between
    fork and exec, leaving a window of a few hundred microseconds in
    which the child runs unlimited; the jail is in place from the first
    instruction either way

# Performance Characteristics

Probe:
  - One PATH lookup plus one bwrap invocation (~10-50ms), once per process
  - Subsequent queries are a cached struct read

Jail setup:
  - bwrap adds roughly 5-15ms per job for namespace and mount setup
  - No per-job state is kept in this package; argv composition is pure

# Troubleshooting

Health shows "installed but not working":
  - Symptom: bwrap present, probe invocation fails
  - Cause: unprivileged user namespaces disabled
    (kernel.unprivileged_userns_clone=0) or seccomp-blocked (common in
    Docker without --privileged)
  - Check: run `bwrap --ro-bind / / -- echo test` by hand as the service user

Jobs fail instantly in jailed mode:
  - Check: the bind sources exist on the host; a missing /lib64 makes
    bwrap abort before the runtime starts
  - Check: the runtime's package directory is under packages_dir, the only
    toolchain path bound into the jail

Limits appear not to apply:
  - Check: running as root — the kernel exempts root from RLIMIT_NPROC
  - Check: /proc/<pid>/limits of a live child shows the expected rows

Network reachable despite internet=false:
  - Check: execution mode; direct mode cannot unshare the network
  - Check: use_bubblewrap has not been disabled in configuration

# Design Patterns

Compose, don't execute:
  - The builder produces argument vectors and limit values; spawning and
    enforcement live in pkg/supervisor. The split keeps everything here
    pure and trivially testable — argv composition tests need no jail.

One probe, process-wide:
  - Host capability cannot change without an operator acting on the
    host, so the probe runs once behind sync.Once and every consumer
    (mode selection, health, metrics) reads the same cached answer
  - Concurrent first queries race benignly: the probe is idempotent

Explicit degradation:
  - Direct mode is a visible, logged, health-reported state — never a
    silent fallback. Operators alert on kiln_sandbox_jailed == 0.

Fixed interior geometry:
  - Every job sees the same world: its code at /app, toolchains at the
    package path, nothing else. Jobs cannot observe which host or which
    workspace directory they ran from.

# Complete Example

	package main

	import (
		"fmt"

		"github.com/cuemby/kiln/pkg/config"
		"github.com/cuemby/kiln/pkg/sandbox"
	)

	func main() {
		cfg := config.Default()
		builder := sandbox.NewBuilder(cfg)

		mode := builder.SelectMode()
		fmt.Println("mode:", mode, "-", builder.ExecutionMode())

		argv := builder.BuildArgv(mode, "/tmp/kiln-job-123",
			[]string{"/packages/python/3.11.9/bin/python3", "main.py"}, false)
		fmt.Println(argv)
		// [bwrap --ro-bind /usr /usr ... --tmpfs /tmp ... --bind /tmp/kiln-job-123 /app
		//  --chdir /app --proc /proc --dev /dev
		//  --unshare-net -- /packages/python/3.11.9/bin/python3 main.py]
	}

# Deployment Notes

Host requirements for jailed mode:

  - bubblewrap installed (distro package "bubblewrap")
  - Unprivileged user namespaces enabled:
    kernel.unprivileged_userns_clone=1 (Debian/Ubuntu sysctl)
  - When the service itself runs in a container, the runtime must allow
    namespace creation; default Docker seccomp profiles block it, which
    the probe detects and reports as "installed but not working"

The service does not need root in jailed mode; bubblewrap's setuid or
user-namespace path handles privilege. Running the service as root is
discouraged: it widens direct-mode blast radius and exempts jobs from
RLIMIT_NPROC.

# Monitoring

	kiln_sandbox_jailed           1 jailed / 0 direct; alert on 0
	/health jail_installed        bwrap present on PATH
	/health jail_working          probe invocation succeeded
	/health execution_mode        human-readable effective mode

A host that flips to direct mode after a kernel or container-profile
change keeps serving jobs; only the health surface and the gauge reveal
the lost containment, so wire them into alerting rather than assuming
the jail holds.

# Best Practices

Do:
  - Keep packages_dir outside any writable mount the job can reach; the
    ro-bind is the only intended view of it
  - Treat ExecutionMode strings as operator-facing text, not as an API;
    automate against Capability's booleans and the gauge instead
  - Re-run the probe by restarting the service after fixing the host;
    the cache is deliberately process-lifetime

Don't:
  - Add host paths to the bind set casually; every bind is attack
    surface inside the jail
  - Interpret internet=false as a guarantee in direct mode; check the
    mode first
  - Rely on RLIMIT_AS alone for fairness between jobs; it bounds one
    process's address space, not the host's total load

# See Also

  - bubblewrap: https://github.com/containers/bubblewrap
  - User namespaces: https://man7.org/linux/man-pages/man7/user_namespaces.7.html
  - prlimit: https://man7.org/linux/man-pages/man2/prlimit64.2.html
  - setrlimit semantics: https://man7.org/linux/man-pages/man2/setrlimit.2.html
  - Flatpak's bwrap usage: https://docs.flatpak.org/en/latest/sandbox-permissions.html
*/
package sandbox
