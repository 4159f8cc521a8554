/*
Package runtime resolves (language, version) requests to installed runtime
binaries.

Runtimes are third-party toolchains installed under a package root; the
registry never writes to this tree, and resolution is a pure function of
filesystem state. An optional fsnotify watcher keeps the enumeration used
by the runtimes endpoint cached between installs.

# Architecture

	┌──────────────────── RUNTIME REGISTRY ─────────────────────┐
	│                                                            │
	│  Package tree (read-only):                                 │
	│                                                            │
	│    <root>/                                                 │
	│      python/                                               │
	│        3.10.13/bin/python3                                 │
	│        3.11.9/bin/python3                                  │
	│      node/                                                 │
	│        18.20.0/bin/node                                    │
	│                                                            │
	│  ┌──────────────┐      ┌─────────────────┐                 │
	│  │  Resolve     │      │  ListAvailable  │                 │
	│  │  always reads│      │  cached while   │                 │
	│  │  the disk    │      │  Watch runs     │                 │
	│  └──────────────┘      └────────┬────────┘                 │
	│                                 │ invalidate               │
	│                        ┌────────▼────────┐                 │
	│                        │ fsnotify watcher│                 │
	│                        │ root + lang dirs│                 │
	│                        └─────────────────┘                 │
	└───────────────────────────────────────────────────────────┘

# Resolution Algorithm

Resolve(language, version):

 1. The language must be in the closed supported set; anything else is
    ErrUnsupportedLanguage.
 2. Try the exact directory <root>/<language>/<version>.
 3. Otherwise list the language's version directories, keep those whose
    name starts with the requested version, sort lexicographically, and
    pick the last — "3.11" binds to "3.11.9", deterministically.
 4. Inside the chosen directory, probe the language's candidate binary
    basenames under bin/ in order ("python3" before "python"); the first
    existing executable wins. None → ErrRuntimeNotFound.

Edge cases: a missing language directory, a version with no match, an
empty or missing bin/, and a binary without an execute bit all resolve to
ErrRuntimeNotFound with a message naming what was probed.

The prefix match is lexicographic, which is what installations of the
same minor line sort correctly under; it is not a semver comparison, and
"3.9" sorting after "3.10" across minor lines is avoided by requesting
the minor prefix itself.

# Enumeration and the Watcher

ListAvailable scans every supported language's directory and returns the
sorted installs. Scanning is cheap but the runtimes endpoint may be
polled; while Watch runs, the scan result is cached and served until the
watcher observes any event under the package root or a language
directory, at which point the cache drops and the next call rescans.

Watch blocks until its context is cancelled, and downgrades gracefully:
if the root cannot be watched the error is returned and enumeration
simply rescans on every call. Resolve never consults the cache — binding
a job to a binary always reflects the disk at that instant.

	go func() {
		if err := registry.Watch(ctx); err != nil {
			logger.Warn().Err(err).Msg("package tree watcher stopped")
		}
	}()

# Usage

	registry := runtime.NewRegistry(cfg.PackagesDir)

	desc, err := registry.Resolve("python", "3.11")
	switch {
	case errors.Is(err, runtime.ErrUnsupportedLanguage):
		// reject at the boundary
	case errors.Is(err, runtime.ErrRuntimeNotFound):
		// job outcome: exit 127
	case err == nil:
		// desc.BinaryPath is an existing executable
	}

	for _, in := range registry.ListAvailable() {
		fmt.Printf("%s-%s\n", in.Language, in.Version)
	}

# Supported Languages

The set is closed and compiled in:

	python   candidates: python3, python
	node     candidates: node

Adding a language is a one-line change to the table plus an installed
toolchain; nothing else in the service mentions concrete languages.

# Integration Points

This package integrates with:

  - pkg/executor: Resolve per job (stage 1 of the pipeline)
  - pkg/api: ListAvailable for /api/v2/runtimes; SupportedLanguages for
    request validation
  - cmd/kiln: starts Watch alongside the server; the runtimes subcommand
    lists installs and exits
  - pkg/sandbox: the package root is bound read-only into the jail, so
    resolved binary paths are valid inside and outside

# Failure Modes

  - ErrUnsupportedLanguage: never reaches the executor in practice; the
    API boundary validates against the same set
  - ErrRuntimeNotFound: surfaces in the result as classification
    runtime_not_found with exit 127 and a "not found" message
  - Watcher errors: logged, never fatal; the registry falls back to
    rescanning

# Troubleshooting

Requested version does not bind:
  - Check: the version directory name actually starts with the requested
    string; prefix matching is literal, "3.11" does not match "v3.11.9"

Binary exists but resolution fails:
  - Check: the execute bit; a mode-0644 binary is skipped
  - Check: the basename is one of the language's candidates

New install invisible in /api/v2/runtimes:
  - Without the watcher the next request rescans and sees it
  - With the watcher, events on deeper paths (bin/) are not watched;
    creating the version directory itself triggers invalidation

# Design Patterns

Pure resolution:
  - Resolve performs filesystem reads only; no state, no caching, no
    side effects. Two concurrent resolutions of the same request are
    independent and always reflect the disk.

Closed language table:
  - Supported languages and their candidate binaries live in one map;
    the validator, the resolver, and the enumerator all derive from it,
    so "supported" cannot mean different things in different places

Cache as an optimization, never a source of truth:
  - Only the enumeration (a listing for humans and dashboards) is
    cached, only while the watcher can invalidate it, and never the
    resolution a job's correctness depends on

# Performance Characteristics

Resolution:
  - Worst case: one stat, one directory listing, and one stat per
    candidate binary — a handful of syscalls per job
  - No locks are taken; resolution scales with filesystem cache

Enumeration:
  - Uncached: one ReadDir per language plus one per version set
  - Cached (watcher running): a mutex-guarded slice read
  - Invalidation is event-driven; the watcher holds no polling timers

# Complete Example

	registry := runtime.NewRegistry("/packages")

	go registry.Watch(ctx) // optional; keeps ListAvailable warm

	desc, err := registry.Resolve("python", "3.11")
	if err != nil {
		// errors.Is against ErrUnsupportedLanguage / ErrRuntimeNotFound
		return err
	}
	fmt.Println(desc.BinaryPath)
	// /packages/python/3.11.9/bin/python3

	for _, in := range registry.ListAvailable() {
		fmt.Printf("%s-%s\n", in.Language, in.Version)
	}
	// node-18.20.0
	// python-3.10.13
	// python-3.11.9

# See Also

  - fsnotify: https://github.com/fsnotify/fsnotify
  - pkg/sandbox: how the package root enters the jail
  - pkg/executor: where resolution failures become classifications
*/
package runtime
