/*
Package workspace manages per-job scratch directories.

A Workspace is a scoped acquisition: Create materializes a unique
directory under the system temp root populated with the request files,
and callers defer Destroy so the directory is removed on every
control-flow exit from the job body — success, failure, timeout, panic.

# Lifecycle

	┌────────────────── WORKSPACE LIFECYCLE ────────────────────┐
	│                                                            │
	│  Create(files)                                             │
	│    ├─ os.MkdirTemp("", "kiln-job-")                        │
	│    ├─ write each file, creating parent directories         │
	│    └─ any failure → remove everything, return error        │
	│                                                            │
	│  ... exactly one job runs against Root() ...               │
	│      jailed: Root() bind-mounted read-write at /app        │
	│      direct: Root() is the child's working directory       │
	│                                                            │
	│  Destroy()                                                 │
	│    └─ os.RemoveAll(root); idempotent                       │
	└───────────────────────────────────────────────────────────┘

Every workspace is owned exclusively by one job for its lifetime; the
unique MkdirTemp name is the isolation between concurrent jobs, and no
locking is needed.

# Usage

	ws, err := workspace.Create(req.Files)
	if err != nil {
		// classified as workspace_error by the caller
		return err
	}
	defer ws.Destroy()

	argv := builder.BuildArgv(mode, ws.Root(), runtimeArgv, internet)

Files may carry relative subpaths; intermediate directories are created
as needed:

	workspace.Create([]types.File{
		{Name: "main.py", Content: "import lib.util"},
		{Name: "lib/util.py", Content: "x = 1"},
	})

# Invariants

  - A workspace that Create returned exists, is unique, and contains
    exactly the request files.
  - A failed Create leaves nothing behind; the partially populated
    directory is removed before the error returns.
  - After Destroy the directory is gone; calling Destroy again is a
    no-op, so belt-and-suspenders cleanup paths are safe.

The test suite verifies the service-level consequence: after any job
completes, the temp root contains no directory the job created.

# Path Validation

The workspace performs no path checks of its own. File names are
validated at the API boundary (no absolute paths, no escaping ".."
segments), and the jail — not the filename check — is the containment
boundary for what a running job can reach. Keeping the check at the
boundary means a workspace is never created for a request that would be
rejected anyway.

# Integration Points

This package integrates with:

  - pkg/executor: Create before spawn, deferred Destroy (stage 2)
  - pkg/sandbox: Root() is bind-mounted to the jail's interior path
  - pkg/types: the File records written into the directory

# Troubleshooting

Workspace creation fails:
  - Check: the temp root (TMPDIR or /tmp) is writable and has space
  - A name colliding with an earlier file's directory ("lib/util.py"
    then "lib") fails the write; the request was malformed

Leftover kiln-job-* directories:
  - Indicates a crashed process, not a leaked job; the per-job defer
    covers panics but not SIGKILL of the service itself. The directories
    are under the temp root and safe to clear.

# Design Patterns

Scoped acquisition:
  - Create pairs with a deferred Destroy in the same function; the
    resource's lifetime is lexically visible at its one call site
  - Destroy's idempotence makes double-cleanup paths (error branches
    plus defer) safe without bookkeeping

Fail-closed creation:
  - Create either returns a fully populated workspace or nothing; the
    caller never sees a half-written directory

Temp-root delegation:
  - os.MkdirTemp provides uniqueness, permissions, and TMPDIR
    overridability; tests point TMPDIR at a private directory to assert
    teardown in isolation

# Performance Characteristics

Per-job cost:
  - One MkdirTemp plus one write per request file; small files dominate
    and the whole population is typically sub-millisecond
  - Destroy is a single RemoveAll; cost scales with whatever the job
    wrote, bounded in practice by the jail's writable surface

Concurrency:
  - Unlimited concurrent workspaces; uniqueness comes from MkdirTemp
    and no shared state exists to contend on

# Complete Example

	ws, err := workspace.Create([]types.File{
		{Name: "main.py", Content: "open('out.txt','w').write('hi')"},
	})
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	defer ws.Destroy()

	fmt.Println(ws.Root()) // /tmp/kiln-job-2142251966
	// ... run the job against Root() ...
	// deferred Destroy removes out.txt with the directory

# See Also

  - pkg/sandbox: how the workspace appears inside the jail
  - pkg/types: file name validation rules
  - os.MkdirTemp: https://pkg.go.dev/os#MkdirTemp
*/
package workspace
