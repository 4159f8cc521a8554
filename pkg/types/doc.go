/*
Package types defines the job descriptor and result records exchanged over
the Kiln API, together with the boundary validation applied to incoming
requests.

An ExecRequest is normalized (language lowercased, unset limits defaulted)
and validated exactly once, at the API boundary. Past that point the
request is treated as immutable. ExecResult nests the per-process
observables inside a RunOutcome and carries a classification describing
how the job terminated.

# Data Model

	┌────────────────────── REQUEST ────────────────────────────┐
	│  ExecRequest                                               │
	│    language      closed set, lowercased                    │
	│    version       exact or prefix ("3.11" → "3.11.9")       │
	│    files[]       {name, content}; first entry = entry point│
	│    stdin         bytes fed to the child                    │
	│    args[]        appended after the entry file             │
	│    time_limit    seconds, 0 = configured default           │
	│    memory_limit  MB, 0 = configured default                │
	│    internet      omitted/null = enabled                    │
	└───────────────────────────────────────────────────────────┘

	┌────────────────────── RESULT ─────────────────────────────┐
	│  ExecResult                                                │
	│    language, version   echoed from the request             │
	│    job_id              uuid, matches server-side logs      │
	│    classification      ok | runtime_not_found |            │
	│                        workspace_error | sandbox_error |   │
	│                        timeout | internal_error            │
	│    run: RunOutcome                                         │
	│      stdout, stderr    captured, truncated streams         │
	│      output            stdout then stderr concatenated     │
	│      code              exit code (0, child's, 124, 127, 1) │
	│      signal            terminating signal name, if any     │
	│      message, status   reason a job could not run          │
	│      cpu_time          child CPU milliseconds              │
	│      wall_time         monotonic wall milliseconds         │
	│      memory            peak RSS bytes, best effort         │
	└───────────────────────────────────────────────────────────┘

# Validation Rules

Validate runs after Normalize and reports the first violation as a
*ValidationError naming the offending field:

	language      must be in the supported set
	version       nonempty
	files         1..max_files_count entries
	files[i].name nonempty after trimming; relative POSIX path; no
	              leading "/"; no NUL; cleaned path must not escape the
	              workspace ("../x" rejected, "a/../b.py" allowed)
	files[i].content  at most max_file_size bytes
	files (aggregate) at most max_total_files_size bytes
	time_limit    within [0.1, max_time_limit] seconds
	memory_limit  within [32, max_memory_limit] MB

The traversal check is defensive hardening: inside the jail a hostile
name cannot reach the host, but in direct mode a ".." segment would
escape the workspace, so it is rejected before a workspace ever exists.

# Usage

At the API boundary:

	var req types.ExecRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { ... }

	req.Normalize(cfg)
	if err := req.Validate(cfg, runtime.SupportedLanguages()); err != nil {
		var verr *types.ValidationError
		errors.As(err, &verr)
		// verr.Field, verr.Message → HTTP 422 detail
	}

Defaults and the internet tri-state:

	req := &types.ExecRequest{Language: "Python", Version: "3.11"}
	req.Normalize(cfg)
	req.Language          // "python"
	req.TimeLimit         // cfg.DefaultTimeLimit
	req.InternetEnabled() // true — nil means enabled

The internet field is a *bool so an omitted JSON field is distinguishable
from an explicit false; only an explicit false unshares the network.

# Wire Encoding

Field names follow the JSON contract exactly (snake_case); optional
outcome fields (signal, message, status, memory) are omitted when empty
rather than emitted as nulls. The classification vocabulary is closed and
stable: clients may switch on it.

# Integration Points

This package integrates with:

  - pkg/api: decode, normalize, validate, encode
  - pkg/executor: consumes validated requests, produces ExecResult
  - pkg/workspace: materializes the files sequence
  - pkg/client: shares these records on the consuming side
  - pkg/config: limit values for validation

# Design Notes

The request is a single immutable struct with explicit validation, not a
map of options: every recognized field is typed, and unknown fields are
ignored by encoding/json rather than smuggled through. Validation returns
the first violation rather than collecting all of them; clients fix one
field at a time and the detail stays a single machine-readable object.

# Classification Vocabulary

	ok                 the job ran; run.code is the child's own verdict
	runtime_not_found  no installed runtime matched; run.code 127
	workspace_error    scratch directory setup failed; run.code 1
	sandbox_error      the child could not be spawned/confined; run.code 1
	timeout            wall clock expired; run.code 124, signal SIGKILL
	internal_error     unexpected service failure; run.code 1, redacted
	                   message

Exit-code conventions are part of the contract: 127 and 124 carry the
service's own meaning together with the runtime_not_found and timeout
classifications. A child's own exit status is passed through unchanged,
so a child that exits with 124 or 127 itself is reported with that code
under classification ok.

# Complete Example

	cfg := config.Default()

	payload := `{
	  "language": "Python", "version": "3.11",
	  "files": [{"name": "main.py", "content": "print(6*7)"}]
	}`

	var req types.ExecRequest
	_ = json.Unmarshal([]byte(payload), &req)

	req.Normalize(cfg)
	// language "python", time_limit 30, memory_limit 128, internet on

	if err := req.Validate(cfg, []string{"node", "python"}); err != nil {
		var verr *types.ValidationError
		errors.As(err, &verr)
		fmt.Println(verr.Field, "—", verr.Message)
		return
	}
	// request is immutable from here; hand it to the executor

# Troubleshooting

Validation rejects a name that looks relative:
  - "a/../../x" cleans to "../x", which escapes; interior ".." that
    stays inside ("a/../b.py") is accepted

Explicit zero limits come back as defaults:
  - Zero means "unset" on the wire; a request genuinely wanting the
    minimum sends 0.1 / 32, not 0

Internet flag ignored:
  - JSON false must be explicit; absent and null both mean enabled

# See Also

  - pkg/api: how validation failures map to HTTP 422
  - pkg/executor: how classifications are assigned
  - encoding/json field semantics: https://pkg.go.dev/encoding/json
*/
package types
