/*
Package client is a small Go client for the Kiln HTTP API.

It mirrors the wire contract exactly: Execute returns an ExecResult even
for jobs that failed to run (the classification says why), while
validation failures and transport problems surface as errors. The shared
types in pkg/types are used on both sides, so a service upgrade and its
clients stay in lockstep.

# Error Planes

The client preserves the service's three planes:

	Plane                      Go-level shape
	──────────────────────────────────────────────────────────
	transport failure          error from the http.Client
	request rejected (422)     *APIError{StatusCode, Body}
	job ran, any outcome       *ExecResult, err == nil

So callers never inspect HTTP status codes: a *ExecResult means the job
was admitted, and its classification plus run.code describe what
happened, including timeouts (124) and missing runtimes (127).

# Usage

Submitting a job:

	c := client.New("http://localhost:8000")

	res, err := c.Execute(ctx, &types.ExecRequest{
		Language:    "python",
		Version:     "3.11",
		Files:       []types.File{{Name: "main.py", Content: "print(6*7)"}},
		TimeLimit:   5,
		MemoryLimit: 128,
	})
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			// 422: apiErr.Body carries the machine-readable detail
		}
		return err
	}
	switch res.Classification {
	case types.ClassificationOK:
		fmt.Print(res.Run.Stdout)
	case types.ClassificationTimeout:
		fmt.Println("killed after", res.Run.WallTime, "ms")
	}

Discovering runtimes:

	runtimes, err := c.Runtimes(ctx)
	for _, rt := range runtimes {
		fmt.Println(rt.Runtime) // "python-3.11.9"
	}

Checking capability before relying on containment:

	h, err := c.Health(ctx)
	if err == nil && !h.JailWorking {
		// direct mode: internet=false has no effect on this host
	}

# Timeouts

The underlying http.Client timeout is 10 minutes: results return only
after the child terminates, so the client must outlive the service's
maximum wall-clock limit plus teardown. Per-call deadlines shorter than
that belong in the context:

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	res, err := c.Execute(ctx, req)

Cancelling the context abandons the HTTP request but not the job: the
service runs admitted jobs to completion regardless.

# Integration Points

This package integrates with:

  - pkg/types: request and result records shared with the service
  - pkg/api: the routes and status contract this client encodes

# Troubleshooting

Context deadline exceeded on long programs:
  - The result arrives only after termination; allow the job's time
    limit plus a few seconds before the context expires

APIError with status 422:
  - The body names the offending field; the request never became a job

Connection refused:
  - Check the base URL includes the scheme and the service port
    ("http://host:8000", no trailing slash needed)

# Design Patterns

Shared vocabulary:
  - Requests and results are the pkg/types records themselves; there is
    no parallel DTO layer to drift out of sync with the service

Errors where the contract has errors:
  - The client refuses to invent failure shapes: anything the service
    calls a job outcome stays a result, anything it rejects becomes an
    *APIError carrying the status and raw detail body

Plain http.Client:
  - No retries, no backoff, no connection pinning; execute calls are
    expensive and non-idempotent, so retry policy belongs to the caller
    who knows whether a duplicate run is acceptable

# Complete Example

	package main

	import (
		"context"
		"fmt"

		"github.com/cuemby/kiln/pkg/client"
		"github.com/cuemby/kiln/pkg/types"
	)

	func main() {
		c := client.New("http://localhost:8000")
		ctx := context.Background()

		h, err := c.Health(ctx)
		if err != nil {
			panic(err)
		}
		fmt.Println("mode:", h.ExecutionMode)

		res, err := c.Execute(ctx, &types.ExecRequest{
			Language: "python",
			Version:  "3.11",
			Files: []types.File{
				{Name: "main.py", Content: "n=input()\nprint(int(n)*2)"},
			},
			Stdin: "21",
		})
		if err != nil {
			panic(err)
		}
		fmt.Printf("[%s] %s", res.Classification, res.Run.Stdout)
		// [ok] 42
	}

# See Also

  - pkg/api: the wire contract this client encodes
  - pkg/types: classification vocabulary and record shapes
  - net/http client timeouts: https://pkg.go.dev/net/http#Client
*/
package client
