package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cuemby/kiln/pkg/types"
)

// Client wraps the Kiln HTTP API for easy programmatic and CLI usage
type Client struct {
	baseURL string
	http    *http.Client
}

// Health is the response of the health endpoint
type Health struct {
	Status        string `json:"status"`
	ExecutionMode string `json:"execution_mode"`
	JailInstalled bool   `json:"jail_installed"`
	JailWorking   bool   `json:"jail_working"`
}

// Runtime is one installed runtime reported by the runtimes endpoint
type Runtime struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Runtime  string `json:"runtime"`
}

// APIError is a non-2xx response from the service
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kiln API error %d: %s", e.StatusCode, e.Body)
}

// New creates a client for the service at baseURL, e.g. "http://localhost:8000".
// The HTTP timeout must cover the longest permitted job, so it is generous.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Minute},
	}
}

// Execute submits a job and returns its result record. Job-level failures
// (missing runtime, timeout, sandbox errors) come back as a result with a
// classification; only transport and validation failures return an error.
func (c *Client) Execute(ctx context.Context, req *types.ExecRequest) (*types.ExecResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v2/execute", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var result types.ExecResult
	if err := c.do(httpReq, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Runtimes lists the installed runtimes
func (c *Client) Runtimes(ctx context.Context) ([]Runtime, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/runtimes", nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Runtimes []Runtime `json:"runtimes"`
	}
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	return body.Runtimes, nil
}

// Health reports the service's jail capability and execution mode
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}

	var h Health
	if err := c.do(req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: buf.String()}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
