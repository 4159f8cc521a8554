package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	goruntime "runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/kiln/pkg/config"
	"github.com/cuemby/kiln/pkg/executor"
	"github.com/cuemby/kiln/pkg/log"
	"github.com/cuemby/kiln/pkg/runtime"
	"github.com/cuemby/kiln/pkg/sandbox"
	"github.com/cuemby/kiln/pkg/types"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: "error", Output: io.Discard})
	os.Exit(m.Run())
}

const fakeRuntime = "#!/bin/sh\nexec /bin/sh \"$@\"\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	root := t.TempDir()
	for _, install := range [][3]string{
		{"python", "3.10.1", "python3"},
		{"node", "18.20.0", "node"},
	} {
		binDir := filepath.Join(root, install[0], install[1], "bin")
		require.NoError(t, os.MkdirAll(binDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(binDir, install[2]), []byte(fakeRuntime), 0755))
	}

	cfg := config.Default()
	cfg.PackagesDir = root
	cfg.UseBubblewrap = false

	registry := runtime.NewRegistry(root)
	builder := sandbox.NewBuilder(cfg)
	return NewServer(cfg, executor.New(cfg, registry, builder), registry, builder)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postExecute(t *testing.T, s *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/execute", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRootEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/")
	require.Equal(t, http.StatusOK, rec.Code)

	var body identityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Name)
	assert.NotEmpty(t, body.Version)
	assert.Equal(t, "running", body.Status)
}

func TestUnknownPathIs404(t *testing.T) {
	rec := get(t, newTestServer(t), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, []string{"healthy", "degraded"}, body.Status)
	assert.NotEmpty(t, body.ExecutionMode)
	// Healthy requires a working jail; the test server disables bubblewrap
	assert.Equal(t, "degraded", body.Status)
}

func TestRuntimesEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/v2/runtimes")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Runtimes []runtimeEntry `json:"runtimes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []runtimeEntry{
		{Language: "node", Version: "18.20.0", Runtime: "node-18.20.0"},
		{Language: "python", Version: "3.10.1", Runtime: "python-3.10.1"},
	}, body.Runtimes)
}

func TestExecuteEndpoint(t *testing.T) {
	rec := postExecute(t, newTestServer(t), map[string]any{
		"language": "python",
		"version":  "3.10",
		"files":    []map[string]string{{"name": "main.py", "content": "echo hello"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res types.ExecResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, types.ClassificationOK, res.Classification)
	assert.Equal(t, 0, res.Run.Code)
	assert.Equal(t, "hello\n", res.Run.Stdout)
	assert.NotEmpty(t, res.JobID)
}

func TestExecuteStdinRoundTrip(t *testing.T) {
	rec := postExecute(t, newTestServer(t), map[string]any{
		"language": "python",
		"version":  "3.10",
		"files":    []map[string]string{{"name": "main.py", "content": "read n; echo $((n*2))"}},
		"stdin":    "21\n",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res types.ExecResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "42\n", res.Run.Stdout)
}

func TestExecuteUnknownVersionIsResult(t *testing.T) {
	// Missing runtime is a job outcome, not an HTTP failure
	rec := postExecute(t, newTestServer(t), map[string]any{
		"language": "python",
		"version":  "99.99",
		"files":    []map[string]string{{"name": "x.py", "content": "echo never"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res types.ExecResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, types.ClassificationRuntimeNotFound, res.Classification)
	assert.Equal(t, 127, res.Run.Code)
	assert.Contains(t, res.Run.Message, "not found")
}

func TestExecuteValidationFailureIs422(t *testing.T) {
	rec := postExecute(t, newTestServer(t), map[string]any{
		"language": "cobol",
		"version":  "1",
		"files":    []map[string]string{{"name": "x", "content": ""}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Detail types.ValidationError `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "language", body.Detail.Field)
}

func TestExecuteMalformedBodyIs422(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/execute", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v2/execute", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kiln_")
}
