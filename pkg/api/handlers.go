package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cuemby/kiln/pkg/log"
	"github.com/cuemby/kiln/pkg/runtime"
	"github.com/cuemby/kiln/pkg/types"
)

// identityResponse is the GET / body
type identityResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// healthResponse is the GET /health body. Status is healthy iff the jail
// is functional; direct mode is a degraded service.
type healthResponse struct {
	Status        string `json:"status"`
	ExecutionMode string `json:"execution_mode"`
	JailInstalled bool   `json:"jail_installed"`
	JailWorking   bool   `json:"jail_working"`
}

// runtimeEntry is one discovered install in the GET /api/v2/runtimes body
type runtimeEntry struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Runtime  string `json:"runtime"`
}

// errorResponse carries a machine-readable validation failure
type errorResponse struct {
	Detail any `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, identityResponse{
		Name:    s.cfg.ServiceName,
		Version: s.cfg.ServiceVersion,
		Status:  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	capability := s.builder.Capability()
	status := "degraded"
	if capability.Working && s.cfg.UseBubblewrap {
		status = "healthy"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        status,
		ExecutionMode: s.builder.ExecutionMode(),
		JailInstalled: capability.Installed,
		JailWorking:   capability.Working,
	})
}

func (s *Server) handleRuntimes(w http.ResponseWriter, r *http.Request) {
	installed := s.registry.ListAvailable()
	entries := make([]runtimeEntry, 0, len(installed))
	for _, in := range installed {
		entries = append(entries, runtimeEntry{
			Language: in.Language,
			Version:  in.Version,
			Runtime:  fmt.Sprintf("%s-%s", in.Language, in.Version),
		})
	}
	writeJSON(w, http.StatusOK, map[string][]runtimeEntry{"runtimes": entries})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	// Bound the body read; a request larger than the file budget plus
	// framing slack can never validate anyway
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxTotalFilesSize)+1<<20)

	var req types.ExecRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Detail: fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}

	req.Normalize(s.cfg)
	if err := req.Validate(s.cfg, runtime.SupportedLanguages()); err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: verr})
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
		return
	}

	// Job-level failures (missing runtime, sandbox errors, timeouts) are
	// HTTP 200 with a classified result: the status code answers "could we
	// run the job at all", not "did the user's code succeed"
	result := s.executor.Execute(&req)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger := log.WithComponent("api")
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
