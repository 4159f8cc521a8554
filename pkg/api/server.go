package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cuemby/kiln/pkg/config"
	"github.com/cuemby/kiln/pkg/executor"
	"github.com/cuemby/kiln/pkg/log"
	"github.com/cuemby/kiln/pkg/metrics"
	"github.com/cuemby/kiln/pkg/runtime"
	"github.com/cuemby/kiln/pkg/sandbox"
)

// Server is the HTTP API for the execution service
type Server struct {
	cfg      *config.Config
	executor *executor.Executor
	registry *runtime.Registry
	builder  *sandbox.Builder
	mux      *http.ServeMux
	http     *http.Server
}

// NewServer creates the API server and registers all routes
func NewServer(cfg *config.Config, exec *executor.Executor, registry *runtime.Registry, builder *sandbox.Builder) *Server {
	mux := http.NewServeMux()
	s := &Server{
		cfg:      cfg,
		executor: exec,
		registry: registry,
		builder:  builder,
		mux:      mux,
	}

	mux.HandleFunc("GET /{$}", s.instrument("/", s.handleRoot))
	mux.HandleFunc("GET /health", s.instrument("/health", s.handleHealth))
	mux.HandleFunc("GET /api/v2/runtimes", s.instrument("/api/v2/runtimes", s.handleRuntimes))
	mux.HandleFunc("POST /api/v2/execute", s.instrument("/api/v2/execute", s.handleExecute))
	mux.Handle("GET /metrics", metrics.Handler())

	return s
}

// Start begins serving and blocks until the server stops
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: corsMiddleware(s.mux),
		// Execute requests block for up to the maximum wall-clock limit plus
		// teardown margin, so the write timeout must sit above it
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(s.cfg.MaxTimeLimit)*time.Second + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger := log.WithComponent("api")
	logger.Info().Str("addr", s.http.Addr).Msg("API listening")
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server, letting in-flight jobs finish
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Handler returns the route handler for tests and embedding
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

// instrument wraps a handler with request metrics
func (s *Server) instrument(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.APIRequestsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		metrics.APIRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// corsMiddleware applies a permissive CORS policy; the service has no
// browser-facing auth to protect
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
