package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/n0madic/go-genpipe/internal/codec"
	"github.com/n0madic/go-genpipe/internal/config"
	"github.com/n0madic/go-genpipe/internal/pipeline"
)

// maxBodyBytes limits the size of incoming request bodies.
const maxBodyBytes = 10 * 1024 * 1024 // 10 MB

// Server exposes the pipeline over HTTP.
type Server struct {
	Pipeline   *pipeline.Pipeline
	httpServer *http.Server
	handler    http.Handler
}

// New creates a server with all routes registered. The listen address comes
// from the settings snapshot at construction; the access token is re-read on
// every request.
func New(p *pipeline.Pipeline) *Server {
	s := &Server{Pipeline: p}
	cfg := s.settings()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /v1/generate", s.handleGenerate)
	mux.HandleFunc("POST /v1/selftest", s.handleSelfTest)
	mux.HandleFunc("GET /v1/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("GET /v1/candidates", s.handleCandidates)
	mux.Handle("GET /metrics", p.Metrics.Handler())

	mux.HandleFunc("OPTIONS /", s.handleOptions)

	s.handler = corsMiddleware(authMiddleware(s.accessToken, verboseMiddleware(cfg.Verbose, mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe starts the server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) settings() config.Settings {
	if s.Pipeline == nil || s.Pipeline.Settings == nil {
		return config.Default()
	}
	return s.Pipeline.Settings.Settings()
}

func (s *Server) accessToken() string {
	return strings.TrimSpace(s.settings().Server.AccessToken)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// decodeBody reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		codec.WriteOpenAIError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			codec.WriteOpenAIError(w, http.StatusBadRequest, "Invalid JSON body")
			return false
		}
		codec.WriteOpenAIError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
