package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/grafdb/pkg/engine"
)

// Server holds the HTTP interface and the underlying database engine.
type Server struct {
	Engine *engine.Engine

	httpServer *http.Server
	authToken  string
}

// NewServer wires the HTTP surface onto an existing engine. The engine must
// already be open; the server never closes it (main owns that lifecycle).
func NewServer(eng *engine.Engine, httpAddr string, authToken string) (*Server, error) {
	s := &Server{
		Engine:    eng,
		authToken: authToken,
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Chain middlewares: Recovery -> Logging -> Auth -> Mux
	// Order matters! Recovery must be outer-most to catch everything.

	var handler http.Handler = mux

	// 1. Auth (Inner)
	handler = s.authMiddleware(handler)

	// 2. Logging (Middle) - Logs duration and status
	handler = s.LoggingMiddleware(handler)

	// 3. Recovery (Outer) - Catches panics
	handler = s.RecoveryMiddleware(handler)

	// Liveness and metrics stay outside the auth chain so probes and
	// scrapers need no token.
	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)
	s.httpServer = &http.Server{
		Addr:    httpAddr,
		Handler: rootMux,
	}

	return s, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server gracefully. It does NOT close the engine.
func (s *Server) Shutdown() {
	slog.Info("starting graceful shutdown of HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
