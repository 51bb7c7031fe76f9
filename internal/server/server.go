package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/caselaw/casestrainer/internal/app"
)

// Server manages the HTTP server and routes for the CaseStrainer API
// (spec §6.1).
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
}

// New creates a new HTTP server wired to the given application.
func New(application *app.App) *Server {
	s := &Server{app: application}
	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // verification fan-out can take a while
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start starts the HTTP server. Blocks until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.app.Config.Server.Host, s.app.Config.Server.Port)
	s.app.Logger.Info().Str("address", addr).Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler, for use in tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
