// Package server implements the HTTP API for the review assistant
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tildaslashalef/revu/internal/config"
	"github.com/tildaslashalef/revu/internal/history"
	"github.com/tildaslashalef/revu/internal/loggy"
	"github.com/tildaslashalef/revu/internal/review"
)

// Server wraps an HTTP server with graceful shutdown capabilities
type Server struct {
	server *http.Server
	cfg    config.ServerConfig
	logger *loggy.Logger
}

// New creates a new HTTP server exposing the review operations
func New(cfg *config.Config, reviewService *review.Service, historyService *history.Service, logger *loggy.Logger) *Server {
	handler := NewHandler(reviewService, historyService, cfg.Server.MaxBodyBytes, logger)
	router := NewRouter(handler)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		cfg:    cfg.Server,
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until shutdown or error
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "address", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	s.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
