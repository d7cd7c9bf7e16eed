// Package server implements the HTTP server for the application.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/review-bot/internal/config"
	"github.com/sevigo/review-bot/internal/core"
	"github.com/sevigo/review-bot/internal/render"
	"github.com/sevigo/review-bot/internal/storage"
)

const (
	defaultShutdownTimeout = 30 * time.Second
	// writeSlack extends the write deadline past the request timeout.
	writeSlack = 30 * time.Second
)

// Server serves the review API and shuts down gracefully.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// NewServer creates the HTTP server serving reviews through job.
func NewServer(cfg *config.Config, job core.Job, store storage.Store, html *render.HTMLRenderer, logger *slog.Logger) *Server {
	shutdown := cfg.Server.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = defaultShutdownTimeout
	}

	// No request timeout means no write deadline either.
	var writeTimeout time.Duration
	if cfg.Server.RequestTimeout > 0 {
		writeTimeout = cfg.Server.RequestTimeout + writeSlack
	}

	return &Server{
		server: &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           NewRouter(cfg, job, store, html, logger),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       120 * time.Second,
		},
		shutdownTimeout: shutdown,
		logger:          logger.With("component", "http"),
	}
}

// Start binds the listen address and serves until Stop is called.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. http.ErrServerClosed is not an error.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", "address", ln.Addr().String(), "write_timeout", s.server.WriteTimeout)

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop waits for in-flight reviews up to the shutdown timeout.
func (s *Server) Stop() error {
	s.logger.Info("shutting down HTTP server", "timeout", s.shutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}
