// Package server provides the HTTP API over a resources client.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kraenzle-ritter/resources"
	"github.com/kraenzle-ritter/resources/pkg/constants"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	client   resources.Client
	gatherer prometheus.Gatherer
	logger   *zerolog.Logger
	config   Config
}

// New creates a new server instance. A nil gatherer disables /metrics.
func New(client resources.Client, gatherer prometheus.Gatherer, logger *zerolog.Logger, cfg Config) *Server {
	if cfg.PathPrefix == "" {
		cfg.PathPrefix = DefaultConfig().PathPrefix
	}
	return &Server{
		client:   client,
		gatherer: gatherer,
		logger:   logger,
		config:   cfg,
	}
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// ListenAndServe serves until ctx ends, then drains open connections for
// up to constants.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("addr", srv.Addr).
			Str("prefix", s.config.PathPrefix).
			Bool("metrics", s.config.MetricsEnabled).
			Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn().Err(err).Msg("HTTP server shutdown timed out")
		return err
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
