package server

import (
	"context"
	"net/http"
	"time"

	"github.com/MKhiriev/go-team-sync/internal/config"
	"github.com/MKhiriev/go-team-sync/internal/logger"
)

const shutdownTimeout = 5 * time.Second

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

// NewServer creates the status API server. An empty address is a
// misconfiguration.
func NewServer(handler http.Handler, cfg config.ClientServer, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(handler, cfg.HTTPAddress),
		logger:     logger,
	}, nil
}

func (s *server) RunServer(ctx context.Context) error {
	if err := s.httpServer.listen(); err != nil {
		return err
	}
	s.logger.Info().Str("address", s.httpServer.addr()).Msg("Launching HTTP server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.serve()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("server Shutdown gracefully")

	return <-serveErr
}

func (s *server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.shutdown(ctx); err != nil {
		s.logger.Err(err).Str("func", "server.Shutdown").Msg("HTTP server shutdown failed")
		return err
	}
	return nil
}
