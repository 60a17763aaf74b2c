package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/config"
)

// Server represents the HTTP server lifecycle. Every request context derives from a
// server-scoped context that Shutdown cancels, so path searches still running when the
// process stops end at their next expansion instead of holding Shutdown until its deadline.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        config.HTTPConfig
	cancel     context.CancelFunc
}

// New constructs a Server instance using the provided router.
func New(logger *slog.Logger, cfg config.HTTPConfig, handler http.Handler) *Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	return &Server{
		httpServer: httpServer,
		logger:     logger,
		cfg:        cfg,
		cancel:     cancel,
	}
}

// Start begins listening for HTTP traffic on the configured address.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting http server", "addr", ln.Addr().String(), "metrics", s.cfg.MetricsEnabled)
	err := s.httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Shutdown cancels in-flight searches and waits for their handlers to respond.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.cancel()
	return s.httpServer.Shutdown(ctx)
}
