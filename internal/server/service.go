package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/syntrixbase/showroom/internal/server/ratelimit"
)

type serverImpl struct {
	cfg    Config
	logger *slog.Logger

	// HTTP State
	httpMux    *http.ServeMux
	httpServer *http.Server
	listener   net.Listener

	rateLimiter ratelimit.Limiter
	cors        *corsPolicy

	// Lifecycle State
	mu      sync.Mutex
	started bool
}

// New creates a new Service instance.
func New(cfg Config, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	s := &serverImpl{
		cfg:     cfg,
		logger:  logger,
		httpMux: http.NewServeMux(),
		cors:    newCORSPolicy(cfg),
	}

	if cfg.RateLimit.Enabled {
		s.rateLimiter = ratelimit.NewMemoryLimiter(cfg.RateLimit)
	}

	return s
}

func (s *serverImpl) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	s.started = true

	s.initHTTPServer()
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("http listen error: %w", err)
	}
	s.listener = ln
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go s.runHTTPServer(ln, errChan)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return nil // Normal shutdown signal
	}
}

func (s *serverImpl) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.httpServer != nil {
		s.logger.Info("Stopping HTTP server")
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown error: %w", err))
		}
	}

	if stoppable, ok := s.rateLimiter.(ratelimit.Stoppable); ok {
		stoppable.Stop()
	}

	return errors.Join(errs...)
}

func (s *serverImpl) RegisterHTTPHandler(pattern string, handler http.Handler) {
	s.httpMux.Handle(pattern, handler)
}

func (s *serverImpl) HTTPMux() *http.ServeMux {
	return s.httpMux
}

func (s *serverImpl) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
