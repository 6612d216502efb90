package server

import (
	"fmt"
	"net"
	"net/http"
)

func (s *serverImpl) initHTTPServer() {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.HTTPPort),
		Handler:      s.wrapMiddleware(s.httpMux),
		ReadTimeout:  s.cfg.HTTPReadTimeout,
		WriteTimeout: s.cfg.HTTPWriteTimeout,
		IdleTimeout:  s.cfg.HTTPIdleTimeout,
	}
}

func (s *serverImpl) runHTTPServer(ln net.Listener, errChan chan<- error) {
	s.logger.Info("Starting HTTP server", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		errChan <- fmt.Errorf("http server error: %w", err)
	}
}
