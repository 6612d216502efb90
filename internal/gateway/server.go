package gateway

import (
	"net/http"
	"time"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/internal/gateway/config"
	"github.com/syntrixbase/showroom/internal/gateway/realtime"
	"github.com/syntrixbase/showroom/internal/gateway/rest"
	"github.com/syntrixbase/showroom/internal/server"
	"github.com/syntrixbase/showroom/internal/server/ratelimit"
)

// Server is a route registrar for the API layer.
// It registers REST, realtime and metrics routes to a given ServeMux.
type Server struct {
	rest     *rest.Handler
	realtime *realtime.Server
}

// ServerOption is a function that configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	pinger         rest.Pinger
	sessionLimiter ratelimit.Limiter
	sessionWindow  time.Duration
}

// WithPinger reports store reachability on /health.
func WithPinger(p rest.Pinger) ServerOption {
	return func(c *serverConfig) {
		c.pinger = p
	}
}

// WithSessionRateLimiter configures the limiter applied to session creation.
func WithSessionRateLimiter(limiter ratelimit.Limiter, window time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.sessionLimiter = limiter
		c.sessionWindow = window
	}
}

// NewServer creates a new API Server (route registrar).
func NewServer(sessions *catalog.Sessions, cat catalog.Catalog, cfg config.GatewayConfig, opts ...ServerOption) *Server {
	sc := &serverConfig{}
	for _, opt := range opts {
		opt(sc)
	}

	restOpts := []rest.HandlerOption{rest.WithRequestTimeout(cfg.RequestTimeout)}
	if sc.pinger != nil {
		restOpts = append(restOpts, rest.WithPinger(sc.pinger))
	}
	if sc.sessionLimiter != nil {
		restOpts = append(restOpts, rest.WithSessionRateLimiter(sc.sessionLimiter, sc.sessionWindow))
	}

	return &Server{
		rest:     rest.NewHandler(sessions, cat, restOpts...),
		realtime: realtime.NewServer(sessions, cfg.Realtime),
	}
}

// RegisterRoutes registers all API routes to the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	s.rest.RegisterRoutes(mux)

	mux.HandleFunc("GET /realtime/v1/sessions/{id}", s.realtime.HandleWS)
	mux.HandleFunc("GET /realtime/v1/sessions/{id}/events", s.realtime.HandleSSE)

	mux.Handle("GET /metrics", server.MetricsHandler())
}
