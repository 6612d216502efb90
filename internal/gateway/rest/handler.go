package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/internal/server"
	"github.com/syntrixbase/showroom/internal/server/ratelimit"
	"github.com/syntrixbase/showroom/pkg/model"
)

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	sessions *catalog.Sessions
	catalog  catalog.Catalog
	pinger   Pinger

	sessionLimiter ratelimit.Limiter
	sessionWindow  time.Duration
	requestTimeout time.Duration
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithPinger enables store reachability in /health.
func WithPinger(p Pinger) HandlerOption {
	return func(h *Handler) {
		h.pinger = p
	}
}

// WithSessionRateLimiter throttles session creation.
func WithSessionRateLimiter(limiter ratelimit.Limiter, window time.Duration) HandlerOption {
	return func(h *Handler) {
		h.sessionLimiter = limiter
		h.sessionWindow = window
	}
}

// WithRequestTimeout overrides DefaultRequestTimeout.
func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

func NewHandler(sessions *catalog.Sessions, cat catalog.Catalog, opts ...HandlerOption) *Handler {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if cat == nil {
		panic("catalog cannot be nil")
	}
	h := &Handler{
		sessions:       sessions,
		catalog:        cat,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Default body size limit
const DefaultMaxBodySize = 1 << 20 // 1MB

// Default request timeout
const DefaultRequestTimeout = 30 * time.Second

// APIError represents a structured error response
type APIError = server.APIError

// Error codes
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeStoreUnavailable = catalog.CodeStoreUnavailable
	ErrCodeSessionLimit     = "SESSION_LIMIT"
)

var writeError = server.WriteError

// writeInternalError writes an internal error response, but first checks if the error
// is due to client cancellation (returns 499 instead of 500).
func writeInternalError(w http.ResponseWriter, err error, message string) {
	if model.IsCanceled(err) {
		w.WriteHeader(server.StatusClientClosedRequest)
		return
	}
	slog.Error(message, "error", err)
	writeError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// writeCatalogError maps catalog and session errors to responses.
func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, catalog.ErrSessionClosed):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "Session not found")
	case errors.Is(err, model.ErrStoreUnavailable):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "Vehicle listings are temporarily unavailable")
	case errors.Is(err, catalog.ErrSessionLimit):
		writeError(w, http.StatusServiceUnavailable, ErrCodeSessionLimit, "Too many open sessions")
	default:
		writeInternalError(w, err, "Catalog request failed")
	}
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

// maxBodySize wraps a handler with request body size limiting
func maxBodySize(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// decodeBody decodes a JSON request body, reporting 400 or 413 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, "Request body too large")
			return false
		}
		slog.Warn("Invalid request body", "error", err, "request_id", server.GetRequestID(r.Context()))
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	route := func(pattern string, fn http.HandlerFunc, timeout time.Duration) {
		mux.Handle(pattern, server.Chain(fn, server.Timeout(timeout)))
	}
	t := h.requestTimeout

	// Catalog sessions
	route("POST /api/v1/sessions", h.rateLimited(h.handleCreateSession), t)
	route("GET /api/v1/sessions/{id}", h.handleGetSession, t)
	route("DELETE /api/v1/sessions/{id}", h.handleDeleteSession, t)
	route("POST /api/v1/sessions/{id}/search", maxBodySize(h.handleSearch, DefaultMaxBodySize), t)
	route("POST /api/v1/sessions/{id}/retry", h.handleRetry, t)
	route("POST /api/v1/sessions/{id}/images/{vehicle}/loaded", h.handleImageLoaded, t)

	// Stateless catalog reads
	route("GET /api/v1/vehicles", h.handleListVehicles, t)

	// Health Check (minimal timeout)
	route("GET /health", h.handleHealth, 5*time.Second)
}

// rateLimited applies the session limiter when one is configured.
func (h *Handler) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	if h.sessionLimiter == nil {
		return next
	}
	retryAfter := int(h.sessionWindow.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	return ratelimit.Middleware(h.sessionLimiter, retryAfter)(next).ServeHTTP
}
