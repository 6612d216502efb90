package server

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/syntrixbase/showroom/internal/server/ratelimit"
	"github.com/syntrixbase/showroom/pkg/model"
)

// Middleware defines a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Timeout bounds the request context. A non-positive timeout leaves it alone.
func Timeout(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// wrapMiddleware builds the chain every request passes through. The access log
// sits outside panic recovery so a recovered panic is logged as a 500.
func (s *serverImpl) wrapMiddleware(h http.Handler) http.Handler {
	mws := []Middleware{
		assignRequestID,
		s.accessLog,
		s.recoverPanics,
		securityHeaders,
	}
	if s.cors != nil {
		mws = append(mws, s.cors.middleware)
	}
	if s.rateLimiter != nil {
		retryAfter := int(s.cfg.RateLimit.Window.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		mws = append(mws, ratelimit.Middleware(s.rateLimiter, retryAfter))
	}
	return Chain(h, mws...)
}

func assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func (s *serverImpl) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		observeRequest(r, rec.status, elapsed)
		s.logger.Log(r.Context(), accessLevel(r, rec.status), "HTTP Request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", r.Pattern,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", GetRequestID(r.Context()),
			"ip", ratelimit.GetClientIP(r),
		)
	})
}

// accessLevel logs server failures at error, except those the client caused by leaving.
func accessLevel(r *http.Request, status int) slog.Level {
	switch {
	case status == StatusClientClosedRequest:
		return slog.LevelWarn
	case status >= http.StatusInternalServerError && model.IsCanceled(r.Context().Err()):
		return slog.LevelWarn
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *serverImpl) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			s.logger.Error("Panic recovered",
				"method", r.Method,
				"path", r.URL.Path,
				"error", p,
				"stack", string(debug.Stack()),
				"request_id", GetRequestID(r.Context()),
			)
			if rec, ok := w.(*statusRecorder); ok && rec.wroteHeader {
				return
			}
			WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

var securityHeaderValues = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Content-Security-Policy", "default-src 'self'"},
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaderValues {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}
