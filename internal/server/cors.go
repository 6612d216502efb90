package server

import (
	"net/http"
	"strconv"
	"strings"
)

// corsPolicy is the CORS configuration resolved once at startup.
type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]struct{}
	credentials bool
	methods     string
	headers     string
	maxAge      string
}

// newCORSPolicy returns nil when CORS is disabled. No configured origins means any origin.
func newCORSPolicy(cfg Config) *corsPolicy {
	if !cfg.EnableCORS {
		return nil
	}
	p := &corsPolicy{
		anyOrigin:   len(cfg.AllowedOrigins) == 0,
		origins:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		maxAge:      strconv.Itoa(cfg.CORSMaxAge),
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			p.anyOrigin = true
		}
		p.origins[o] = struct{}{}
	}
	return p
}

func (p *corsPolicy) allows(origin string) bool {
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

func (p *corsPolicy) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			h := w.Header()
			h.Add("Vary", "Origin")
			if p.allows(origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				if p.credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				h.Set("Access-Control-Allow-Methods", p.methods)
				h.Set("Access-Control-Allow-Headers", p.headers)
				h.Set("Access-Control-Max-Age", p.maxAge)
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
