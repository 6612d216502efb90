package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCORSPolicy_Disabled(t *testing.T) {
	assert.Nil(t, newCORSPolicy(Config{AllowedOrigins: []string{"*"}}))
}

func TestCORSPolicy(t *testing.T) {
	base := DefaultConfig()
	base.EnableCORS = true

	tests := []struct {
		name        string
		origins     []string
		credentials bool
		method      string
		origin      string
		wantAllowed bool
		wantStatus  int
	}{
		{name: "empty list allows any", method: "GET", origin: "http://a.test", wantAllowed: true, wantStatus: http.StatusOK},
		{name: "wildcard allows any", origins: []string{"*"}, method: "GET", origin: "http://b.test", wantAllowed: true, wantStatus: http.StatusOK},
		{name: "listed origin", origins: []string{"http://shop.test"}, credentials: true, method: "GET", origin: "http://shop.test", wantAllowed: true, wantStatus: http.StatusOK},
		{name: "unlisted origin", origins: []string{"http://shop.test"}, method: "GET", origin: "http://evil.test", wantStatus: http.StatusOK},
		{name: "preflight", origins: []string{"http://shop.test"}, method: http.MethodOptions, origin: "http://shop.test", wantAllowed: true, wantStatus: http.StatusNoContent},
		{name: "no origin header", method: "GET", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.AllowedOrigins = tt.origins
			cfg.AllowCredentials = tt.credentials
			policy := newCORSPolicy(cfg)
			require.NotNil(t, policy)

			reached := false
			h := policy.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
			}))
			req := httptest.NewRequest(tt.method, "/api/v1/sessions", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := serve(h, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.method != http.MethodOptions, reached)
			if tt.origin != "" {
				assert.Equal(t, "Origin", rr.Header().Get("Vary"))
			} else {
				assert.Empty(t, rr.Header().Get("Vary"))
			}
			if !tt.wantAllowed {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
				return
			}
			assert.Equal(t, tt.origin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
			assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Methods"))
			if tt.credentials {
				assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}
