package http_test

import (
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apihttp "github.com/templatehub/template-manager/internal/http"
)

func securedHandler() nethttp.Handler {
	return apihttp.SecurityHeaders(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusOK)
	}))
}

func TestSecurityHeaders(t *testing.T) {
	t.Run("hardens every response", func(t *testing.T) {
		rec := httptest.NewRecorder()
		securedHandler().ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/api/templates", nil))

		h := rec.Header()
		assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
		assert.Equal(t, "no-store", h.Get("Cache-Control"))
	})

	t.Run("locks down API responses", func(t *testing.T) {
		rec := httptest.NewRecorder()
		securedHandler().ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/api/auth/login", nil))

		csp := rec.Header().Get("Content-Security-Policy")
		assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", csp)
	})

	t.Run("relaxes policy for swagger UI", func(t *testing.T) {
		rec := httptest.NewRecorder()
		securedHandler().ServeHTTP(rec, httptest.NewRequest(nethttp.MethodGet, "/swagger/index.html", nil))

		csp := rec.Header().Get("Content-Security-Policy")
		assert.Contains(t, csp, "default-src 'self'")
		assert.Contains(t, csp, "script-src 'self' 'unsafe-inline'")
		assert.Contains(t, csp, "img-src 'self' data:")
	})
}
