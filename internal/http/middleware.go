package http

import (
	"net/http"
	"strings"
)

const (
	// apiCSP locks JSON endpoints down completely; nothing served under /api
	// loads subresources or may be framed.
	apiCSP = "default-src 'none'; frame-ancestors 'none'"

	// swaggerCSP relaxes the policy for the Swagger UI, which needs inline
	// scripts, styles, and data: images to render.
	swaggerCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:"
)

// SecurityHeaders sets browser hardening headers on every response. Responses
// carry session tokens and account data, so caching is disabled outright.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Cache-Control", "no-store")

		if strings.HasPrefix(r.URL.Path, "/swagger/") {
			h.Set("Content-Security-Policy", swaggerCSP)
		} else {
			h.Set("Content-Security-Policy", apiCSP)
		}

		next.ServeHTTP(w, r)
	})
}
