package handler

import (
	"net/http"

	"github.com/theerakarnm/ekoe-checkout/internal/auth"
)

const apiKeyHeader = "X-API-Key"

// RequireAPIKey returns middleware that authenticates requests via the
// X-API-Key header. Failed authentication yields an opaque 401.
func RequireAPIKey(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(apiKeyHeader)
			if key == "" {
				writeError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, err := authenticator.Authenticate(r.Context(), key); err != nil {
				writeError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
