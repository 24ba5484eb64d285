package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/fundsim/Paper-Trading-Backend/internal/api/response"
)

// APIKeyMiddleware guards admin endpoints. Requests must carry the
// configured key in the X-API-Key header. When INTERNAL_API_KEY is unset,
// admin endpoints are disabled entirely rather than left open.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("INTERNAL_API_KEY")
		if expected == "" {
			response.RespondError(w, http.StatusForbidden, "admin endpoints disabled", "INTERNAL_API_KEY not configured")
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "API key required", "")
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "invalid API key", "")
			return
		}

		next.ServeHTTP(w, r)
	})
}
