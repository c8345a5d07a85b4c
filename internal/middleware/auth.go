package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mtlprog/taskpulse/internal/domain"
)

// AuthMiddleware handles Bearer token authentication for the admin API.
type AuthMiddleware struct {
	token string
}

// NewAuthMiddleware creates a new AuthMiddleware. An empty token disables
// authentication.
func NewAuthMiddleware(token string) *AuthMiddleware {
	if token == "" {
		slog.Warn("admin token not configured, admin API is unauthenticated")
	}
	return &AuthMiddleware{token: token}
}

// Authenticate validates the Bearer token against the configured admin token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		// Extract Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeUnauthorized(w, "missing authorization header")
			return
		}

		// Parse Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			writeUnauthorized(w, "invalid authorization header format")
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			writeUnauthorized(w, "missing token")
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
			writeUnauthorized(w, domain.ErrInvalidToken.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	http.Error(w, message, http.StatusUnauthorized)
}
