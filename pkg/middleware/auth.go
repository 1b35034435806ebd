package middleware

import (
	"net/http"
	"strings"

	"github.com/chefbazaar/backend/pkg/auth"
	"github.com/chefbazaar/backend/pkg/response"
)

// Authenticate is the authentication gate. It extracts the bearer credential
// from the Authorization header, verifies it, and attaches the verified
// identity to the request context. Missing, malformed, or invalid credentials
// answer 401 without reaching the handler.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil || claims.Email == "" {
			response.Unauthorized(w)
			return
		}

		ctx := auth.WithIdentity(r.Context(), auth.Identity{
			UID:   claims.UID,
			Email: claims.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
