package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/healthportal/backend/libs/auth/service"
)

type contextKey string

const claimKey contextKey = "sessionClaim"

// SessionReader validates a session token and returns its claim
type SessionReader interface {
	Read(token string) (*service.Claim, error)
}

// TokenFromRequest extracts the session token from the Authorization header or the session cookie
func TokenFromRequest(r *http.Request, cookieName string) string {
	// Try Authorization header first
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// SessionMiddleware requires a valid session and stores its claim in the request context
// It answers API callers with JSON 401 instead of redirecting
func SessionMiddleware(sessions SessionReader, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"authentication required"}`))
				return
			}

			claim, err := sessions.Read(token)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid or expired session"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaim(r.Context(), claim)))
		})
	}
}

// WithClaim returns a copy of ctx carrying the session claim
func WithClaim(ctx context.Context, claim *service.Claim) context.Context {
	return context.WithValue(ctx, claimKey, claim)
}

// GetClaim retrieves the session claim from context
func GetClaim(ctx context.Context) (*service.Claim, bool) {
	claim, ok := ctx.Value(claimKey).(*service.Claim)
	return claim, ok && claim != nil
}
