package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/fernlabs/clientdash/pkg/slogx"
)

// SessionClaims is the authenticated identity extracted from a bearer session
// token.
type SessionClaims struct {
	UserID string
	Email  string
	Role   string
}

// SessionVerifier validates a raw bearer token and returns its claims.
// Implemented by the auth service.
type SessionVerifier interface {
	VerifySession(raw string) (SessionClaims, error)
}

// AuthnMiddleware requires a valid "Authorization: Bearer <token>" header and
// injects the verified identity into the request context.
func AuthnMiddleware(v SessionVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.VerifySession(raw)
			if err != nil {
				log.Warn("session verification failed", "err", err)
				writeBearerError(w, "invalid or expired session")
				return
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, CtxKeyRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose session does not carry the
// given role.
func RequireRole(role string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if roleFromContext(r.Context()) != role {
				Error(w, http.StatusForbidden, "insufficient privileges")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750-style error response for bearer auth failures.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	Error(w, http.StatusUnauthorized, "unauthorized")
}
