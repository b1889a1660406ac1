package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/marufrahmandev/inventory-management-system/internal/platform/httpx"
	"github.com/marufrahmandev/inventory-management-system/internal/shared"
)

type contextKey struct{}

var claimsKey contextKey

// ContextWithClaims attaches verified token claims to the context.
func ContextWithClaims(ctx context.Context, claims *TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the verified claims, or nil outside an
// authenticated request.
func ClaimsFromContext(ctx context.Context) *TokenClaims {
	claims, _ := ctx.Value(claimsKey).(*TokenClaims)
	return claims
}

// Middleware guards routes with bearer-token checks.
type Middleware struct {
	Service *Service
}

// RequireAuth rejects requests without a valid bearer token.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.claimsFromRequest(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// RequireRole rejects authenticated requests whose token lacks the role.
func (m Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := m.claimsFromRequest(r)
			if err != nil {
				httpx.RespondError(w, err)
				return
			}
			if claims.Role != role {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

func (m Middleware) claimsFromRequest(r *http.Request) (*TokenClaims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, shared.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, shared.ErrUnauthorized
	}
	return m.Service.VerifyToken(strings.TrimSpace(parts[1]))
}
