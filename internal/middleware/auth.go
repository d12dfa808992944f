// file: internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"referralhub/internal/contextutils"
	"referralhub/internal/response"
	"referralhub/internal/services"

	"go.uber.org/zap"
)

// HeaderAuthToken carries the bearer token without the "Bearer " prefix
const HeaderAuthToken = "x-auth-token"

// AuthMiddleware resolves tokens through the auth service
type AuthMiddleware struct {
	authService services.AuthService
	logger      *zap.Logger
}

// NewAuthMiddleware creates the authentication middleware
func NewAuthMiddleware(authService services.AuthService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, logger: logger}
}

// Authenticate attaches the caller's principal to the request context.
// When required is false a missing token passes through anonymously, but a bad token is still rejected.
func (am *AuthMiddleware) Authenticate(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" && !required {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := am.authService.Authenticate(r.Context(), token)
			if err != nil {
				GetRequestLogger(r.Context()).Debug("Authentication failed", zap.Error(err))
				response.QuickError(w, r, err)
				return
			}

			ctx := contextutils.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests without a valid token
func (am *AuthMiddleware) RequireAuth() func(http.Handler) http.Handler {
	return am.Authenticate(true)
}

// OptionalAuth resolves a token when one is sent
func (am *AuthMiddleware) OptionalAuth() func(http.Handler) http.Handler {
	return am.Authenticate(false)
}

// ExtractToken reads the x-auth-token header, falling back to an Authorization bearer token
func ExtractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(HeaderAuthToken)); token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
