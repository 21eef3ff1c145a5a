package middleware

import (
	"net/http"
	"strings"

	"instamakaan/pkg/utils"

	"go.uber.org/zap"
)

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*utils.SessionClaims, error)
}

// Auth requires a valid "Authorization: Bearer <jwt>" header and stores the
// account id and role on the request context.
func Auth(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				logger.Warn("Rejected session token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			ctx := utils.SetAccountContext(r.Context(), claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
