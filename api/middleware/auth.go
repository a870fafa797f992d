package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cfl-legal/chambers-backend/api/responses"
	pkgAuth "github.com/cfl-legal/chambers-backend/pkg/auth"
	"github.com/cfl-legal/chambers-backend/pkg/config"
	pkgerrors "github.com/cfl-legal/chambers-backend/pkg/errors"
	"github.com/cfl-legal/chambers-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
// A missing token is an authentication failure (401); a token that is present
// but unparseable or expired is a forbidden request (403).
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			} else if strings.EqualFold(token, "bearer") {
				// "Bearer" with nothing after it is a scheme without credentials.
				token = ""
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxRole, claims.Role)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    claims.UserID.String(),
					"actor_role": claims.Role,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
