package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ronin-novel/internal/models"

	"go.uber.org/zap"
)

// TokenVerifier проверяет строку токена и возвращает claims.
// Ошибки: models.ErrTokenInvalid, models.ErrTokenExpired, models.ErrTokenMalformed.
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

// AuthMiddleware проверяет Bearer JWT и кладет ID игрока в контекст запроса.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.With(zap.String("path", r.URL.Path))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Authorization header missing")
				models.SendJSONError(w, "Unauthorized: Missing token", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Malformed Authorization header")
				models.SendJSONError(w, "Unauthorized: Malformed token header", http.StatusUnauthorized)
				return
			}

			claims, err := verifier(r.Context(), parts[1])
			if err != nil {
				status := http.StatusUnauthorized
				msg := "Unauthorized: Invalid token"
				switch {
				case errors.Is(err, models.ErrTokenExpired):
					msg = "Unauthorized: Token expired"
				case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
				default:
					log.Error("Unexpected token verification error", zap.Error(err))
					status = http.StatusInternalServerError
					msg = "Internal server error during token verification"
				}
				log.Warn("Token verification failed", zap.Error(err))
				models.SendJSONError(w, msg, status)
				return
			}

			ctx := models.WithUserID(r.Context(), claims.UserID)
			log.Debug("User authorized", zap.Stringer("userID", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
