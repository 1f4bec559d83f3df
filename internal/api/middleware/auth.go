package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pvasek/taskhub/internal/api/shared"
	"github.com/pvasek/taskhub/internal/domain"
	"github.com/pvasek/taskhub/internal/redact"
	"github.com/pvasek/taskhub/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	tokenService auth.TokenService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokenService auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// Authenticate validates JWT tokens from the Authorization header and
// adds the resolved actor to the request context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract token from Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		// Check Bearer prefix
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		token := parts[1]

		// Validate token
		actor, err := m.tokenService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(
					w,
					r,
					http.StatusInternalServerError,
					"Authentication error",
				)
			}
			return
		}

		// Continue with the authenticated request
		next.ServeHTTP(w, r.WithContext(shared.WithActor(r.Context(), actor)))
	})
}

// GetActor extracts the authenticated actor from the request context.
// Returns the actor and a boolean indicating if it was found.
func GetActor(r *http.Request) (domain.Actor, bool) {
	return shared.ActorFromContext(r.Context())
}
