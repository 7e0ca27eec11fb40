package middleware

import (
	"errors"
	"strings"

	"persona-match/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
)

// Locals keys under which the authenticated caller is stored for handlers.
const (
	CtxUserIDKey = "auth_user_id"
	CtxEmailKey  = "auth_email"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

// Middleware rejects anything without a valid bearer access token. Refresh
// tokens are not accepted here; they only ever hit the refresh endpoint.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		scheme, raw, ok := strings.Cut(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), " ")
		token := strings.TrimSpace(raw)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}
		if claims.TokenType != jwt.TokenTypeAccess {
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxEmailKey, claims.Email)

		return c.Next()
	}
}
