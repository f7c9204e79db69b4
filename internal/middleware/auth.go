// Package middleware provides HTTP middleware for the fiber app.
package middleware

import (
	"log/slog"
	"strings"

	"tradefy/internal/models"
	"tradefy/internal/utils"
	"tradefy/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates bearer JWTs and stores the caller's claims in the
// request context.
type AuthMiddleware struct {
	secret string
	logger *slog.Logger
}

func NewAuthMiddleware(secret string, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: secret,
		logger: logger,
	}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Unauthorized(c, "missing authorization header")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Unauthorized(c, "invalid authorization format")
	}

	claims, err := utils.ParseToken(m.secret, strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		m.logger.Debug("Token validation failed", "path", c.Path(), "error", err)
		return response.Unauthorized(c, "invalid token")
	}

	c.Locals(utils.ClaimsKey, claims)
	c.Locals("userID", claims.UserID)

	return c.Next()
}

// AdminOnly rejects callers whose role is not admin.
func AdminOnly(c *fiber.Ctx) error {
	claims, ok := utils.ClaimsFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if !claims.IsAdmin() {
		return response.Forbidden(c)
	}
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := utils.ClaimsFromContext(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		// Admins hold every permission.
		if claims.IsAdmin() || claims.HasPermission(permission) {
			return c.Next()
		}

		return response.Forbidden(c)
	}
}

// CanAccess reports whether claims may read a transaction of buyerID/sellerID.
func CanAccess(claims *models.UserClaims, buyerID, sellerID uint) bool {
	if claims.IsAdmin() {
		return true
	}
	switch claims.Role {
	case "vendor":
		return claims.UserID == sellerID
	default:
		return claims.UserID == buyerID
	}
}
