package utils

import (
	"tradefy/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ClaimsKey is the fiber Locals key the auth middleware stores claims under.
const ClaimsKey = "claims"

// ClaimsFromContext returns the authenticated caller, if any.
func ClaimsFromContext(c *fiber.Ctx) (*models.UserClaims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*models.UserClaims)
	return claims, ok && claims != nil
}
