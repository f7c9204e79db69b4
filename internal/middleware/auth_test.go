package middleware

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradefy/internal/models"
	"tradefy/internal/utils"
)

const secret = "test-secret"

func newApp() *fiber.App {
	auth := NewAuthMiddleware(secret, slog.New(slog.NewTextHandler(io.Discard, nil)))
	app := fiber.New()
	app.Get("/me", auth.Handler, func(c *fiber.Ctx) error {
		claims, _ := utils.ClaimsFromContext(c)
		return c.SendString(claims.Email)
	})
	app.Get("/pay", auth.Handler, HasPermission(models.PermissionPaymentWrite), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/admin", auth.Handler, AdminOnly, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func token(t *testing.T, role string, perms ...string) string {
	t.Helper()
	tok, err := utils.GenerateToken(secret, &models.UserClaims{UserID: 5, Email: role + "@example.com", Role: role, Permissions: perms}, time.Hour)
	require.NoError(t, err)
	return tok
}

func status(t *testing.T, app *fiber.App, path, authHeader string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	app := newApp()

	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "/me", "Token abc"))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "/me", "Bearer not-a-jwt"))
	assert.Equal(t, fiber.StatusOK, status(t, app, "/me", "Bearer "+token(t, "buyer")))

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "buyer"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "buyer@example.com", string(body))
}

func TestHasPermission(t *testing.T) {
	app := newApp()

	assert.Equal(t, fiber.StatusOK, status(t, app, "/pay", "Bearer "+token(t, "buyer")))
	assert.Equal(t, fiber.StatusForbidden, status(t, app, "/pay", "Bearer "+token(t, "guest", models.PermissionTransactionRead)))
	assert.Equal(t, fiber.StatusOK, status(t, app, "/pay", "Bearer "+token(t, "admin", models.PermissionReadAdmin)))
}

func TestAdminOnly(t *testing.T) {
	app := newApp()

	assert.Equal(t, fiber.StatusForbidden, status(t, app, "/admin", "Bearer "+token(t, "vendor")))
	assert.Equal(t, fiber.StatusOK, status(t, app, "/admin", "Bearer "+token(t, "admin")))
}

func TestCanAccess(t *testing.T) {
	buyer := &models.UserClaims{UserID: 9, Role: "buyer"}
	vendor := &models.UserClaims{UserID: 3, Role: "vendor"}
	admin := &models.UserClaims{UserID: 1, Role: "admin"}

	assert.True(t, CanAccess(buyer, 9, 3))
	assert.False(t, CanAccess(buyer, 10, 3))
	assert.True(t, CanAccess(vendor, 9, 3))
	assert.False(t, CanAccess(vendor, 3, 4))
	assert.True(t, CanAccess(admin, 9, 3))
}
