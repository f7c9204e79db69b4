// Package routes wires HTTP routes to their handlers and middleware.
package routes

import (
	"log/slog"
	"strconv"
	"time"

	"tradefy/internal/handlers"
	"tradefy/internal/middleware"
	"tradefy/internal/models"
	"tradefy/internal/repositories"
	"tradefy/internal/services/commission"
	"tradefy/internal/services/payment"
	"tradefy/internal/services/webhook"
	"tradefy/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Services is everything the routes need, built once in main.
type Services struct {
	Payment       payment.Service
	Commission    commission.Service
	Webhook       webhook.Service
	StripeWebhook webhook.Service // nil unless the processor is Stripe
	Transactions  repositories.TransactionRepository
	HealthChecks  map[string]handlers.Checker
	CacheStats    handlers.StatsProvider
	JWTSecret     string
	Logger        *slog.Logger
}

func SetupRoutes(app *fiber.App, s Services) {
	auth := middleware.NewAuthMiddleware(s.JWTSecret, s.Logger)

	healthHandler := handlers.NewHealthHandler(s.HealthChecks, s.CacheStats)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/metrics", handlers.Metrics)

	api := app.Group("/api")

	// Webhooks authenticate by signature, not JWT.
	hooks := api.Group("/webhooks")
	hooks.Post("/moneroo", handlers.NewWebhookHandler(s.Webhook, handlers.MonerooSignatureHeaders, s.Logger).Handle)
	if s.StripeWebhook != nil {
		hooks.Post("/stripe", handlers.NewWebhookHandler(s.StripeWebhook, handlers.StripeSignatureHeaders, s.Logger).Handle)
	}

	commissionHandler := handlers.NewCommissionHandler(s.Commission, s.Logger)
	rates := api.Group("/commission")
	rates.Get("/ranks", commissionHandler.Ranks)
	rates.Get("/rank", commissionHandler.Rank)
	rates.Get("/breakdown", commissionHandler.Breakdown)
	rates.Get("/quote", commissionHandler.Quote)
	api.Get("/sellers/:id/commission",
		auth.Handler,
		middleware.HasPermission(models.PermissionCommissionRead),
		commissionHandler.SellerCommission,
	)

	paymentHandler := handlers.NewPaymentHandler(s.Payment, s.Logger)
	payments := api.Group("/payments", auth.Handler)
	payments.Post("",
		sessionLimiter(),
		middleware.HasPermission(models.PermissionPaymentWrite),
		paymentHandler.CreateSession,
	)
	payments.Get("/:externalId", middleware.HasPermission(models.PermissionTransactionRead), paymentHandler.GetStatus)

	adminHandler := handlers.NewAdminHandler(s.Transactions, s.Commission, s.Logger)
	admin := api.Group("/admin", auth.Handler, middleware.AdminOnly)
	admin.Get("/transactions", middleware.HasPermission(models.PermissionReadAdmin), adminHandler.ListTransactions)
	admin.Post("/transactions/:id/refund", middleware.HasPermission(models.PermissionWriteAdmin), adminHandler.Refund)
	admin.Get("/cache-stats", middleware.HasPermission(models.PermissionReadAdmin), healthHandler.CacheStats)
}

// sessionLimiter caps session creation per caller, since every call opens a
// session at the processor.
func sessionLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id, ok := c.Locals("userID").(uint); ok {
				return "user:" + strconv.FormatUint(uint64(id), 10)
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	})
}
