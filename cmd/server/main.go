// Package main is the entry point for the settlement API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradefy/internal/config"
	"tradefy/internal/events"
	"tradefy/internal/handlers"
	"tradefy/internal/logging"
	"tradefy/internal/metrics"
	"tradefy/internal/repositories"
	"tradefy/internal/repositories/cache"
	"tradefy/internal/routes"
	"tradefy/internal/services/commission"
	"tradefy/internal/services/payment"
	"tradefy/internal/services/payout"
	"tradefy/internal/services/provider"
	"tradefy/internal/services/webhook"
	"tradefy/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadEnv()
	cfg := config.MustLoad(".")

	log := logging.GetLogger(cfg.Logs)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	table, err := commission.TableFromConfig(cfg.Commission)
	if err != nil {
		log.Error("Invalid rank table", "error", err)
		os.Exit(1)
	}

	metrics.Setup(cfg.Metrics, log)

	db, err := repositories.InitDB(cfg.Database)
	if err != nil {
		log.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to database")

	redisClient := cache.NewRedisClient(cfg.Redis)
	cacheService := cache.NewCacheService(redisClient, cfg.Redis.TTL)
	if err := cacheService.HealthCheck(context.Background()); err != nil {
		// The cache only serves display data; run without it.
		log.Warn("Redis unavailable at startup", "error", err)
	}

	publisher := events.New(cfg.Kafka)

	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("Failed to close event publisher", "error", err)
		}
		if err := cacheService.Close(); err != nil {
			log.Warn("Failed to close Redis connection", "error", err)
		}
		if err := repositories.Close(db); err != nil {
			log.Warn("Failed to close database connection", "error", err)
		}
	}()

	processor := newProcessor(cfg)
	log.Info("Payment processor configured", "provider", processor.Name())

	sellers := repositories.NewSellerRepository(db)
	products := repositories.NewProductRepository(db)
	transactions := repositories.NewTransactionRepository(db)
	webhookEvents := repositories.NewWebhookEventRepository(db)

	commissionService := commission.NewService(table, sellers, transactions, cacheService, cfg.Commission.CacheTTL, log)
	payoutService := payout.NewService(sellers, processor, cfg.Payment.Currency, log)
	paymentService := payment.NewService(products, transactions, processor, payment.Options{
		CallbackURL: cfg.Payment.CallbackURL(),
		ReturnURL:   cfg.Payment.ReturnURL,
		Currency:    cfg.Payment.Currency,
	}, log)

	deps := webhook.Deps{
		Transactions: transactions,
		Events:       webhookEvents,
		Commission:   commissionService,
		Payouts:      payoutService,
		Publisher:    publisher,
		Logger:       log,
	}
	services := routes.Services{
		Payment:      paymentService,
		Commission:   commissionService,
		Webhook:      webhook.NewService("moneroo", webhook.NewHMACVerifier(cfg.Payment.WebhookSecret), deps),
		Transactions: transactions,
		HealthChecks: map[string]handlers.Checker{
			"database": handlers.CheckFunc(func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}),
			"redis": cacheService,
		},
		CacheStats: cacheService,
		JWTSecret:  cfg.Auth.JWTSecret,
		Logger:     log,
	}
	if cfg.Payment.Provider == "stripe" {
		services.StripeWebhook = webhook.NewService("stripe", webhook.NewStripeVerifier(cfg.Payment.WebhookSecret), deps)
	}

	app := fiber.New(fiber.Config{
		AppName:      "tradefy",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return response.Error(c, fe.Code, fe.Message)
			}
			log.ErrorContext(c.UserContext(), "Unhandled request error", "path", c.Path(), "error", err)
			return response.ServerError(c, "internal server error")
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,OPTIONS",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, services)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("Server shutdown failed", "error", err)
		}
	}()

	log.Info("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Error("Server stopped", "error", err)
	}
}

func newProcessor(cfg *config.Config) provider.Processor {
	if cfg.Payment.Provider == "stripe" {
		return provider.NewStripe(cfg.Stripe.SecretKey, cfg.Payment.Timeout)
	}
	return provider.NewMoneroo(cfg.Payment.BaseURL, cfg.Payment.APIKey, cfg.Payment.Timeout)
}
