// Command seed creates a demo seller and product and prints development
// tokens for the admin, vendor and buyer roles.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tradefy/internal/config"
	"tradefy/internal/models"
	"tradefy/internal/money"
	"tradefy/internal/repositories"
	"tradefy/internal/utils"
)

const tokenTTL = 24 * time.Hour

func main() {
	config.LoadEnv()
	cfg := config.MustLoad(".")

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET must be set")
	}

	sellerEmail := config.GetEnv("SEED_SELLER_EMAIL", "seller@tradefy.test")
	payoutAccount := config.GetEnv("SEED_PAYOUT_ACCOUNT", "")
	price, err := money.Parse(config.GetEnv("SEED_PRODUCT_PRICE", "100.00"))
	if err != nil {
		log.Fatalf("Invalid SEED_PRODUCT_PRICE: %v", err)
	}

	db, err := repositories.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Printf("Failed to close PostgreSQL connection: %v", err)
		}
	}()

	ctx := context.Background()
	sellers := repositories.NewSellerRepository(db)
	products := repositories.NewProductRepository(db)

	seller, err := sellers.GetByEmail(ctx, sellerEmail)
	switch {
	case err == nil:
		log.Printf("Seller %s already exists", sellerEmail)
	case errors.Is(err, repositories.ErrSellerNotFound):
		seller = &models.Seller{
			Name:          "Demo Seller",
			Email:         sellerEmail,
			PayoutAccount: payoutAccount,
			Status:        "active",
		}
		if err := sellers.Create(ctx, seller); err != nil {
			log.Fatalf("Failed to create seller: %v", err)
		}
		log.Printf("Created seller %d", seller.ID)
	default:
		log.Fatalf("Failed to look up seller: %v", err)
	}

	product := &models.Product{
		SellerID: seller.ID,
		Name:     config.GetEnv("SEED_PRODUCT_NAME", "Demo product"),
		Price:    price,
		Status:   "active",
	}
	if err := products.Create(ctx, product); err != nil {
		log.Fatalf("Failed to create product: %v", err)
	}
	log.Printf("Created product %d priced %s", product.ID, product.Price)

	tokens := []struct {
		label  string
		claims models.UserClaims
	}{
		{"admin", models.UserClaims{UserID: 1, Email: "admin@tradefy.test", Role: "admin"}},
		{"vendor", models.UserClaims{UserID: seller.ID, Email: seller.Email, Role: "vendor"}},
		{"buyer", models.UserClaims{UserID: 1000, Email: "buyer@tradefy.test", Role: "buyer"}},
	}
	for _, t := range tokens {
		token, err := utils.GenerateToken(cfg.Auth.JWTSecret, &t.claims, tokenTTL)
		if err != nil {
			log.Fatalf("Failed to sign %s token: %v", t.label, err)
		}
		fmt.Printf("%s token: %s\n", t.label, token)
	}
}
