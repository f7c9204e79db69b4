package payment

import (
	"context"

	"tradefy/internal/models"
	"tradefy/internal/money"
)

type Request struct {
	ProductID    uint
	BuyerID      uint
	BuyerEmail   string
	BuyerContact string
	// ActingSellerID is set when the caller is authenticated as a seller.
	ActingSellerID uint
}

type Result struct {
	SessionURL        string       `json:"session_url"`
	ExternalPaymentID string       `json:"external_payment_id"`
	TransactionID     uint         `json:"transaction_id"`
	Reference         string       `json:"reference"`
	Amount            money.Amount `json:"amount"`
	Currency          string       `json:"currency"`
}

type Options struct {
	CallbackURL string
	ReturnURL   string
	Currency    string
}

type Service interface {
	CreateSession(ctx context.Context, req Request) (*Result, error)
	GetStatus(ctx context.Context, externalPaymentID string) (*models.Transaction, error)
}
