// Package payment opens payment sessions with the processor and records the
// pending sale.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tradefy/internal/logging"
	"tradefy/internal/metrics"
	"tradefy/internal/models"
	"tradefy/internal/repositories"
	"tradefy/internal/services/provider"
)

type service struct {
	products     repositories.ProductRepository
	transactions repositories.TransactionRepository
	processor    provider.Processor
	opts         Options
	logger       *slog.Logger
}

func NewService(
	products repositories.ProductRepository,
	transactions repositories.TransactionRepository,
	processor provider.Processor,
	opts Options,
	logger *slog.Logger,
) Service {
	return &service{
		products:     products,
		transactions: transactions,
		processor:    processor,
		opts:         opts,
		logger:       logger,
	}
}

// CreateSession opens a hosted checkout for the product's price. The pending
// transaction is stored only once the processor has returned its payment id,
// so a failed session leaves nothing behind. A crash between the two steps
// leaves an orphan session that never settles.
func (s *service) CreateSession(ctx context.Context, req Request) (*Result, error) {
	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product %d: %w", req.ProductID, err)
	}
	if !product.IsActive() || !product.Price.IsPositive() {
		return nil, ErrProductUnavailable
	}
	if isSelfPurchase(req, product) {
		return nil, ErrSelfPurchase
	}

	reference := uuid.NewString()
	ctx = logging.WithAttrs(ctx,
		slog.String("reference", reference),
		slog.Uint64("product_id", uint64(product.ID)),
	)

	contact := req.BuyerContact
	if contact == "" {
		contact = req.BuyerEmail
	}

	session, err := s.processor.CreateSession(ctx, provider.SessionRequest{
		Amount:       product.Price,
		Currency:     s.opts.Currency,
		ProductID:    product.ID,
		ProductName:  product.Name,
		BuyerContact: contact,
		Reference:    reference,
		CallbackURL:  s.opts.CallbackURL,
		ReturnURL:    s.opts.ReturnURL,
	})
	if err != nil {
		metrics.SessionsProviderError.Inc()
		s.logger.ErrorContext(ctx, "Payment session creation failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrPaymentProvider, err)
	}

	tx := &models.Transaction{
		Reference:         reference,
		ProductID:         product.ID,
		BuyerID:           req.BuyerID,
		SellerID:          product.SellerID,
		Amount:            product.Price,
		Currency:          s.opts.Currency,
		Status:            models.TransactionStatusPending,
		ExternalPaymentID: session.ID,
		BuyerContact:      contact,
		Metadata: models.JSON{
			"processor":    s.processor.Name(),
			"product_name": product.Name,
		},
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		metrics.SessionsStoreError.Inc()
		s.logger.ErrorContext(ctx, "Failed to store pending transaction",
			"payment_id", session.ID,
			"error", err,
		)
		return nil, fmt.Errorf("store pending transaction: %w", err)
	}

	metrics.SessionsCreated.Inc()
	s.logger.InfoContext(ctx, "Payment session created",
		"payment_id", session.ID,
		"transaction_id", tx.ID,
		"amount", tx.Amount.String(),
	)

	return &Result{
		SessionURL:        session.URL,
		ExternalPaymentID: session.ID,
		TransactionID:     tx.ID,
		Reference:         reference,
		Amount:            tx.Amount,
		Currency:          tx.Currency,
	}, nil
}

func (s *service) GetStatus(ctx context.Context, externalPaymentID string) (*models.Transaction, error) {
	tx, err := s.transactions.GetByExternalID(ctx, externalPaymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

func isSelfPurchase(req Request, product *models.Product) bool {
	if req.ActingSellerID != 0 && req.ActingSellerID == product.SellerID {
		return true
	}
	return product.Seller != nil && req.BuyerEmail != "" && strings.EqualFold(product.Seller.Email, req.BuyerEmail)
}
