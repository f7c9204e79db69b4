// Package payout sends a seller's share of a paid sale to their payout
// account. Each call makes a single processor attempt.
package payout

import (
	"context"
	"errors"
	"log/slog"

	"tradefy/internal/metrics"
	"tradefy/internal/models"
	"tradefy/internal/repositories"
	"tradefy/internal/services/provider"
)

type Service interface {
	Initiate(ctx context.Context, req models.PayoutRequest) (string, error)
}

type service struct {
	sellers   repositories.SellerRepository
	processor provider.Processor
	currency  string
	logger    *slog.Logger
}

func NewService(sellers repositories.SellerRepository, processor provider.Processor, currency string, logger *slog.Logger) Service {
	return &service{
		sellers:   sellers,
		processor: processor,
		currency:  currency,
		logger:    logger,
	}
}

// Initiate returns the processor's payout id. Every failure is a *Error.
func (s *service) Initiate(ctx context.Context, req models.PayoutRequest) (string, error) {
	if !req.Amount.IsPositive() {
		return "", s.fail(req, ErrInvalidAmount)
	}

	seller, err := s.sellers.GetByID(ctx, req.SellerID)
	if err != nil {
		if errors.Is(err, repositories.ErrSellerNotFound) {
			return "", s.fail(req, ErrSellerNotFound)
		}
		return "", s.fail(req, err)
	}
	if seller.PayoutAccount == "" {
		return "", s.fail(req, ErrNoPayoutAccount)
	}

	payout, err := s.processor.CreatePayout(ctx, provider.PayoutRequest{
		Amount:    req.Amount,
		Currency:  s.currency,
		Recipient: seller.PayoutAccount,
		Reference: req.Reference,
	})
	if err != nil {
		return "", s.fail(req, err)
	}

	metrics.PayoutsSucceeded.Inc()
	s.logger.InfoContext(ctx, "Payout initiated",
		"seller_id", req.SellerID,
		"reference", req.Reference,
		"amount", req.Amount.String(),
		"payout_id", payout.ID,
	)
	return payout.ID, nil
}

func (s *service) fail(req models.PayoutRequest, err error) error {
	metrics.PayoutsFailed.Inc()
	return &Error{SellerID: req.SellerID, Reference: req.Reference, Err: err}
}
