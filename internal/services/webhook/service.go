// Package webhook receives payment processor callbacks and settles the
// matching transaction exactly once, however many times an event is
// delivered.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tradefy/internal/events"
	"tradefy/internal/logging"
	"tradefy/internal/metrics"
	"tradefy/internal/models"
	"tradefy/internal/money"
	"tradefy/internal/repositories"
	"tradefy/internal/services/commission"
	"tradefy/internal/services/payout"
)

const maxStoredPayload = 16 << 10

// Result is the acknowledged outcome of one delivery.
type Result struct {
	Outcome       string                   `json:"outcome"`
	PaymentID     string                   `json:"payment_id,omitempty"`
	TransactionID uint                     `json:"transaction_id,omitempty"`
	Status        models.TransactionStatus `json:"status,omitempty"`
	PayoutID      string                   `json:"payout_id,omitempty"`
}

type Service interface {
	// Handle returns ErrInvalidSignature, ErrMalformedPayload or
	// ErrUnknownTransaction for deliveries the processor should not retry as
	// is. Any other error is a storage failure and the delivery should be
	// retried.
	Handle(ctx context.Context, body []byte, signature string) (*Result, error)
}

type Deps struct {
	Transactions repositories.TransactionRepository
	Events       repositories.WebhookEventRepository
	Commission   commission.Service
	Payouts      payout.Service
	Publisher    events.Publisher
	Logger       *slog.Logger
}

type service struct {
	provider     string
	verifier     Verifier
	transactions repositories.TransactionRepository
	events       repositories.WebhookEventRepository
	commission   commission.Service
	payouts      payout.Service
	publisher    events.Publisher
	logger       *slog.Logger
}

func NewService(provider string, verifier Verifier, deps Deps) Service {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		provider:     provider,
		verifier:     verifier,
		transactions: deps.Transactions,
		events:       deps.Events,
		commission:   deps.Commission,
		payouts:      deps.Payouts,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *service) Handle(ctx context.Context, body []byte, signature string) (*Result, error) {
	start := time.Now()
	defer metrics.WebhookDuration.UpdateDuration(start)

	if err := s.verifier.Verify(body, signature); err != nil {
		s.logger.WarnContext(ctx, "Rejected webhook with invalid signature", "provider", s.provider)
		s.record(ctx, false, nil, models.WebhookOutcomeRejected, body)
		return nil, ErrInvalidSignature
	}

	env, err := Parse(body)
	if err != nil {
		s.logger.WarnContext(ctx, "Malformed webhook payload", "provider", s.provider)
		s.record(ctx, true, nil, models.WebhookOutcomeMalformed, body)
		return nil, ErrMalformedPayload
	}

	ctx = logging.WithAttrs(ctx,
		slog.String("payment_id", env.PaymentID),
		slog.String("event", env.Status),
	)

	tx, err := s.transactions.GetByExternalID(ctx, env.PaymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			s.logger.WarnContext(ctx, "Webhook for unknown transaction")
			s.record(ctx, true, env, models.WebhookOutcomeUnknown, body)
			return nil, ErrUnknownTransaction
		}
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	ctx = logging.WithAttrs(ctx, slog.Uint64("transaction_id", uint64(tx.ID)))

	result := &Result{PaymentID: env.PaymentID, TransactionID: tx.ID, Status: tx.Status}

	if env.Kind == KindUnknown {
		s.logger.InfoContext(ctx, "Ignoring webhook event with unhandled status")
		result.Outcome = models.WebhookOutcomeIgnored
		s.record(ctx, true, env, result.Outcome, body)
		return result, nil
	}

	target := models.TransactionStatusFailed
	if env.Kind == KindSuccess {
		target = models.TransactionStatusPaid
	}

	if tx.Status.IsTerminal() {
		result.Outcome = s.terminalOutcome(ctx, tx.Status, target)
		s.record(ctx, true, env, result.Outcome, body)
		return result, nil
	}

	commissionAmount := money.Zero
	if target == models.TransactionStatusPaid {
		sales, err := s.commission.SalesCount(ctx, tx.SellerID)
		if err != nil {
			return nil, err
		}
		quote, err := s.commission.Compute(sales, tx.Amount)
		if err != nil {
			return nil, fmt.Errorf("compute commission: %w", err)
		}
		commissionAmount = quote.Commission
		ctx = logging.WithAttrs(ctx, slog.String("rank", quote.Rank))
	}

	applied, err := s.transactions.Settle(ctx, env.PaymentID, target, commissionAmount)
	if err != nil {
		return nil, fmt.Errorf("settle transaction: %w", err)
	}
	if !applied {
		// Another delivery settled it between our read and the update.
		s.logger.InfoContext(ctx, "Transaction already settled by a concurrent delivery")
		result.Outcome = models.WebhookOutcomeDuplicate
		s.record(ctx, true, env, result.Outcome, body)
		return result, nil
	}

	tx.Status = target
	tx.Commission = commissionAmount
	result.Status = target
	result.Outcome = string(target)

	s.logger.InfoContext(ctx, "Transaction settled",
		"status", target,
		"amount", tx.Amount.String(),
		"commission", commissionAmount.String(),
	)
	s.invalidateSeller(ctx, tx)

	if target == models.TransactionStatusPaid {
		result.PayoutID = s.payout(ctx, tx)
	}

	s.publish(ctx, tx)

	s.record(ctx, true, env, result.Outcome, body)
	return result, nil
}

func (s *service) terminalOutcome(ctx context.Context, current, target models.TransactionStatus) string {
	if current == target {
		s.logger.InfoContext(ctx, "Duplicate webhook delivery", "status", current)
		return models.WebhookOutcomeDuplicate
	}
	s.logger.WarnContext(ctx, "Conflicting webhook event for settled transaction",
		"status", current,
		"requested", target,
	)
	return models.WebhookOutcomeConflict
}

// Side effects of a transition cannot undo it, so their failures are only
// logged.
func (s *service) invalidateSeller(ctx context.Context, tx *models.Transaction) {
	if err := s.commission.InvalidateSeller(ctx, tx.SellerID); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate seller commission cache", "seller_id", tx.SellerID, "error", err)
	}
}

// publish runs after the payout; the publisher bounds its own wait.
func (s *service) publish(ctx context.Context, tx *models.Transaction) {
	eventType := events.TypeTransactionFailed
	if tx.Status == models.TransactionStatusPaid {
		eventType = events.TypeTransactionPaid
	}
	err := s.publisher.Publish(ctx, events.Event{
		Type:              eventType,
		TransactionID:     tx.ID,
		Reference:         tx.Reference,
		ExternalPaymentID: tx.ExternalPaymentID,
		SellerID:          tx.SellerID,
		ProductID:         tx.ProductID,
		Amount:            tx.Amount,
		Commission:        tx.Commission,
		VendorAmount:      tx.VendorAmount(),
		Currency:          tx.Currency,
		OccurredAt:        time.Now().UTC(),
	})
	if err != nil {
		metrics.EventsPublishFailed.Inc()
		s.logger.ErrorContext(ctx, "Failed to publish settlement event", "type", eventType, "error", err)
		return
	}
	metrics.EventsPublished.Inc()
}

// payout returns the payout id, or "" when none was made.
func (s *service) payout(ctx context.Context, tx *models.Transaction) string {
	amount := tx.VendorAmount()
	if !amount.IsPositive() {
		s.logger.WarnContext(ctx, "Skipping payout, nothing due to seller", "vendor_amount", amount.String())
		return ""
	}

	id, err := s.payouts.Initiate(ctx, models.PayoutRequest{
		Amount:    amount,
		SellerID:  tx.SellerID,
		Reference: tx.Reference,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Payout failed, transaction stays paid",
			"seller_id", tx.SellerID,
			"vendor_amount", amount.String(),
			"error", err,
		)
		return ""
	}
	return id
}

func (s *service) record(ctx context.Context, signatureValid bool, env *Envelope, outcome string, body []byte) {
	metrics.WebhookOutcome(outcome).Inc()
	if s.events == nil {
		return
	}

	event := &models.WebhookEvent{
		Provider:       s.provider,
		EventType:      outcome,
		Outcome:        outcome,
		SignatureValid: signatureValid,
		Payload:        truncate(body, maxStoredPayload),
	}
	if env != nil {
		event.ExternalPaymentID = env.PaymentID
		event.EventType = env.Status
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to record webhook event", "outcome", outcome, "error", err)
	}
}

// truncate caps body at n bytes and makes it storable in a text column:
// valid UTF-8 with no NUL bytes.
func truncate(body []byte, n int) string {
	if len(body) > n {
		body = body[:n]
	}
	return strings.ReplaceAll(strings.ToValidUTF8(string(body), ""), "\x00", "")
}
