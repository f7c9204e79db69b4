// Package provider talks to the external payment processor: it opens hosted
// payment sessions and submits payouts to sellers.
package provider

import (
	"context"
	"errors"
	"fmt"

	"tradefy/internal/money"
)

// Processor is an external payment processor.
type Processor interface {
	Name() string
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	CreatePayout(ctx context.Context, req PayoutRequest) (*Payout, error)
}

type SessionRequest struct {
	Amount       money.Amount
	Currency     string
	ProductID    uint
	ProductName  string
	BuyerContact string
	Reference    string // our transaction reference, also the idempotency key
	CallbackURL  string
	ReturnURL    string
}

// Session is a hosted checkout opened at the processor.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type PayoutRequest struct {
	Amount    money.Amount
	Currency  string
	Recipient string
	Reference string
}

type Payout struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ErrProvider marks every failure reported by, or on the way to, the processor.
var ErrProvider = errors.New("payment provider error")

// Error carries the upstream status and body. StatusCode is 0 for transport
// failures and timeouts.
type Error struct {
	Provider   string
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: upstream status %d: %s", e.Provider, e.Op, e.StatusCode, e.Body)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProvider}
	}
	return []error{ErrProvider, e.Err}
}
