package payout

import (
	"errors"
	"fmt"
)

var (
	ErrSellerNotFound  = errors.New("seller not found")
	ErrNoPayoutAccount = errors.New("seller has no payout account")
	ErrInvalidAmount   = errors.New("payout amount must be positive")
	ErrPayout          = errors.New("payout failed")
)

// Error is a failed payout attempt for one seller.
type Error struct {
	SellerID  uint
	Reference string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("payout %s to seller %d: %v", e.Reference, e.SellerID, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrPayout, e.Err}
}
