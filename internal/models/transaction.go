package models

import (
	"time"

	"tradefy/internal/money"
)

// TransactionStatus is the settlement state of a sale.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusPaid     TransactionStatus = "paid"
	TransactionStatusFailed   TransactionStatus = "failed"
	TransactionStatusRefunded TransactionStatus = "refunded"
)

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending: {TransactionStatusPaid, TransactionStatusFailed},
	TransactionStatusPaid:    {TransactionStatusRefunded},
}

// IsTerminal reports whether webhook events may still move the transaction.
// Only pending transactions react to payment events.
func (s TransactionStatus) IsTerminal() bool {
	return s != TransactionStatusPending
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusPaid, TransactionStatusFailed, TransactionStatusRefunded:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to TransactionStatus) bool {
	for _, s := range transactionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transaction tracks one sale from payment session to settlement.
type Transaction struct {
	ID                uint              `gorm:"primarykey" json:"id"`
	Reference         string            `gorm:"uniqueIndex;not null" json:"reference"`
	ProductID         uint              `gorm:"not null;index" json:"product_id"`
	BuyerID           uint              `gorm:"not null;index" json:"buyer_id"`
	SellerID          uint              `gorm:"not null;index:idx_transactions_seller_status,priority:1" json:"seller_id"`
	Amount            money.Amount      `gorm:"not null" json:"amount"`
	Commission        money.Amount      `gorm:"not null;default:0" json:"commission"`
	Currency          string            `gorm:"not null;default:'USD'" json:"currency"`
	Status            TransactionStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_transactions_seller_status,priority:2" json:"status"`
	ExternalPaymentID string            `gorm:"uniqueIndex;not null" json:"external_payment_id"`
	BuyerContact      string            `json:"buyer_contact,omitempty"`
	Metadata          JSON              `gorm:"type:jsonb" json:"metadata,omitempty"`
	SettledAt         *time.Time        `json:"settled_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// VendorAmount is what the seller receives once the sale is paid.
func (t *Transaction) VendorAmount() money.Amount {
	return t.Amount.Sub(t.Commission)
}

// PayoutRequest is built from a paid transaction and sent to the processor.
// It is never persisted.
type PayoutRequest struct {
	Amount    money.Amount
	SellerID  uint
	Reference string
}
