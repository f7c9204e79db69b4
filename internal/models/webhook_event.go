package models

import "time"

// Webhook delivery outcomes.
const (
	WebhookOutcomePaid      = "paid"
	WebhookOutcomeFailed    = "failed"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeConflict  = "conflict"
	WebhookOutcomeIgnored   = "ignored"
	WebhookOutcomeUnknown   = "unknown_transaction"
	WebhookOutcomeMalformed = "malformed"
	WebhookOutcomeRejected  = "invalid_signature"
)

// WebhookEvent is an audit row for every provider callback.
type WebhookEvent struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Provider          string    `gorm:"type:varchar(20);not null;index" json:"provider"`
	ExternalPaymentID string    `gorm:"index" json:"external_payment_id"`
	EventType         string    `gorm:"type:varchar(100);not null;index" json:"event_type"`
	Outcome           string    `gorm:"type:varchar(32);not null;index" json:"outcome"`
	SignatureValid    bool      `gorm:"default:false" json:"signature_valid"`
	Payload           string    `gorm:"type:text;not null" json:"payload"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
