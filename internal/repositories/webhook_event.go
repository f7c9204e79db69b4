package repositories

import (
	"context"

	"tradefy/internal/models"

	"gorm.io/gorm"
)

type WebhookEventRepository interface {
	Create(ctx context.Context, event *models.WebhookEvent) error
	ListByExternalID(ctx context.Context, externalPaymentID string) ([]models.WebhookEvent, error)
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *webhookEventRepository) ListByExternalID(ctx context.Context, externalPaymentID string) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("external_payment_id = ?", externalPaymentID).
		Order("created_at ASC").Order("id ASC").
		Find(&events).Error
	return events, err
}
