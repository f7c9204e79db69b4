// Package mocks holds testify mocks of the repository and processor
// interfaces shared by service and handler tests.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"tradefy/internal/events"
	"tradefy/internal/models"
	"tradefy/internal/money"
	"tradefy/internal/services/provider"
)

type SellerRepository struct {
	mock.Mock
}

func (m *SellerRepository) Create(ctx context.Context, seller *models.Seller) error {
	return m.Called(ctx, seller).Error(0)
}

func (m *SellerRepository) GetByID(ctx context.Context, id uint) (*models.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *SellerRepository) GetByEmail(ctx context.Context, email string) (*models.Seller, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *ProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *TransactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *TransactionRepository) GetByExternalID(ctx context.Context, externalPaymentID string) (*models.Transaction, error) {
	args := m.Called(ctx, externalPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *TransactionRepository) List(ctx context.Context, status models.TransactionStatus, limit, offset int) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	var list []models.Transaction
	if v := args.Get(0); v != nil {
		list = v.([]models.Transaction)
	}
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *TransactionRepository) CountPaidBySeller(ctx context.Context, sellerID uint) (int64, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TransactionRepository) Settle(ctx context.Context, externalPaymentID string, to models.TransactionStatus, commission money.Amount) (bool, error) {
	args := m.Called(ctx, externalPaymentID, to, commission)
	return args.Bool(0), args.Error(1)
}

func (m *TransactionRepository) Transition(ctx context.Context, id uint, from, to models.TransactionStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

type WebhookEventRepository struct {
	mock.Mock
}

func (m *WebhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *WebhookEventRepository) ListByExternalID(ctx context.Context, externalPaymentID string) ([]models.WebhookEvent, error) {
	args := m.Called(ctx, externalPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WebhookEvent), args.Error(1)
}

type Processor struct {
	mock.Mock
}

func (m *Processor) Name() string {
	return "mock"
}

func (m *Processor) CreateSession(ctx context.Context, req provider.SessionRequest) (*provider.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Session), args.Error(1)
}

func (m *Processor) CreatePayout(ctx context.Context, req provider.PayoutRequest) (*provider.Payout, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Payout), args.Error(1)
}

type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, event events.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *Publisher) Close() error {
	return nil
}

// Cache mocks the commission cache.
type Cache struct {
	mock.Mock
}

func (m *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *Cache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *Cache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}
