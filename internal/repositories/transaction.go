package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradefy/internal/models"
	"tradefy/internal/money"

	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

// TransactionRepository persists sales. Status changes after creation go
// exclusively through Settle and Transition, which are conditional updates on
// the current status so concurrent writers cannot both win.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	GetByExternalID(ctx context.Context, externalPaymentID string) (*models.Transaction, error)
	List(ctx context.Context, status models.TransactionStatus, limit, offset int) ([]models.Transaction, int64, error)
	CountPaidBySeller(ctx context.Context, sellerID uint) (int64, error)

	// Settle moves a pending transaction to paid or failed. It reports false
	// when the transaction was no longer pending.
	Settle(ctx context.Context, externalPaymentID string, to models.TransactionStatus, commission money.Amount) (bool, error)

	// Transition performs any other legal status move, e.g. paid -> refunded.
	Transition(ctx context.Context, id uint, from, to models.TransactionStatus) (bool, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	err := r.db.WithContext(ctx).Create(tx).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateTransaction, tx.ExternalPaymentID)
	}
	return err
}

func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) GetByExternalID(ctx context.Context, externalPaymentID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("external_payment_id = ?", externalPaymentID).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *transactionRepository) List(ctx context.Context, status models.TransactionStatus, limit, offset int) ([]models.Transaction, int64, error) {
	var (
		transactions []models.Transaction
		total        int64
	)

	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Transaction{})
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := filtered().Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error

	return transactions, total, err
}

func (r *transactionRepository) CountPaidBySeller(ctx context.Context, sellerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("seller_id = ? AND status = ?", sellerID, models.TransactionStatusPaid).
		Count(&count).Error
	return count, err
}

func (r *transactionRepository) Settle(ctx context.Context, externalPaymentID string, to models.TransactionStatus, commission money.Amount) (bool, error) {
	if !models.CanTransition(models.TransactionStatusPending, to) {
		return false, fmt.Errorf("%w: pending -> %s", ErrInvalidTransition, to)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"settled_at": now,
		"updated_at": now,
	}
	if to == models.TransactionStatusPaid {
		updates["commission"] = commission
	}

	res := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("external_payment_id = ? AND status = ?", externalPaymentID, models.TransactionStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *transactionRepository) Transition(ctx context.Context, id uint, from, to models.TransactionStatus) (bool, error) {
	if !models.CanTransition(from, to) {
		return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	res := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
