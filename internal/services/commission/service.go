package commission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tradefy/internal/money"
	"tradefy/internal/repositories"
	"tradefy/internal/repositories/cache"
)

// SalesCounter counts a seller's settled sales.
type SalesCounter interface {
	CountPaidBySeller(ctx context.Context, sellerID uint) (int64, error)
}

// Cache is the subset of the redis cache service used here.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Service exposes the rank table to settlement and to read-only callers.
type Service interface {
	Table() *Table
	Rank(sales int64) Band
	Breakdown(sales int64) Breakdown
	Compute(sales int64, price money.Amount) (Result, error)

	// SalesCount is the authoritative (uncached) paid-sales count.
	SalesCount(ctx context.Context, sellerID uint) (int64, error)
	// SellerBreakdown is for display and may be served from cache.
	SellerBreakdown(ctx context.Context, sellerID uint) (*Breakdown, error)
	InvalidateSeller(ctx context.Context, sellerID uint) error
}

type service struct {
	table   *Table
	sellers repositories.SellerRepository
	sales   SalesCounter
	cache   Cache
	ttl     time.Duration
	logger  *slog.Logger
}

// NewService creates a new commission service
func NewService(table *Table, sellers repositories.SellerRepository, sales SalesCounter, c Cache, ttl time.Duration, logger *slog.Logger) Service {
	if table == nil {
		panic("table is required")
	}
	if sellers == nil {
		panic("seller repository is required")
	}
	if sales == nil {
		panic("sales counter is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		table:   table,
		sellers: sellers,
		sales:   sales,
		cache:   c,
		ttl:     ttl,
		logger:  logger,
	}
}

func (s *service) Table() *Table {
	return s.table
}

func (s *service) Rank(sales int64) Band {
	return s.table.Rank(sales)
}

func (s *service) Breakdown(sales int64) Breakdown {
	return s.table.Breakdown(sales)
}

func (s *service) Compute(sales int64, price money.Amount) (Result, error) {
	return s.table.Compute(sales, price)
}

func (s *service) SalesCount(ctx context.Context, sellerID uint) (int64, error) {
	n, err := s.sales.CountPaidBySeller(ctx, sellerID)
	if err != nil {
		return 0, fmt.Errorf("failed to count sales for seller %d: %w", sellerID, err)
	}
	return n, nil
}

func (s *service) SellerBreakdown(ctx context.Context, sellerID uint) (*Breakdown, error) {
	key := sellerKey(sellerID)

	if s.cache != nil {
		var cached Breakdown
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "commission cache read failed", "seller_id", sellerID, "error", err)
		} else if found {
			return &cached, nil
		}
	}

	if _, err := s.sellers.GetByID(ctx, sellerID); err != nil {
		if errors.Is(err, repositories.ErrSellerNotFound) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("failed to get seller: %w", err)
	}

	n, err := s.SalesCount(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	b := s.table.Breakdown(n)
	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, key, b, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "commission cache write failed", "seller_id", sellerID, "error", err)
		}
	}
	return &b, nil
}

func (s *service) InvalidateSeller(ctx context.Context, sellerID uint) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, sellerKey(sellerID))
}

func sellerKey(sellerID uint) string {
	return cache.GenerateKey("commission", "seller", sellerID)
}
