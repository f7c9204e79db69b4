package commission

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradefy/internal/models"
	"tradefy/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSellers struct {
	mock.Mock
}

func (m *MockSellers) Create(ctx context.Context, seller *models.Seller) error {
	return m.Called(ctx, seller).Error(0)
}

func (m *MockSellers) GetByID(ctx context.Context, id uint) (*models.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

func (m *MockSellers) GetByEmail(ctx context.Context, email string) (*models.Seller, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seller), args.Error(1)
}

type MockSales struct {
	mock.Mock
}

func (m *MockSales) CountPaidBySeller(ctx context.Context, sellerID uint) (int64, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	if fill, ok := args.Get(0).(func(interface{})); ok {
		fill(dest)
		return true, args.Error(1)
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func TestService_SellerBreakdown(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		setupMock func(*MockSellers, *MockSales, *MockCache)
		wantRank  string
		wantErr   error
	}{
		{
			name: "cache miss computes and stores",
			setupMock: func(sellers *MockSellers, sales *MockSales, c *MockCache) {
				c.On("Get", ctx, "commission:seller:7", mock.Anything).Return(false, nil)
				sellers.On("GetByID", ctx, uint(7)).Return(&models.Seller{Name: "Awa"}, nil)
				sales.On("CountPaidBySeller", ctx, uint(7)).Return(int64(30), nil)
				c.On("SetWithTTL", ctx, "commission:seller:7", mock.Anything, time.Minute).Return(nil)
			},
			wantRank: "debutant",
		},
		{
			name: "cache hit skips the database",
			setupMock: func(sellers *MockSellers, sales *MockSales, c *MockCache) {
				c.On("Get", ctx, "commission:seller:7", mock.Anything).Return(func(dest interface{}) {
					*dest.(*Breakdown) = Breakdown{Rank: "senior", RateBps: 300}
				}, nil)
			},
			wantRank: "senior",
		},
		{
			name: "cache errors fall through",
			setupMock: func(sellers *MockSellers, sales *MockSales, c *MockCache) {
				c.On("Get", ctx, "commission:seller:7", mock.Anything).Return(false, errors.New("redis down"))
				sellers.On("GetByID", ctx, uint(7)).Return(&models.Seller{}, nil)
				sales.On("CountPaidBySeller", ctx, uint(7)).Return(int64(0), nil)
				c.On("SetWithTTL", ctx, "commission:seller:7", mock.Anything, time.Minute).Return(errors.New("redis down"))
			},
			wantRank: "profane",
		},
		{
			name: "unknown seller",
			setupMock: func(sellers *MockSellers, sales *MockSales, c *MockCache) {
				c.On("Get", ctx, "commission:seller:7", mock.Anything).Return(false, nil)
				sellers.On("GetByID", ctx, uint(7)).Return(nil, repositories.ErrSellerNotFound)
			},
			wantErr: ErrSellerNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sellers := new(MockSellers)
			sales := new(MockSales)
			c := new(MockCache)
			tt.setupMock(sellers, sales, c)

			s := NewService(DefaultTable(), sellers, sales, c, time.Minute, nil)
			b, err := s.SellerBreakdown(ctx, 7)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantRank, b.Rank)
			}

			sellers.AssertExpectations(t)
			sales.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestService_InvalidateSeller(t *testing.T) {
	ctx := context.Background()
	c := new(MockCache)
	c.On("Delete", ctx, []string{"commission:seller:3"}).Return(nil)

	s := NewService(DefaultTable(), new(MockSellers), new(MockSales), c, time.Minute, nil)
	require.NoError(t, s.InvalidateSeller(ctx, 3))
	c.AssertExpectations(t)

	noCache := NewService(DefaultTable(), new(MockSellers), new(MockSales), nil, time.Minute, nil)
	assert.NoError(t, noCache.InvalidateSeller(ctx, 3))
}

func TestService_SalesCountError(t *testing.T) {
	ctx := context.Background()
	sales := new(MockSales)
	sales.On("CountPaidBySeller", ctx, uint(1)).Return(int64(0), errors.New("db down"))

	s := NewService(DefaultTable(), new(MockSellers), sales, nil, time.Minute, nil)
	_, err := s.SalesCount(ctx, 1)
	assert.ErrorContains(t, err, "db down")
}
