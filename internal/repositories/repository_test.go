package repositories

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tradefy/internal/models"
	"tradefy/internal/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type RepositoryTestSuite struct {
	suite.Suite
	pgContainer *postgresContainer
	db          *gorm.DB
	ctx         context.Context

	sellers      SellerRepository
	products     ProductRepository
	transactions TransactionRepository
	events       WebhookEventRepository
}

func TestRepositoryTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) SetupSuite() {
	time.Local = time.UTC
	s.ctx = context.Background()

	pgContainer, err := createPostgresContainer(s.ctx)
	s.Require().NoError(err)
	s.pgContainer = pgContainer

	db, err := Open(pgContainer.ConnectionString, logger.Default.LogMode(logger.Silent))
	s.Require().NoError(err)
	s.Require().NoError(Migrate(db))
	s.db = db

	s.sellers = NewSellerRepository(db)
	s.products = NewProductRepository(db)
	s.transactions = NewTransactionRepository(db)
	s.events = NewWebhookEventRepository(db)
}

func (s *RepositoryTestSuite) TearDownSuite() {
	if s.db != nil {
		_ = Close(s.db)
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("error terminating postgres container: %s", err)
		}
	}
}

func (s *RepositoryTestSuite) SetupTest() {
	for _, table := range []string{"webhook_events", "transactions", "products", "sellers"} {
		s.Require().NoError(s.db.Exec("DELETE FROM " + table).Error)
	}
}

func (s *RepositoryTestSuite) newTransaction(sellerID uint, status models.TransactionStatus) *models.Transaction {
	tx := &models.Transaction{
		Reference:         uuid.NewString(),
		ProductID:         1,
		BuyerID:           7,
		SellerID:          sellerID,
		Amount:            money.FromMinor(10000),
		Currency:          "USD",
		Status:            status,
		ExternalPaymentID: "pay_" + uuid.NewString(),
	}
	s.Require().NoError(s.transactions.Create(s.ctx, tx))
	return tx
}

func (s *RepositoryTestSuite) TestCreateAndGetByExternalID() {
	t := s.T()

	created := s.newTransaction(3, models.TransactionStatusPending)
	assert.NotZero(t, created.ID)

	got, err := s.transactions.GetByExternalID(s.ctx, created.ExternalPaymentID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, money.FromMinor(10000), got.Amount)
	assert.Equal(t, models.TransactionStatusPending, got.Status)
	assert.Nil(t, got.SettledAt)

	byID, err := s.transactions.GetByID(s.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ExternalPaymentID, byID.ExternalPaymentID)
}

func (s *RepositoryTestSuite) TestGetMissingTransaction() {
	t := s.T()

	_, err := s.transactions.GetByExternalID(s.ctx, "pay_missing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = s.transactions.GetByID(s.ctx, 999999)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func (s *RepositoryTestSuite) TestCreateDuplicateExternalID() {
	t := s.T()

	first := s.newTransaction(3, models.TransactionStatusPending)

	dup := &models.Transaction{
		Reference:         uuid.NewString(),
		ProductID:         1,
		BuyerID:           7,
		SellerID:          3,
		Amount:            money.FromMinor(500),
		Currency:          "USD",
		ExternalPaymentID: first.ExternalPaymentID,
	}
	err := s.transactions.Create(s.ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateTransaction)
}

func (s *RepositoryTestSuite) TestSettleOnlyOnce() {
	t := s.T()

	tx := s.newTransaction(3, models.TransactionStatusPending)

	won, err := s.transactions.Settle(s.ctx, tx.ExternalPaymentID, models.TransactionStatusPaid, money.FromMinor(450))
	require.NoError(t, err)
	assert.True(t, won)

	won, err = s.transactions.Settle(s.ctx, tx.ExternalPaymentID, models.TransactionStatusFailed, 0)
	require.NoError(t, err)
	assert.False(t, won)

	got, err := s.transactions.GetByExternalID(s.ctx, tx.ExternalPaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPaid, got.Status)
	assert.Equal(t, money.FromMinor(450), got.Commission)
	assert.Equal(t, money.FromMinor(9550), got.VendorAmount())
	assert.NotNil(t, got.SettledAt)
}

func (s *RepositoryTestSuite) TestSettleFailedKeepsZeroCommission() {
	t := s.T()

	tx := s.newTransaction(3, models.TransactionStatusPending)

	won, err := s.transactions.Settle(s.ctx, tx.ExternalPaymentID, models.TransactionStatusFailed, money.FromMinor(450))
	require.NoError(t, err)
	assert.True(t, won)

	got, err := s.transactions.GetByExternalID(s.ctx, tx.ExternalPaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, got.Status)
	assert.Zero(t, got.Commission)
}

func (s *RepositoryTestSuite) TestConcurrentSettleHasOneWinner() {
	t := s.T()

	tx := s.newTransaction(3, models.TransactionStatusPending)

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := s.transactions.Settle(s.ctx, tx.ExternalPaymentID, models.TransactionStatusPaid, money.FromMinor(450))
			if assert.NoError(t, err) && won {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func (s *RepositoryTestSuite) TestSettleRejectsIllegalTarget() {
	t := s.T()

	tx := s.newTransaction(3, models.TransactionStatusPending)

	won, err := s.transactions.Settle(s.ctx, tx.ExternalPaymentID, models.TransactionStatusRefunded, 0)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, won)
}

func (s *RepositoryTestSuite) TestTransitionPaidToRefunded() {
	t := s.T()

	tx := s.newTransaction(3, models.TransactionStatusPaid)

	moved, err := s.transactions.Transition(s.ctx, tx.ID, models.TransactionStatusPaid, models.TransactionStatusRefunded)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = s.transactions.Transition(s.ctx, tx.ID, models.TransactionStatusPaid, models.TransactionStatusRefunded)
	require.NoError(t, err)
	assert.False(t, moved)

	_, err = s.transactions.Transition(s.ctx, tx.ID, models.TransactionStatusRefunded, models.TransactionStatusPaid)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func (s *RepositoryTestSuite) TestCountPaidBySeller() {
	t := s.T()

	s.newTransaction(3, models.TransactionStatusPaid)
	s.newTransaction(3, models.TransactionStatusPaid)
	s.newTransaction(3, models.TransactionStatusPending)
	s.newTransaction(3, models.TransactionStatusFailed)
	s.newTransaction(3, models.TransactionStatusRefunded)
	s.newTransaction(4, models.TransactionStatusPaid)

	count, err := s.transactions.CountPaidBySeller(s.ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = s.transactions.CountPaidBySeller(s.ctx, 99)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func (s *RepositoryTestSuite) TestListFiltersAndPages() {
	t := s.T()

	for i := 0; i < 3; i++ {
		s.newTransaction(3, models.TransactionStatusPaid)
	}
	s.newTransaction(3, models.TransactionStatusPending)

	all, total, err := s.transactions.List(s.ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)

	page, total, err := s.transactions.List(s.ctx, models.TransactionStatusPaid, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)
	for _, tx := range page {
		assert.Equal(t, models.TransactionStatusPaid, tx.Status)
	}

	rest, _, err := s.transactions.List(s.ctx, models.TransactionStatusPaid, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func (s *RepositoryTestSuite) TestSellerAndProduct() {
	t := s.T()

	seller := &models.Seller{Name: "Awa Stores", Email: "awa@example.com", PayoutAccount: "rcp_123"}
	require.NoError(t, s.sellers.Create(s.ctx, seller))

	byEmail, err := s.sellers.GetByEmail(s.ctx, "awa@example.com")
	require.NoError(t, err)
	assert.Equal(t, seller.ID, byEmail.ID)

	byID, err := s.sellers.GetByID(s.ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, "rcp_123", byID.PayoutAccount)

	product := &models.Product{SellerID: seller.ID, Name: "Basket", Price: money.FromMinor(2500)}
	require.NoError(t, s.products.Create(s.ctx, product))

	got, err := s.products.GetByID(s.ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, money.FromMinor(2500), got.Price)
	assert.True(t, got.IsActive())
	require.NotNil(t, got.Seller)
	assert.Equal(t, "awa@example.com", got.Seller.Email)

	_, err = s.sellers.GetByID(s.ctx, seller.ID+1000)
	assert.ErrorIs(t, err, ErrSellerNotFound)
	_, err = s.sellers.GetByEmail(s.ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrSellerNotFound)
	_, err = s.products.GetByID(s.ctx, product.ID+1000)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func (s *RepositoryTestSuite) TestWebhookEvents() {
	t := s.T()

	for _, outcome := range []string{models.WebhookOutcomePaid, models.WebhookOutcomeDuplicate} {
		require.NoError(t, s.events.Create(s.ctx, &models.WebhookEvent{
			Provider:          "moneroo",
			ExternalPaymentID: "pay_1",
			EventType:         "payment.success",
			Outcome:           outcome,
			SignatureValid:    true,
			Payload:           `{"event":"payment.success"}`,
		}))
	}
	require.NoError(t, s.events.Create(s.ctx, &models.WebhookEvent{
		Provider:          "moneroo",
		ExternalPaymentID: "pay_2",
		EventType:         "payment.failed",
		Outcome:           models.WebhookOutcomeFailed,
		SignatureValid:    true,
		Payload:           `{}`,
	}))

	events, err := s.events.ListByExternalID(s.ctx, "pay_1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.WebhookOutcomePaid, events[0].Outcome)
	assert.Equal(t, models.WebhookOutcomeDuplicate, events[1].Outcome)

	none, err := s.events.ListByExternalID(s.ctx, "pay_missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
