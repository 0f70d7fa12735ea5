package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

func setupTxRepo(t *testing.T) (Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  party_id TEXT NOT NULL,
  offer_id TEXT NOT NULL UNIQUE,
  client_id TEXT NOT NULL,
  provider_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'PENDING',
  payment_method TEXT NOT NULL DEFAULT 'paypal',
  paypal_order_id TEXT UNIQUE,
  capture_id TEXT,
  transfer_status TEXT,
  terms_accepted INTEGER NOT NULL DEFAULT 0,
  terms_type TEXT,
  terms_accepted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)

	return NewRepository(db), db
}

func seedTxRow(t *testing.T, db *gorm.DB, status enums.TransactionStatus, transferStatus *enums.TransferStatus, createdAt time.Time) models.Transaction {
	t.Helper()
	txn := models.Transaction{
		ID:             uuid.New(),
		PartyID:        uuid.New(),
		OfferID:        uuid.New(),
		ClientID:       uuid.New(),
		ProviderID:     uuid.New(),
		Amount:         decimal.RequireFromString("150.00"),
		Currency:       "USD",
		Status:         status,
		PaymentMethod:  enums.PaymentMethodPayPal,
		TransferStatus: transferStatus,
		CreatedAt:      createdAt,
	}
	require.NoError(t, db.Create(&txn).Error)
	return txn
}

func TestRepository_SetPayPalOrderIDBindsOnce(t *testing.T) {
	repo, db := setupTxRepo(t)
	ctx := context.Background()
	txn := seedTxRow(t, db, enums.TransactionStatusPending, nil, time.Now())

	bound, err := repo.SetPayPalOrderID(ctx, txn.ID, "ORD-1")
	require.NoError(t, err)
	require.True(t, bound)

	bound, err = repo.SetPayPalOrderID(ctx, txn.ID, "ORD-2")
	require.NoError(t, err)
	require.False(t, bound)

	var reloaded models.Transaction
	require.NoError(t, db.First(&reloaded, "id = ?", txn.ID).Error)
	require.Equal(t, "ORD-1", *reloaded.PayPalOrderID)
}

func TestRepository_MarkCapturedConditional(t *testing.T) {
	repo, db := setupTxRepo(t)
	ctx := context.Background()
	txn := seedTxRow(t, db, enums.TransactionStatusPending, nil, time.Now())

	captured, err := repo.MarkCaptured(ctx, txn.ID, "CAP-1")
	require.NoError(t, err)
	require.True(t, captured)

	var reloaded models.Transaction
	require.NoError(t, db.First(&reloaded, "id = ?", txn.ID).Error)
	require.Equal(t, enums.TransactionStatusCompleted, reloaded.Status)
	require.Equal(t, "CAP-1", *reloaded.CaptureID)

	// Already COMPLETED: the second capture affects zero rows.
	captured, err = repo.MarkCaptured(ctx, txn.ID, "CAP-2")
	require.NoError(t, err)
	require.False(t, captured)

	require.NoError(t, db.First(&reloaded, "id = ?", txn.ID).Error)
	require.Equal(t, "CAP-1", *reloaded.CaptureID)
}

func TestRepository_SetTermsAcceptedOverwrites(t *testing.T) {
	repo, db := setupTxRepo(t)
	ctx := context.Background()
	txn := seedTxRow(t, db, enums.TransactionStatusPending, nil, time.Now())

	first := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetTermsAccepted(ctx, txn.ID, "marketplace", first))

	second := first.Add(time.Hour)
	require.NoError(t, repo.SetTermsAccepted(ctx, txn.ID, "marketplace", second))

	var reloaded models.Transaction
	require.NoError(t, db.First(&reloaded, "id = ?", txn.ID).Error)
	require.True(t, reloaded.TermsAccepted)
	require.True(t, reloaded.TermsAcceptedAt.Equal(second))
}

func TestRepository_ListPayoutQueueEligibility(t *testing.T) {
	repo, db := setupTxRepo(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	released := enums.TransferStatusReleased
	oldest := seedTxRow(t, db, enums.TransactionStatusCompleted, nil, base)
	newer := seedTxRow(t, db, enums.TransactionStatusCompleted, nil, base.Add(time.Minute))
	seedTxRow(t, db, enums.TransactionStatusPending, nil, base)
	seedTxRow(t, db, enums.TransactionStatusCompleted, &released, base)

	queue, err := repo.ListPayoutQueue(ctx, PayoutBatchSize)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	require.Equal(t, oldest.ID, queue[0].ID)
	require.Equal(t, newer.ID, queue[1].ID)
}

func TestRepository_ListPayoutQueueLimit(t *testing.T) {
	repo, db := setupTxRepo(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 30; i++ {
		seedTxRow(t, db, enums.TransactionStatusCompleted, nil, base.Add(time.Duration(i)*time.Second))
	}

	queue, err := repo.ListPayoutQueue(ctx, PayoutBatchSize)
	require.NoError(t, err)
	require.Len(t, queue, PayoutBatchSize)

	// A released row drops out of the queue on the next pass.
	require.NoError(t, repo.SetTransferStatus(ctx, queue[0].ID, enums.TransferStatusReleased))
	queue, err = repo.ListPayoutQueue(ctx, 30)
	require.NoError(t, err)
	require.Len(t, queue, 29)
}
