package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

// PayoutBatchSize is how many eligible transactions one processor run drains.
const PayoutBatchSize = 25

// Repository defines persistence operations for transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	FindByPayPalOrderID(ctx context.Context, orderID string) (*models.Transaction, error)
	SetPayPalOrderID(ctx context.Context, id uuid.UUID, orderID string) (bool, error)
	MarkCaptured(ctx context.Context, id uuid.UUID, captureID string) (bool, error)
	SetTermsAccepted(ctx context.Context, id uuid.UUID, termsType string, acceptedAt time.Time) error
	ListPayoutQueue(ctx context.Context, limit int) ([]models.Transaction, error)
	SetTransferStatus(ctx context.Context, id uuid.UUID, status enums.TransferStatus) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a transactions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).First(&transaction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *repositoryImpl) FindByPayPalOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).First(&transaction, "paypal_order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

// SetPayPalOrderID binds a gateway order to a PENDING transaction exactly
// once; a second bind attempt affects zero rows.
func (r *repositoryImpl) SetPayPalOrderID(ctx context.Context, id uuid.UUID, orderID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ? AND paypal_order_id IS NULL", id, enums.TransactionStatusPending).
		Update("paypal_order_id", orderID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkCaptured writes capture_id and the COMPLETED status as one UPDATE so a
// failed capture can never leave the row half-written.
func (r *repositoryImpl) MarkCaptured(ctx context.Context, id uuid.UUID, captureID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, enums.TransactionStatusPending).
		Updates(map[string]any{
			"capture_id": captureID,
			"status":     enums.TransactionStatusCompleted,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetTermsAccepted overwrites the acceptance timestamp; re-acceptance is
// idempotent by contract.
func (r *repositoryImpl) SetTermsAccepted(ctx context.Context, id uuid.UUID, termsType string, acceptedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"terms_accepted":    true,
			"terms_type":        termsType,
			"terms_accepted_at": acceptedAt,
		}).Error
}

// ListPayoutQueue returns the oldest eligible rows. COMPLETED with a null
// transfer_status is the payout queue by definition.
func (r *repositoryImpl) ListPayoutQueue(ctx context.Context, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = PayoutBatchSize
	}
	var transactions []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND transfer_status IS NULL", enums.TransactionStatusCompleted).
		Order("created_at ASC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *repositoryImpl) SetTransferStatus(ctx context.Context, id uuid.UUID, status enums.TransferStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Update("transfer_status", status).Error
}
