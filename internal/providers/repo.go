package providers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
)

// Repository defines persistence operations for provider profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, provider *models.Provider) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Provider, error)
	FindByTrackingID(ctx context.Context, trackingID string) (*models.Provider, error)
	SetTrackingID(ctx context.Context, id uuid.UUID, trackingID string) error
	CompleteOnboarding(ctx context.Context, id uuid.UUID, merchantID string, canReceive bool, onboardedAt time.Time) error
	RevokeByMerchantID(ctx context.Context, merchantID string) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a providers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, provider *models.Provider) error {
	if provider.ID == uuid.Nil {
		provider.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(provider).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *repositoryImpl) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *repositoryImpl) FindByTrackingID(ctx context.Context, trackingID string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, "paypal_tracking_id = ?", trackingID).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *repositoryImpl) SetTrackingID(ctx context.Context, id uuid.UUID, trackingID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("id = ?", id).
		Update("paypal_tracking_id", trackingID).Error
}

// CompleteOnboarding overwrites the onboarding fields unconditionally so the
// PayPal callback stays idempotent under repeated delivery.
func (r *repositoryImpl) CompleteOnboarding(ctx context.Context, id uuid.UUID, merchantID string, canReceive bool, onboardedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"paypal_merchant_id":   merchantID,
			"can_receive_payments": canReceive,
			"onboarded_at":         onboardedAt,
		}).Error
}

// RevokeByMerchantID clears the payment gate for a merchant whose partner
// consent was withdrawn.
func (r *repositoryImpl) RevokeByMerchantID(ctx context.Context, merchantID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("paypal_merchant_id = ?", merchantID).
		Update("can_receive_payments", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
