package offers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

// Repository defines persistence operations for offers. Transaction rows are
// created here too because offer approval owns their creation.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	ListByPartyService(ctx context.Context, partyServiceID uuid.UUID) ([]models.Offer, error)
	Decide(ctx context.Context, offerID uuid.UUID, to enums.OfferStatus, decidedAt time.Time) (bool, error)
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
	CountTransactionsByOffer(ctx context.Context, offerID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an offers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repositoryImpl) ListByPartyService(ctx context.Context, partyServiceID uuid.UUID) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Where("party_service_id = ?", partyServiceID).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// Decide performs the compare-and-swap out of PENDING. Zero rows affected
// means the offer was already decided (or never existed); the caller must
// not create a Transaction in that case. This single conditional UPDATE is
// what makes concurrent approve requests safe.
func (r *repositoryImpl) Decide(ctx context.Context, offerID uuid.UUID, to enums.OfferStatus, decidedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND status = ?", offerID, enums.OfferStatusPending).
		Updates(map[string]any{"status": to, "decided_at": decidedAt})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repositoryImpl) CountTransactionsByOffer(ctx context.Context, offerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("offer_id = ?", offerID).
		Count(&count).Error
	return count, err
}
