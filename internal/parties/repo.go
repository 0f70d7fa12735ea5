package parties

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

// Repository defines persistence operations for parties and their services.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, party *models.Party) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Party, error)
	AttachService(ctx context.Context, partyService *models.PartyService) error
	FindPartyServiceByID(ctx context.Context, id uuid.UUID) (*models.PartyService, error)
	UpdateStatus(ctx context.Context, partyID uuid.UUID, from, to enums.PartyStatus) (bool, error)
	AdvanceStatus(ctx context.Context, partyID uuid.UUID, target enums.PartyStatus) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a parties repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, party *models.Party) error {
	return r.db.WithContext(ctx).Create(party).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	var party models.Party
	err := r.db.WithContext(ctx).
		Preload("Services").
		First(&party, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *repositoryImpl) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Party, error) {
	var parties []models.Party
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&parties).Error
	if err != nil {
		return nil, err
	}
	return parties, nil
}

func (r *repositoryImpl) AttachService(ctx context.Context, partyService *models.PartyService) error {
	return r.db.WithContext(ctx).Create(partyService).Error
}

func (r *repositoryImpl) FindPartyServiceByID(ctx context.Context, id uuid.UUID) (*models.PartyService, error) {
	var partyService models.PartyService
	if err := r.db.WithContext(ctx).First(&partyService, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &partyService, nil
}

// UpdateStatus performs a conditional single-row transition and reports
// whether the row actually moved.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, partyID uuid.UUID, from, to enums.PartyStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Party{}).
		Where("id = ? AND status = ?", partyID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AdvanceStatus moves the party forward to target if it is currently at an
// earlier lifecycle stage. Rows already at or past target are left alone,
// which makes the call safe to repeat.
func (r *repositoryImpl) AdvanceStatus(ctx context.Context, partyID uuid.UUID, target enums.PartyStatus) error {
	earlier := enums.PartyStatusesBefore(target)
	if len(earlier) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Party{}).
		Where("id = ? AND status IN ?", partyID, earlier).
		Update("status", target).Error
}
