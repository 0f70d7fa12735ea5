package admin

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

// Repository defines the moderation queries the admin surface needs. Unlike
// the public catalog repo it sees every service regardless of visibility.
type Repository interface {
	ListServices(ctx context.Context, status *enums.ServiceStatus) ([]models.Service, error)
	FindServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	SetServiceStatus(ctx context.Context, id uuid.UUID, status enums.ServiceStatus) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an admin repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListServices(ctx context.Context, status *enums.ServiceStatus) ([]models.Service, error) {
	query := r.db.WithContext(ctx).Preload("Provider").Order("created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var services []models.Service
	if err := query.Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *repositoryImpl) FindServiceByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).Preload("Provider").First(&service, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *repositoryImpl) SetServiceStatus(ctx context.Context, id uuid.UUID, status enums.ServiceStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("id = ?", id).
		Update("status", status).Error
}
