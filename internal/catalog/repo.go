package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	"github.com/dcastellanos/festivo-backend/pkg/pagination"
)

// Sort orders supported by the browse endpoint.
const (
	SortPopular = "popular"
	SortNewest  = "newest"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	CityID     *uuid.UUID       `json:"city_id,omitempty"`
	CategoryID *uuid.UUID       `json:"category_id,omitempty"`
	PriceMin   *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax   *decimal.Decimal `json:"price_max,omitempty"`
	Query      string           `json:"q,omitempty"`
}

type listServicesParams struct {
	Filters ListFilters
	Sort    string
	Limit   int
	Offset  int
}

// Repository defines persistence operations for the service catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListVisible(ctx context.Context, params listServicesParams) ([]models.Service, int64, error)
	FindVisibleByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Service, error)
	Create(ctx context.Context, service *models.Service) error
	Update(ctx context.Context, service *models.Service) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	ListCities(ctx context.Context) ([]models.City, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCityByID(ctx context.Context, id uuid.UUID) (*models.City, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

// visibleServices applies the public visibility gate. Visibility is never
// stored on the row; it is recomputed on every query from moderation status
// plus the owning provider's PayPal onboarding state.
func (r *repositoryImpl) visibleServices(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Service{}).
		Joins("JOIN providers ON providers.id = services.provider_id").
		Where("services.status = ?", enums.ServiceStatusActive).
		Where("providers.paypal_merchant_id IS NOT NULL").
		Where("providers.can_receive_payments = ?", true)
}

func (r *repositoryImpl) ListVisible(ctx context.Context, params listServicesParams) ([]models.Service, int64, error) {
	query := r.visibleServices(ctx)

	f := params.Filters
	if f.CityID != nil {
		query = query.Where("services.city_id = ?", *f.CityID)
	}
	if f.CategoryID != nil {
		query = query.Where("services.category_id = ?", *f.CategoryID)
	}
	if f.PriceMin != nil {
		query = query.Where("services.price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		query = query.Where("services.price <= ?", *f.PriceMax)
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		query = query.Where("services.title LIKE ?", pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch params.Sort {
	case SortPopular:
		query = query.Order("services.view_count DESC, services.created_at DESC")
	default:
		query = query.Order("services.created_at DESC")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var services []models.Service
	if err := query.Limit(limit).Offset(params.Offset).Find(&services).Error; err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

func (r *repositoryImpl) FindVisibleByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := r.visibleServices(ctx).
		Preload("Provider").
		Where("services.id = ?", id).
		First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).Preload("Provider").First(&service, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *repositoryImpl) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *repositoryImpl) Create(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *repositoryImpl) Update(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Save(service).Error
}

// IncrementViewCount bumps the popularity counter with a single UPDATE so
// concurrent views never lose increments.
func (r *repositoryImpl) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *repositoryImpl) ListCities(ctx context.Context) ([]models.City, error) {
	var cities []models.City
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *repositoryImpl) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repositoryImpl) FindCityByID(ctx context.Context, id uuid.UUID) (*models.City, error) {
	var city models.City
	if err := r.db.WithContext(ctx).First(&city, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &city, nil
}
