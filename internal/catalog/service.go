package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

// Service defines catalog browse, directory, and provider listing operations.
type Service interface {
	ListServices(ctx context.Context, params ListParams) (*ListResult, error)
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	RecordView(ctx context.Context, id uuid.UUID)
	ListCities(ctx context.Context) ([]models.City, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateService(ctx context.Context, params CreateServiceParams) (*models.Service, error)
	UpdateService(ctx context.Context, params UpdateServiceParams) (*models.Service, error)
	ListProviderServices(ctx context.Context, providerID uuid.UUID) ([]models.Service, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// ListParams configures the public browse endpoint.
type ListParams struct {
	Filters ListFilters
	Sort    string
	Limit   int
	Offset  int
}

// ListResult wraps one page of visible services.
type ListResult struct {
	Items []models.Service `json:"items"`
	Total int64            `json:"total"`
}

// CreateServiceParams describes a new provider listing. New services always
// start in PENDING until an admin moderates them.
type CreateServiceParams struct {
	ProviderID  uuid.UUID
	CategoryID  uuid.UUID
	CityID      uuid.UUID
	Title       string
	Description *string
	Price       decimal.Decimal
}

// UpdateServiceParams describes an edit to an existing listing.
type UpdateServiceParams struct {
	ServiceID   uuid.UUID
	ProviderID  uuid.UUID
	Title       *string
	Description *string
	Price       *decimal.Decimal
	CityID      *uuid.UUID
	CategoryID  *uuid.UUID
}

// NewService wires catalog dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListServices(ctx context.Context, params ListParams) (*ListResult, error) {
	sort := params.Sort
	if sort != SortPopular {
		sort = SortNewest
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	items, total, err := s.repo.ListVisible(ctx, listServicesParams{
		Filters: params.Filters,
		Sort:    sort,
		Limit:   params.Limit,
		Offset:  params.Offset,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services")
	}
	return &ListResult{Items: items, Total: total}, nil
}

func (s *service) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}

	svc, err := s.repo.FindVisibleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get service")
	}
	return svc, nil
}

// RecordView bumps the view counter. At-most-once semantics are not
// guaranteed; a page reload counts again. Errors are logged and swallowed.
func (s *service) RecordView(ctx context.Context, id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		ctx = s.logg.WithField(ctx, "service_id", id.String())
		s.logg.Error(ctx, "view count increment failed", err)
	}
}

func (s *service) ListCities(ctx context.Context) ([]models.City, error) {
	cities, err := s.repo.ListCities(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cities")
	}
	return cities, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) CreateService(ctx context.Context, params CreateServiceParams) (*models.Service, error) {
	if params.ProviderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if params.CategoryID == uuid.Nil || params.CityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category and city are required")
	}
	if !params.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	svc := &models.Service{
		ProviderID:  params.ProviderID,
		CategoryID:  params.CategoryID,
		CityID:      params.CityID,
		Title:       title,
		Description: params.Description,
		Price:       params.Price,
		Status:      enums.ServiceStatusPending,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service")
	}
	return svc, nil
}

func (s *service) UpdateService(ctx context.Context, params UpdateServiceParams) (*models.Service, error) {
	if params.ServiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}

	svc, err := s.repo.FindByID(ctx, params.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
	}
	if svc.ProviderID != params.ProviderID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "service belongs to another provider")
	}

	changed := false
	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be blank")
		}
		svc.Title = title
		changed = true
	}
	if params.Description != nil {
		svc.Description = params.Description
		changed = true
	}
	if params.Price != nil {
		if !params.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		svc.Price = *params.Price
		changed = true
	}
	if params.CityID != nil {
		svc.CityID = *params.CityID
		changed = true
	}
	if params.CategoryID != nil {
		svc.CategoryID = *params.CategoryID
		changed = true
	}

	if changed {
		// Content edits go back through moderation.
		svc.Status = enums.ServiceStatusPending
		svc.Provider = nil
		if err := s.repo.Update(ctx, svc); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update service")
		}
	}
	return svc, nil
}

func (s *service) ListProviderServices(ctx context.Context, providerID uuid.UUID) ([]models.Service, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	services, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list provider services")
	}
	return services, nil
}
