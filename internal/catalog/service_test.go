package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

type fakeRepo struct {
	listVisibleFn   func(ctx context.Context, params listServicesParams) ([]models.Service, int64, error)
	findVisibleFn   func(ctx context.Context, id uuid.UUID) (*models.Service, error)
	findByIDFn      func(ctx context.Context, id uuid.UUID) (*models.Service, error)
	createFn        func(ctx context.Context, service *models.Service) error
	updateFn        func(ctx context.Context, service *models.Service) error
	incrementViewFn func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) ListVisible(ctx context.Context, params listServicesParams) ([]models.Service, int64, error) {
	if f.listVisibleFn != nil {
		return f.listVisibleFn(ctx, params)
	}
	return nil, 0, nil
}

func (f *fakeRepo) FindVisibleByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if f.findVisibleFn != nil {
		return f.findVisibleFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]models.Service, error) {
	return nil, nil
}

func (f *fakeRepo) Create(ctx context.Context, service *models.Service) error {
	if f.createFn != nil {
		return f.createFn(ctx, service)
	}
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, service *models.Service) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, service)
	}
	return nil
}

func (f *fakeRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	if f.incrementViewFn != nil {
		return f.incrementViewFn(ctx, id)
	}
	return nil
}

func (f *fakeRepo) ListCities(ctx context.Context) ([]models.City, error) { return nil, nil }
func (f *fakeRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}
func (f *fakeRepo) FindCityByID(ctx context.Context, id uuid.UUID) (*models.City, error) {
	return nil, gorm.ErrRecordNotFound
}

func newCatalogService(repo Repository) Service {
	svc, _ := NewService(repo, logger.New(logger.Options{}))
	return svc
}

func TestService_ListServicesDefaultsSort(t *testing.T) {
	var captured listServicesParams
	repo := &fakeRepo{
		listVisibleFn: func(ctx context.Context, params listServicesParams) ([]models.Service, int64, error) {
			captured = params
			return []models.Service{}, 0, nil
		},
	}
	svc := newCatalogService(repo)

	_, err := svc.ListServices(context.Background(), ListParams{Sort: "bogus"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Sort != SortNewest {
		t.Fatalf("expected default sort %q, got %q", SortNewest, captured.Sort)
	}
}

func TestService_GetServiceNotFound(t *testing.T) {
	svc := newCatalogService(&fakeRepo{})
	_, err := svc.GetService(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_RecordViewSwallowsError(t *testing.T) {
	repo := &fakeRepo{
		incrementViewFn: func(ctx context.Context, id uuid.UUID) error {
			return errors.New("db down")
		},
	}
	svc := newCatalogService(repo)
	// Must not panic or propagate.
	svc.RecordView(context.Background(), uuid.New())
}

func TestService_CreateServiceValidation(t *testing.T) {
	svc := newCatalogService(&fakeRepo{})

	_, err := svc.CreateService(context.Background(), CreateServiceParams{
		ProviderID: uuid.New(),
		CategoryID: uuid.New(),
		CityID:     uuid.New(),
		Title:      "  ",
		Price:      decimal.RequireFromString("10"),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank title, got %v", err)
	}

	_, err = svc.CreateService(context.Background(), CreateServiceParams{
		ProviderID: uuid.New(),
		CategoryID: uuid.New(),
		CityID:     uuid.New(),
		Title:      "DJ",
		Price:      decimal.Zero,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for zero price, got %v", err)
	}
}

func TestService_CreateServiceStartsPending(t *testing.T) {
	var created *models.Service
	repo := &fakeRepo{
		createFn: func(ctx context.Context, service *models.Service) error {
			created = service
			return nil
		},
	}
	svc := newCatalogService(repo)

	_, err := svc.CreateService(context.Background(), CreateServiceParams{
		ProviderID: uuid.New(),
		CategoryID: uuid.New(),
		CityID:     uuid.New(),
		Title:      "DJ",
		Price:      decimal.RequireFromString("300.00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != enums.ServiceStatusPending {
		t.Fatalf("expected new service to start PENDING, got %s", created.Status)
	}
}

func TestService_UpdateServiceForbiddenForNonOwner(t *testing.T) {
	owner := uuid.New()
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Service, error) {
			return &models.Service{ID: id, ProviderID: owner, Status: enums.ServiceStatusActive}, nil
		},
	}
	svc := newCatalogService(repo)

	title := "New title"
	_, err := svc.UpdateService(context.Background(), UpdateServiceParams{
		ServiceID:  uuid.New(),
		ProviderID: uuid.New(),
		Title:      &title,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestService_UpdateServiceResetsModeration(t *testing.T) {
	owner := uuid.New()
	var updated *models.Service
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.Service, error) {
			return &models.Service{ID: id, ProviderID: owner, Status: enums.ServiceStatusActive}, nil
		},
		updateFn: func(ctx context.Context, service *models.Service) error {
			updated = service
			return nil
		},
	}
	svc := newCatalogService(repo)

	price := decimal.RequireFromString("99.50")
	_, err := svc.UpdateService(context.Background(), UpdateServiceParams{
		ServiceID:  uuid.New(),
		ProviderID: owner,
		Price:      &price,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.ServiceStatusPending {
		t.Fatalf("expected edited service back in PENDING, got %s", updated.Status)
	}
}
