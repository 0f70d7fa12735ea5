package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
)

// cityDirectory confirms a city exists before it becomes the default.
type cityDirectory interface {
	FindCityByID(ctx context.Context, id uuid.UUID) (*models.City, error)
}

// Service exposes the system settings the marketplace reads at runtime.
type Service interface {
	GetDefaultCity(ctx context.Context) (*models.City, error)
	SetDefaultCity(ctx context.Context, cityID uuid.UUID) (*models.City, error)
}

type service struct {
	repo   Repository
	cities cityDirectory
}

// NewService wires settings dependencies.
func NewService(repo Repository, cities cityDirectory) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settings repository required")
	}
	if cities == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "city directory required")
	}
	return &service{repo: repo, cities: cities}, nil
}

// GetDefaultCity resolves the default_city setting to its city row. An unset
// or dangling setting surfaces as not found.
func (s *service) GetDefaultCity(ctx context.Context) (*models.City, error) {
	setting, err := s.repo.Get(ctx, models.SettingDefaultCity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "default city not configured")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default city setting")
	}

	cityID, err := uuid.Parse(setting.Value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "default city setting is malformed")
	}

	city, err := s.cities.FindCityByID(ctx, cityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "default city no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default city")
	}
	return city, nil
}

func (s *service) SetDefaultCity(ctx context.Context, cityID uuid.UUID) (*models.City, error) {
	if cityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city id required")
	}

	city, err := s.cities.FindCityByID(ctx, cityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "city not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load city")
	}

	if err := s.repo.Upsert(ctx, models.SettingDefaultCity, city.ID.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store default city")
	}
	return city, nil
}
