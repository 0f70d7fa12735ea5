package settings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
)

type fakeCityDirectory struct {
	byID map[uuid.UUID]*models.City
}

func (f *fakeCityDirectory) FindCityByID(ctx context.Context, id uuid.UUID) (*models.City, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func setupSettings(t *testing.T) (Service, *fakeCityDirectory) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS system_settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME
);`).Error)

	cities := &fakeCityDirectory{byID: map[uuid.UUID]*models.City{}}
	svc, err := NewService(NewRepository(db), cities)
	require.NoError(t, err)
	return svc, cities
}

func TestService_DefaultCityRoundTrip(t *testing.T) {
	svc, cities := setupSettings(t)
	ctx := context.Background()

	city := &models.City{ID: uuid.New(), Name: "Austin", Slug: "austin"}
	cities.byID[city.ID] = city

	_, err := svc.GetDefaultCity(ctx)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	stored, err := svc.SetDefaultCity(ctx, city.ID)
	require.NoError(t, err)
	require.Equal(t, "Austin", stored.Name)

	got, err := svc.GetDefaultCity(ctx)
	require.NoError(t, err)
	require.Equal(t, city.ID, got.ID)
}

func TestService_SetDefaultCityLastWriterWins(t *testing.T) {
	svc, cities := setupSettings(t)
	ctx := context.Background()

	first := &models.City{ID: uuid.New(), Name: "Austin", Slug: "austin"}
	second := &models.City{ID: uuid.New(), Name: "Dallas", Slug: "dallas"}
	cities.byID[first.ID] = first
	cities.byID[second.ID] = second

	_, err := svc.SetDefaultCity(ctx, first.ID)
	require.NoError(t, err)
	_, err = svc.SetDefaultCity(ctx, second.ID)
	require.NoError(t, err)

	got, err := svc.GetDefaultCity(ctx)
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)
}

func TestService_SetDefaultCityUnknown(t *testing.T) {
	svc, _ := setupSettings(t)

	_, err := svc.SetDefaultCity(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
