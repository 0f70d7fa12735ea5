package admin

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/internal/notifications"
	"github.com/dcastellanos/festivo-backend/internal/users"
	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

type adminFixture struct {
	db  *gorm.DB
	svc Service
}

func setupAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'client',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS providers (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  business_name TEXT NOT NULL,
  description TEXT,
  city_id TEXT,
  paypal_merchant_id TEXT,
  paypal_tracking_id TEXT,
  can_receive_payments INTEGER NOT NULL DEFAULT 0,
  onboarded_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS services (
  id TEXT PRIMARY KEY,
  provider_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
  city_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  view_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}

	logg := logger.New(logger.Options{})
	notifier, err := notifications.NewService(notifications.NewRepository(db), logg)
	require.NoError(t, err)

	svc, err := NewService(NewRepository(db), users.NewRepository(db), notifier)
	require.NoError(t, err)
	return &adminFixture{db: db, svc: svc}
}

func (f *adminFixture) seedService(t *testing.T, status enums.ServiceStatus) (*models.Service, *models.Provider) {
	t.Helper()
	provider := &models.Provider{ID: uuid.New(), UserID: uuid.New(), BusinessName: "Band"}
	require.NoError(t, f.db.Create(provider).Error)

	svc := &models.Service{
		ID:         uuid.New(),
		ProviderID: provider.ID,
		CategoryID: uuid.New(),
		CityID:     uuid.New(),
		Title:      "Live music",
		Price:      decimal.RequireFromString("400.00"),
		Status:     status,
	}
	require.NoError(t, f.db.Create(svc).Error)
	return svc, provider
}

func TestService_ApproveService(t *testing.T) {
	f := setupAdminFixture(t)
	svc, provider := f.seedService(t, enums.ServiceStatusPending)

	approved, err := f.svc.ApproveService(context.Background(), svc.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ServiceStatusActive, approved.Status)

	var reloaded models.Service
	require.NoError(t, f.db.First(&reloaded, "id = ?", svc.ID).Error)
	require.Equal(t, enums.ServiceStatusActive, reloaded.Status)

	var count int64
	require.NoError(t, f.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", provider.UserID, enums.NotificationTypeServiceModeration).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestService_RejectService(t *testing.T) {
	f := setupAdminFixture(t)
	svc, provider := f.seedService(t, enums.ServiceStatusPending)

	rejected, err := f.svc.RejectService(context.Background(), svc.ID, "  poor photos  ")
	require.NoError(t, err)
	require.Equal(t, enums.ServiceStatusInactive, rejected.Status)

	var notification models.Notification
	require.NoError(t, f.db.First(&notification, "user_id = ?", provider.UserID).Error)
	require.Contains(t, notification.Message, "poor photos")
}

func TestService_RejectServiceRequiresReason(t *testing.T) {
	f := setupAdminFixture(t)
	svc, _ := f.seedService(t, enums.ServiceStatusPending)

	_, err := f.svc.RejectService(context.Background(), svc.ID, "   ")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	// Nothing was written.
	var reloaded models.Service
	require.NoError(t, f.db.First(&reloaded, "id = ?", svc.ID).Error)
	require.Equal(t, enums.ServiceStatusPending, reloaded.Status)
}

func TestService_ListServicesByStatus(t *testing.T) {
	f := setupAdminFixture(t)
	f.seedService(t, enums.ServiceStatusPending)
	f.seedService(t, enums.ServiceStatusActive)

	pending := enums.ServiceStatusPending
	listed, err := f.svc.ListServices(context.Background(), &pending)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, enums.ServiceStatusPending, listed[0].Status)

	all, err := f.svc.ListServices(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestService_DeactivateUserIdempotent(t *testing.T) {
	f := setupAdminFixture(t)
	user := &models.User{
		ID: uuid.New(), Email: "client@example.com", PasswordHash: "x",
		FirstName: "Ana", LastName: "Reyes", Role: enums.UserRoleClient, IsActive: true,
	}
	require.NoError(t, f.db.Create(user).Error)

	require.NoError(t, f.svc.DeactivateUser(context.Background(), user.ID))
	require.NoError(t, f.svc.DeactivateUser(context.Background(), user.ID))

	var reloaded models.User
	require.NoError(t, f.db.First(&reloaded, "id = ?", user.ID).Error)
	require.False(t, reloaded.IsActive)
}
