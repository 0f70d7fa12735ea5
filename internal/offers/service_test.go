package offers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/internal/notifications"
	"github.com/dcastellanos/festivo-backend/internal/parties"
	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeProviderDirectory struct {
	byID     map[uuid.UUID]*models.Provider
	byUserID map[uuid.UUID]*models.Provider
}

func (f *fakeProviderDirectory) FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProviderDirectory) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Provider, error) {
	if p, ok := f.byUserID[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type offersFixture struct {
	db        *gorm.DB
	svc       Service
	repo      Repository
	providers *fakeProviderDirectory
}

func setupOffersFixture(t *testing.T) *offersFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS parties (
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  city_id TEXT NOT NULL,
  name TEXT NOT NULL,
  date DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'DRAFT',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS party_services (
  id TEXT PRIMARY KEY,
  party_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  address TEXT,
  comments TEXT,
  addons TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS offers (
  id TEXT PRIMARY KEY,
  party_service_id TEXT NOT NULL,
  provider_id TEXT NOT NULL,
  client_id TEXT NOT NULL,
  price NUMERIC NOT NULL,
  message TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING',
  decided_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  party_id TEXT NOT NULL,
  offer_id TEXT NOT NULL UNIQUE,
  client_id TEXT NOT NULL,
  provider_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'PENDING',
  payment_method TEXT NOT NULL DEFAULT 'paypal',
  paypal_order_id TEXT UNIQUE,
  capture_id TEXT,
  transfer_status TEXT,
  terms_accepted INTEGER NOT NULL DEFAULT 0,
  terms_type TEXT,
  terms_accepted_at DATETIME,
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

	providers := &fakeProviderDirectory{
		byID:     map[uuid.UUID]*models.Provider{},
		byUserID: map[uuid.UUID]*models.Provider{},
	}

	repo := NewRepository(db)
	svc, err := NewService(repo, parties.NewRepository(db), providers, &testTxRunner{db: db}, notifier)
	require.NoError(t, err)

	return &offersFixture{db: db, svc: svc, repo: repo, providers: providers}
}

func (f *offersFixture) seedProvider(t *testing.T) *models.Provider {
	t.Helper()
	p := &models.Provider{ID: uuid.New(), UserID: uuid.New(), BusinessName: "DJ Co"}
	f.providers.byID[p.ID] = p
	f.providers.byUserID[p.UserID] = p
	return p
}

func (f *offersFixture) seedParty(t *testing.T, clientID uuid.UUID, status enums.PartyStatus) (models.Party, models.PartyService) {
	t.Helper()
	party := models.Party{
		ID:       uuid.New(),
		ClientID: clientID,
		CityID:   uuid.New(),
		Name:     "Quinceañera",
		Date:     time.Now().Add(30 * 24 * time.Hour),
		Status:   status,
	}
	require.NoError(t, f.db.Create(&party).Error)

	partyService := models.PartyService{
		ID:        uuid.New(),
		PartyID:   party.ID,
		ServiceID: uuid.New(),
	}
	require.NoError(t, f.db.Create(&partyService).Error)
	return party, partyService
}

func (f *offersFixture) seedOffer(t *testing.T, partyServiceID, providerID, clientID uuid.UUID) models.Offer {
	t.Helper()
	offer := models.Offer{
		ID:             uuid.New(),
		PartyServiceID: partyServiceID,
		ProviderID:     providerID,
		ClientID:       clientID,
		Price:          decimal.RequireFromString("100.00"),
		Status:         enums.OfferStatusPending,
	}
	require.NoError(t, f.db.Create(&offer).Error)
	return offer
}

func TestService_CreateOffer(t *testing.T) {
	f := setupOffersFixture(t)
	provider := f.seedProvider(t)
	clientID := uuid.New()
	_, partyService := f.seedParty(t, clientID, enums.PartyStatusPublished)

	offer, err := f.svc.Create(context.Background(),
		Actor{UserID: provider.UserID, Role: enums.UserRoleProvider},
		CreateParams{PartyServiceID: partyService.ID, Price: decimal.RequireFromString("250.00")})
	require.NoError(t, err)
	require.Equal(t, enums.OfferStatusPending, offer.Status)
	require.Equal(t, provider.ID, offer.ProviderID)
	require.Equal(t, clientID, offer.ClientID)
}

func TestService_CreateOfferRequiresProviderProfile(t *testing.T) {
	f := setupOffersFixture(t)
	_, partyService := f.seedParty(t, uuid.New(), enums.PartyStatusPublished)

	_, err := f.svc.Create(context.Background(),
		Actor{UserID: uuid.New(), Role: enums.UserRoleProvider},
		CreateParams{PartyServiceID: partyService.ID, Price: decimal.RequireFromString("250.00")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestService_ApproveScenario(t *testing.T) {
	f := setupOffersFixture(t)
	provider := f.seedProvider(t)
	clientID := uuid.New()
	party, partyService := f.seedParty(t, clientID, enums.PartyStatusDraft)
	offer := f.seedOffer(t, partyService.ID, provider.ID, clientID)

	result, err := f.svc.Approve(context.Background(),
		Actor{UserID: clientID, Role: enums.UserRoleClient}, offer.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OfferStatusApproved, result.Offer.Status)
	require.Equal(t, enums.TransactionStatusPending, result.Transaction.Status)
	require.True(t, result.Transaction.Amount.Equal(decimal.RequireFromString("100.00")))

	var reloadedParty models.Party
	require.NoError(t, f.db.First(&reloadedParty, "id = ?", party.ID).Error)
	require.Equal(t, enums.PartyStatusInProgress, reloadedParty.Status)

	var notificationCount int64
	require.NoError(t, f.db.Model(&models.Notification{}).
		Where("user_id = ?", provider.UserID).Count(&notificationCount).Error)
	require.EqualValues(t, 1, notificationCount)
}

func TestService_ApproveTwiceKeepsOneTransaction(t *testing.T) {
	f := setupOffersFixture(t)
	provider := f.seedProvider(t)
	clientID := uuid.New()
	_, partyService := f.seedParty(t, clientID, enums.PartyStatusPublished)
	offer := f.seedOffer(t, partyService.ID, provider.ID, clientID)
	actor := Actor{UserID: clientID, Role: enums.UserRoleClient}

	_, err := f.svc.Approve(context.Background(), actor, offer.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), actor, offer.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	count, err := f.repo.CountTransactionsByOffer(context.Background(), offer.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestService_ApproveForbiddenForOtherClient(t *testing.T) {
	f := setupOffersFixture(t)
	provider := f.seedProvider(t)
	clientID := uuid.New()
	_, partyService := f.seedParty(t, clientID, enums.PartyStatusPublished)
	offer := f.seedOffer(t, partyService.ID, provider.ID, clientID)

	_, err := f.svc.Approve(context.Background(),
		Actor{UserID: uuid.New(), Role: enums.UserRoleClient}, offer.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	// No state changed.
	var reloaded models.Offer
	require.NoError(t, f.db.First(&reloaded, "id = ?", offer.ID).Error)
	require.Equal(t, enums.OfferStatusPending, reloaded.Status)
	count, err := f.repo.CountTransactionsByOffer(context.Background(), offer.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestService_ApproveAsAdmin(t *testing.T) {
	f := setupOffersFixture(t)
	provider := f.seedProvider(t)
	clientID := uuid.New()
	_, partyService := f.seedParty(t, clientID, enums.PartyStatusPublished)
	offer := f.seedOffer(t, partyService.ID, provider.ID, clientID)

	_, err := f.svc.Approve(context.Background(),
		Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, offer.ID)
	require.NoError(t, err)
}

func TestService_RejectCreatesNoTransaction(t *testing.T) {
	f := setupOffersFixture(t)
	provider := f.seedProvider(t)
	clientID := uuid.New()
	_, partyService := f.seedParty(t, clientID, enums.PartyStatusPublished)
	offer := f.seedOffer(t, partyService.ID, provider.ID, clientID)

	rejected, err := f.svc.Reject(context.Background(),
		Actor{UserID: clientID, Role: enums.UserRoleClient}, offer.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OfferStatusRejected, rejected.Status)

	count, err := f.repo.CountTransactionsByOffer(context.Background(), offer.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	// Terminal: a later approve must fail without mutating.
	_, err = f.svc.Approve(context.Background(),
		Actor{UserID: clientID, Role: enums.UserRoleClient}, offer.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
