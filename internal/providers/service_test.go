package providers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
	"github.com/dcastellanos/festivo-backend/pkg/paypal"
)

type fakeUserDirectory struct {
	byID map[uuid.UUID]*models.User
}

func (f *fakeUserDirectory) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[key], nil
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.seen[key]; ok {
		return false, nil
	}
	f.seen[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.seen, k)
	}
	return nil
}

type stubGateway struct {
	referralFn     func(ctx context.Context, params paypal.PartnerReferralParams) (*paypal.PartnerReferral, error)
	sellerStatusFn func(ctx context.Context, merchantID string) (*paypal.SellerStatus, error)
}

func (s *stubGateway) CreateOrder(ctx context.Context, params paypal.OrderCreateParams) (*paypal.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubGateway) GetOrder(ctx context.Context, orderID string) (*paypal.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubGateway) CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not implemented")
}

func (s *stubGateway) CreatePartnerReferral(ctx context.Context, params paypal.PartnerReferralParams) (*paypal.PartnerReferral, error) {
	if s.referralFn != nil {
		return s.referralFn(ctx, params)
	}
	return &paypal.PartnerReferral{TrackingID: params.TrackingID, ActionURL: "https://paypal.example/onboard"}, nil
}

func (s *stubGateway) CheckSellerStatus(ctx context.Context, merchantID string) (*paypal.SellerStatus, error) {
	if s.sellerStatusFn != nil {
		return s.sellerStatusFn(ctx, merchantID)
	}
	return &paypal.SellerStatus{MerchantID: merchantID, PaymentsReceivable: true, PrimaryEmailConfirmed: true}, nil
}

type providersFixture struct {
	db          *gorm.DB
	svc         Service
	repo        Repository
	users       *fakeUserDirectory
	gateway     *stubGateway
	idempotency *fakeIdempotencyStore
}

func setupProvidersFixture(t *testing.T) *providersFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
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
);`).Error)

	users := &fakeUserDirectory{byID: map[uuid.UUID]*models.User{}}
	gateway := &stubGateway{}
	idempotency := newFakeIdempotencyStore()
	repo := NewRepository(db)

	svc, err := NewService(repo, users, gateway, idempotency, "https://festivo.example/paypal/return", logger.New(logger.Options{}))
	require.NoError(t, err)

	return &providersFixture{db: db, svc: svc, repo: repo, users: users, gateway: gateway, idempotency: idempotency}
}

func (f *providersFixture) seedProvider(t *testing.T) *models.Provider {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: "band@example.com", Role: enums.UserRoleProvider, IsActive: true}
	f.users.byID[user.ID] = user

	provider := &models.Provider{ID: uuid.New(), UserID: user.ID, BusinessName: "Band"}
	require.NoError(t, f.db.Create(provider).Error)
	return provider
}

func TestService_CreateOnboardingLink(t *testing.T) {
	f := setupProvidersFixture(t)
	provider := f.seedProvider(t)

	var seen paypal.PartnerReferralParams
	f.gateway.referralFn = func(ctx context.Context, params paypal.PartnerReferralParams) (*paypal.PartnerReferral, error) {
		seen = params
		return &paypal.PartnerReferral{TrackingID: params.TrackingID, ActionURL: "https://paypal.example/onboard"}, nil
	}

	link, err := f.svc.CreateOnboardingLink(context.Background(), Actor{UserID: provider.UserID, Role: enums.UserRoleProvider})
	require.NoError(t, err)
	require.Equal(t, provider.ID.String(), link.TrackingID)
	require.Equal(t, "https://paypal.example/onboard", link.ActionURL)
	require.Equal(t, "band@example.com", seen.Email)
	require.Equal(t, "https://festivo.example/paypal/return", seen.ReturnURL)

	// Tracking id is persisted and reused on a second request.
	var reloaded models.Provider
	require.NoError(t, f.db.First(&reloaded, "id = ?", provider.ID).Error)
	require.Equal(t, provider.ID.String(), *reloaded.PayPalTrackingID)

	link2, err := f.svc.CreateOnboardingLink(context.Background(), Actor{UserID: provider.UserID, Role: enums.UserRoleProvider})
	require.NoError(t, err)
	require.Equal(t, link.TrackingID, link2.TrackingID)
}

func TestService_CreateOnboardingLinkRequiresProfile(t *testing.T) {
	f := setupProvidersFixture(t)

	_, err := f.svc.CreateOnboardingLink(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleProvider})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestService_OnboardingCallbackIdempotent(t *testing.T) {
	f := setupProvidersFixture(t)
	provider := f.seedProvider(t)
	trackingID := provider.ID.String()
	require.NoError(t, f.repo.SetTrackingID(context.Background(), provider.ID, trackingID))

	params := CallbackParams{TrackingID: trackingID, MerchantID: "MERCHANT-9", PermissionsGranted: true}
	require.NoError(t, f.svc.HandleOnboardingCallback(context.Background(), params))
	require.NoError(t, f.svc.HandleOnboardingCallback(context.Background(), params))

	var reloaded models.Provider
	require.NoError(t, f.db.First(&reloaded, "id = ?", provider.ID).Error)
	require.Equal(t, "MERCHANT-9", *reloaded.PayPalMerchantID)
	require.True(t, reloaded.CanReceivePayments)
	require.NotNil(t, reloaded.OnboardedAt)
}

func TestService_OnboardingCallbackSellerStatusFailureStillBinds(t *testing.T) {
	f := setupProvidersFixture(t)
	provider := f.seedProvider(t)
	trackingID := provider.ID.String()
	require.NoError(t, f.repo.SetTrackingID(context.Background(), provider.ID, trackingID))

	f.gateway.sellerStatusFn = func(ctx context.Context, merchantID string) (*paypal.SellerStatus, error) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable")
	}

	require.NoError(t, f.svc.HandleOnboardingCallback(context.Background(),
		CallbackParams{TrackingID: trackingID, MerchantID: "MERCHANT-9", PermissionsGranted: true}))

	var reloaded models.Provider
	require.NoError(t, f.db.First(&reloaded, "id = ?", provider.ID).Error)
	require.Equal(t, "MERCHANT-9", *reloaded.PayPalMerchantID)
	require.False(t, reloaded.CanReceivePayments)
}

func TestService_WebhookConsentRevoked(t *testing.T) {
	f := setupProvidersFixture(t)
	provider := f.seedProvider(t)
	require.NoError(t, f.repo.CompleteOnboarding(context.Background(), provider.ID, "MERCHANT-9", true, time.Now().UTC()))

	payload := []byte(`{
		"id": "WH-1",
		"event_type": "MERCHANT.PARTNER-CONSENT.REVOKED",
		"resource": {"merchant_id": "MERCHANT-9"}
	}`)
	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload))

	var reloaded models.Provider
	require.NoError(t, f.db.First(&reloaded, "id = ?", provider.ID).Error)
	require.False(t, reloaded.CanReceivePayments)
}

func TestService_WebhookRedeliveryIsNoOp(t *testing.T) {
	f := setupProvidersFixture(t)
	provider := f.seedProvider(t)
	require.NoError(t, f.repo.CompleteOnboarding(context.Background(), provider.ID, "MERCHANT-9", true, time.Now().UTC()))

	payload := []byte(`{
		"id": "WH-1",
		"event_type": "MERCHANT.PARTNER-CONSENT.REVOKED",
		"resource": {"merchant_id": "MERCHANT-9"}
	}`)
	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload))

	// Re-enable, then redeliver the same event id: the guard swallows it.
	require.NoError(t, f.repo.CompleteOnboarding(context.Background(), provider.ID, "MERCHANT-9", true, time.Now().UTC()))
	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload))

	var reloaded models.Provider
	require.NoError(t, f.db.First(&reloaded, "id = ?", provider.ID).Error)
	require.True(t, reloaded.CanReceivePayments)
}

func TestService_WebhookIgnoresUnknownEvents(t *testing.T) {
	f := setupProvidersFixture(t)

	require.NoError(t, f.svc.HandleWebhook(context.Background(),
		[]byte(`{"id": "WH-2", "event_type": "PAYMENT.CAPTURE.COMPLETED", "resource": {}}`)))
}

func TestService_WebhookRejectsMalformedPayload(t *testing.T) {
	f := setupProvidersFixture(t)

	err := f.svc.HandleWebhook(context.Background(), []byte(`not json`))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = f.svc.HandleWebhook(context.Background(), []byte(`{"event_type": "X"}`))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
