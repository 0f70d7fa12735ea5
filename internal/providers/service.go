package providers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
	"github.com/dcastellanos/festivo-backend/pkg/paypal"
	"github.com/dcastellanos/festivo-backend/pkg/redis"
)

const (
	webhookIdempotencyScope = "paypal-webhook"
	webhookIdempotencyTTL   = 24 * time.Hour

	// EventPartnerConsentRevoked is the PayPal event that withdraws a
	// merchant's marketplace permissions.
	EventPartnerConsentRevoked = "MERCHANT.PARTNER-CONSENT.REVOKED"
)

// userDirectory resolves the user behind a provider profile.
type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Actor identifies the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service defines provider profile and PayPal onboarding operations.
type Service interface {
	GetProfile(ctx context.Context, actor Actor) (*models.Provider, error)
	CreateOnboardingLink(ctx context.Context, actor Actor) (*OnboardingLink, error)
	HandleOnboardingCallback(ctx context.Context, params CallbackParams) error
	HandleWebhook(ctx context.Context, payload []byte) error
}

type service struct {
	repo        Repository
	users       userDirectory
	gateway     paypal.Gateway
	idempotency redis.IdempotencyStore
	returnURL   string
	logg        *logger.Logger
}

// OnboardingLink is the PayPal handoff returned to the provider.
type OnboardingLink struct {
	TrackingID string `json:"tracking_id"`
	ActionURL  string `json:"action_url"`
}

// CallbackParams carries the query parameters of the PayPal return redirect.
type CallbackParams struct {
	TrackingID         string
	MerchantID         string
	PermissionsGranted bool
}

// webhookEnvelope is the outer shape of every PayPal webhook delivery.
type webhookEnvelope struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Resource  json.RawMessage `json:"resource"`
}

type consentRevokedResource struct {
	MerchantID string `json:"merchant_id"`
}

// NewService wires provider dependencies.
func NewService(repo Repository, users userDirectory, gateway paypal.Gateway, idempotency redis.IdempotencyStore, returnURL string, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "providers repository required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user directory required")
	}
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway required")
	}
	if idempotency == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "idempotency store required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:        repo,
		users:       users,
		gateway:     gateway,
		idempotency: idempotency,
		returnURL:   returnURL,
		logg:        logg,
	}, nil
}

func (s *service) GetProfile(ctx context.Context, actor Actor) (*models.Provider, error) {
	provider, err := s.repo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "provider profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
	}
	return provider, nil
}

// CreateOnboardingLink starts seller onboarding. The tracking id is persisted
// before the gateway call so the callback can always resolve the provider.
func (s *service) CreateOnboardingLink(ctx context.Context, actor Actor) (*OnboardingLink, error) {
	provider, err := s.GetProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, provider.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	trackingID := provider.ID.String()
	if provider.PayPalTrackingID != nil && *provider.PayPalTrackingID != "" {
		trackingID = *provider.PayPalTrackingID
	} else if err := s.repo.SetTrackingID(ctx, provider.ID, trackingID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store tracking id")
	}

	referral, err := s.gateway.CreatePartnerReferral(ctx, paypal.PartnerReferralParams{
		TrackingID: trackingID,
		Email:      user.Email,
		ReturnURL:  s.returnURL,
	})
	if err != nil {
		return nil, err
	}

	return &OnboardingLink{TrackingID: trackingID, ActionURL: referral.ActionURL}, nil
}

// HandleOnboardingCallback records the merchant id PayPal handed back and
// refreshes the seller status. Repeated delivery overwrites the same fields
// with the same values, so the whole flow is idempotent.
func (s *service) HandleOnboardingCallback(ctx context.Context, params CallbackParams) error {
	trackingID := strings.TrimSpace(params.TrackingID)
	merchantID := strings.TrimSpace(params.MerchantID)
	if trackingID == "" || merchantID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "merchantId and merchantIdInPayPal are required")
	}

	provider, err := s.repo.FindByTrackingID(ctx, trackingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no provider for tracking id")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
	}

	canReceive := false
	if params.PermissionsGranted {
		status, err := s.gateway.CheckSellerStatus(ctx, merchantID)
		if err != nil {
			// Record the merchant binding anyway; the payout processor
			// re-checks seller status on every run.
			s.logg.Warn(ctx, "seller status check failed during onboarding callback")
		} else {
			canReceive = status.CanReceivePayments()
		}
	}

	if err := s.repo.CompleteOnboarding(ctx, provider.ID, merchantID, canReceive, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete onboarding")
	}

	s.logg.Info(ctx, "provider onboarding callback processed")
	return nil
}

// HandleWebhook processes one PayPal event delivery. The redis guard keyed on
// the event id makes redelivery a no-op.
func (s *service) HandleWebhook(ctx context.Context, payload []byte) error {
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "malformed webhook payload")
	}
	if envelope.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook event id required")
	}

	key := s.idempotency.IdempotencyKey(webhookIdempotencyScope, envelope.ID)
	fresh, err := s.idempotency.SetNX(ctx, key, envelope.EventType, webhookIdempotencyTTL)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook idempotency guard")
	}
	if !fresh {
		s.logg.Info(ctx, "webhook event already processed")
		return nil
	}

	switch envelope.EventType {
	case EventPartnerConsentRevoked:
		return s.handleConsentRevoked(ctx, envelope)
	default:
		s.logg.Info(ctx, "ignoring unhandled webhook event type")
		return nil
	}
}

func (s *service) handleConsentRevoked(ctx context.Context, envelope webhookEnvelope) error {
	var resource consentRevokedResource
	if err := json.Unmarshal(envelope.Resource, &resource); err != nil || resource.MerchantID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "consent revoked event missing merchant_id")
	}

	revoked, err := s.repo.RevokeByMerchantID(ctx, resource.MerchantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke merchant")
	}
	if !revoked {
		s.logg.Warn(ctx, "consent revoked for unknown merchant")
		return nil
	}

	s.logg.Info(ctx, "partner consent revoked; payments disabled for merchant")
	return nil
}
