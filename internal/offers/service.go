package offers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/internal/notifications"
	"github.com/dcastellanos/festivo-backend/internal/parties"
	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// providerDirectory resolves providers for offer creation and notification fan-out.
type providerDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Provider, error)
}

// Actor identifies the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// Service defines offer lifecycle operations.
type Service interface {
	Create(ctx context.Context, actor Actor, params CreateParams) (*models.Offer, error)
	Approve(ctx context.Context, actor Actor, offerID uuid.UUID) (*ApproveResult, error)
	Reject(ctx context.Context, actor Actor, offerID uuid.UUID) (*models.Offer, error)
	ListForPartyService(ctx context.Context, actor Actor, partyServiceID uuid.UUID) ([]models.Offer, error)
}

type service struct {
	repo      Repository
	parties   parties.Repository
	providers providerDirectory
	tx        txRunner
	notifier  notifications.Service
}

// CreateParams describes a provider's quote against one party service.
type CreateParams struct {
	PartyServiceID uuid.UUID
	Price          decimal.Decimal
	Message        *string
}

// ApproveResult carries the approved offer and the transaction it spawned.
type ApproveResult struct {
	Offer       *models.Offer       `json:"offer"`
	Transaction *models.Transaction `json:"transaction"`
}

// NewService wires offer dependencies.
func NewService(repo Repository, partyRepo parties.Repository, providers providerDirectory, tx txRunner, notifier notifications.Service) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "offers repository required")
	}
	if partyRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "parties repository required")
	}
	if providers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "provider directory required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	return &service{
		repo:      repo,
		parties:   partyRepo,
		providers: providers,
		tx:        tx,
		notifier:  notifier,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, params CreateParams) (*models.Offer, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if params.PartyServiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party service id required")
	}
	if !params.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	provider, err := s.providers.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "provider profile required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load provider")
	}

	partyService, err := s.parties.FindPartyServiceByID(ctx, params.PartyServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party service")
	}

	party, err := s.parties.FindByID(ctx, partyService.PartyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}
	if party.Status == enums.PartyStatusCompleted || party.Status == enums.PartyStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party no longer accepts offers")
	}

	offer := &models.Offer{
		PartyServiceID: partyService.ID,
		ProviderID:     provider.ID,
		ClientID:       party.ClientID,
		Price:          params.Price,
		Message:        params.Message,
		Status:         enums.OfferStatusPending,
	}
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
	}
	return offer, nil
}

// Approve flips the offer PENDING→APPROVED and creates its Transaction as
// one all-or-nothing unit. The compare-and-swap guarantees at most one
// Transaction per offer even under concurrent approve requests.
func (s *service) Approve(ctx context.Context, actor Actor, offerID uuid.UUID) (*ApproveResult, error) {
	if offerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	var (
		approved    *models.Offer
		transaction *models.Transaction
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		partyRepo := s.parties.WithTx(tx)

		offer, err := repo.FindByID(ctx, offerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
		}
		if offer.ClientID != actor.UserID && !actor.IsAdmin() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another client")
		}

		moved, err := repo.Decide(ctx, offer.ID, enums.OfferStatusApproved, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve offer")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeValidation, "offer cannot be approved")
		}

		partyService, err := partyRepo.FindPartyServiceByID(ctx, offer.PartyServiceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party service")
		}

		transaction = &models.Transaction{
			PartyID:       partyService.PartyID,
			OfferID:       offer.ID,
			ClientID:      offer.ClientID,
			ProviderID:    offer.ProviderID,
			Amount:        offer.Price,
			Currency:      "USD",
			Status:        enums.TransactionStatusPending,
			PaymentMethod: enums.PaymentMethodPayPal,
		}
		if err := repo.CreateTransaction(ctx, transaction); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
		}

		if err := partyRepo.AdvanceStatus(ctx, partyService.PartyID, enums.PartyStatusInProgress); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance party status")
		}

		offer.Status = enums.OfferStatusApproved
		approved = offer
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyProvider(ctx, approved, enums.NotificationTypeOfferApproved,
		"Offer approved",
		fmt.Sprintf("Your offer for %s was approved.", approved.Price.StringFixed(2)))

	return &ApproveResult{Offer: approved, Transaction: transaction}, nil
}

// Reject flips the offer PENDING→REJECTED. No Transaction is touched.
func (s *service) Reject(ctx context.Context, actor Actor, offerID uuid.UUID) (*models.Offer, error) {
	if offerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer.ClientID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another client")
	}

	moved, err := s.repo.Decide(ctx, offer.ID, enums.OfferStatusRejected, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject offer")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer cannot be rejected")
	}
	offer.Status = enums.OfferStatusRejected

	s.notifyProvider(ctx, offer, enums.NotificationTypeOfferRejected,
		"Offer rejected",
		"Your offer was rejected by the client.")

	return offer, nil
}

func (s *service) ListForPartyService(ctx context.Context, actor Actor, partyServiceID uuid.UUID) ([]models.Offer, error) {
	if partyServiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party service id required")
	}

	partyService, err := s.parties.FindPartyServiceByID(ctx, partyServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party service")
	}
	party, err := s.parties.FindByID(ctx, partyService.PartyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}
	if party.ClientID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party belongs to another client")
	}

	offers, err := s.repo.ListByPartyService(ctx, partyServiceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	return offers, nil
}

// notifyProvider resolves the provider's user and dispatches a best-effort
// notification after the decision has committed.
func (s *service) notifyProvider(ctx context.Context, offer *models.Offer, kind enums.NotificationType, title, message string) {
	provider, err := s.providers.FindByID(ctx, offer.ProviderID)
	if err != nil {
		return
	}
	s.notifier.Dispatch(ctx, notifications.DispatchParams{
		UserID:  provider.UserID,
		Type:    kind,
		Title:   title,
		Message: message,
	})
}
