package transactions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/internal/notifications"
	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
	"github.com/dcastellanos/festivo-backend/pkg/logger"
	"github.com/dcastellanos/festivo-backend/pkg/paypal"
)

// providerDirectory resolves providers for payout gating and notifications.
type providerDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Provider, error)
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

// Service defines transaction read, payment, and payout operations.
type Service interface {
	Get(ctx context.Context, actor Actor, transactionID uuid.UUID) (*models.Transaction, error)
	CreatePaymentOrder(ctx context.Context, actor Actor, transactionID uuid.UUID) (*PaymentOrder, error)
	Capture(ctx context.Context, actor Actor, paypalOrderID string) (*models.Transaction, error)
	AcceptTerms(ctx context.Context, actor Actor, params AcceptTermsParams) (*models.Transaction, error)
	ProcessPayouts(ctx context.Context) (*PayoutReport, error)
}

type service struct {
	repo      Repository
	providers providerDirectory
	gateway   paypal.Gateway
	notifier  notifications.Service
	logg      *logger.Logger
}

// PaymentOrder is returned to the client to continue PayPal checkout.
type PaymentOrder struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	PayPalOrderID string    `json:"paypal_order_id"`
	ApprovalURL   string    `json:"approval_url"`
}

// AcceptTermsParams records the client's terms acceptance.
type AcceptTermsParams struct {
	TransactionID uuid.UUID
	TermsType     string
}

// PayoutReport aggregates one processor run. Per-item failures never abort
// the batch; they only count.
type PayoutReport struct {
	Processed int `json:"processed"`
	Released  int `json:"released"`
	Failed    int `json:"failed"`
}

// NewService wires transaction dependencies.
func NewService(repo Repository, providers providerDirectory, gateway paypal.Gateway, notifier notifications.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transactions repository required")
	}
	if providers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "provider directory required")
	}
	if gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:      repo,
		providers: providers,
		gateway:   gateway,
		notifier:  notifier,
		logg:      logg,
	}, nil
}

func (s *service) Get(ctx context.Context, actor Actor, transactionID uuid.UUID) (*models.Transaction, error) {
	transaction, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(ctx, actor, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

// CreatePaymentOrder opens a PayPal checkout order for a PENDING transaction
// and binds the order id to the row.
func (s *service) CreatePaymentOrder(ctx context.Context, actor Actor, transactionID uuid.UUID) (*PaymentOrder, error) {
	transaction, err := s.load(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.ClientID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "transaction belongs to another client")
	}
	if transaction.Status != enums.TransactionStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction is not awaiting payment")
	}
	if transaction.PayPalOrderID != nil {
		// Order already opened; return the existing binding.
		order, err := s.gateway.GetOrder(ctx, *transaction.PayPalOrderID)
		if err != nil {
			return nil, err
		}
		return &PaymentOrder{
			TransactionID: transaction.ID,
			PayPalOrderID: order.ID,
			ApprovalURL:   order.ApprovalLink(),
		}, nil
	}

	order, err := s.gateway.CreateOrder(ctx, paypal.OrderCreateParams{
		ReferenceID: transaction.ID.String(),
		Amount:      transaction.Amount,
		Currency:    transaction.Currency,
		Description: "Festivo party service",
	})
	if err != nil {
		return nil, err
	}

	bound, err := s.repo.SetPayPalOrderID(ctx, transaction.ID, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bind paypal order")
	}
	if !bound {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "transaction already has a payment order")
	}

	return &PaymentOrder{
		TransactionID: transaction.ID,
		PayPalOrderID: order.ID,
		ApprovalURL:   order.ApprovalLink(),
	}, nil
}

// Capture settles an approved PayPal order. A gateway failure surfaces as a
// payment gateway error and leaves the transaction untouched.
func (s *service) Capture(ctx context.Context, actor Actor, paypalOrderID string) (*models.Transaction, error) {
	orderID := strings.TrimSpace(paypalOrderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paypal order id required")
	}

	transaction, err := s.repo.FindByPayPalOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	if transaction.ClientID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "transaction belongs to another client")
	}
	if transaction.Status != enums.TransactionStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction cannot be captured")
	}

	result, err := s.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		// No write: the row stays exactly as it was.
		return nil, err
	}

	captured, err := s.repo.MarkCaptured(ctx, transaction.ID, result.CaptureID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record capture")
	}
	if !captured {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "transaction was captured concurrently")
	}

	transaction.CaptureID = &result.CaptureID
	transaction.Status = enums.TransactionStatusCompleted

	if provider, err := s.providers.FindByID(ctx, transaction.ProviderID); err == nil {
		s.notifier.Dispatch(ctx, notifications.DispatchParams{
			UserID:  provider.UserID,
			Type:    enums.NotificationTypePaymentCaptured,
			Title:   "Payment received",
			Message: fmt.Sprintf("Payment of %s %s was captured.", transaction.Amount.StringFixed(2), transaction.Currency),
		})
	}

	return transaction, nil
}

// AcceptTerms records the client's acceptance. Re-acceptance overwrites the
// timestamp without creating duplicate records.
func (s *service) AcceptTerms(ctx context.Context, actor Actor, params AcceptTermsParams) (*models.Transaction, error) {
	termsType := strings.TrimSpace(params.TermsType)
	if termsType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "terms type required")
	}

	transaction, err := s.load(ctx, params.TransactionID)
	if err != nil {
		return nil, err
	}
	if transaction.ClientID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "transaction belongs to another client")
	}

	now := time.Now().UTC()
	if err := s.repo.SetTermsAccepted(ctx, transaction.ID, termsType, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record terms acceptance")
	}

	transaction.TermsAccepted = true
	transaction.TermsType = &termsType
	transaction.TermsAcceptedAt = &now
	return transaction, nil
}

// ProcessPayouts drains one batch of the payout queue. The seller status
// check gates the release; a provider who cannot receive payments fails the
// item. Gateway errors count as failures but leave transfer_status null so
// the next run retries them.
func (s *service) ProcessPayouts(ctx context.Context) (*PayoutReport, error) {
	queue, err := s.repo.ListPayoutQueue(ctx, PayoutBatchSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payout queue")
	}

	report := &PayoutReport{}
	var errs error
	for _, transaction := range queue {
		report.Processed++
		released, itemErr := s.releaseOne(ctx, &transaction)
		if itemErr != nil {
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("transaction %s: %w", transaction.ID, itemErr))
			continue
		}
		if released {
			report.Released++
		} else {
			report.Failed++
		}
	}

	if errs != nil {
		s.logg.Error(ctx, "payout batch finished with errors", errs)
	}
	return report, nil
}

func (s *service) releaseOne(ctx context.Context, transaction *models.Transaction) (bool, error) {
	provider, err := s.providers.FindByID(ctx, transaction.ProviderID)
	if err != nil {
		return false, fmt.Errorf("load provider: %w", err)
	}

	if provider.PayPalMerchantID == nil {
		if err := s.repo.SetTransferStatus(ctx, transaction.ID, enums.TransferStatusFailed); err != nil {
			return false, fmt.Errorf("mark failed: %w", err)
		}
		return false, nil
	}

	status, err := s.gateway.CheckSellerStatus(ctx, *provider.PayPalMerchantID)
	if err != nil {
		// transfer_status stays null; the next run retries.
		return false, err
	}

	if !status.CanReceivePayments() {
		if err := s.repo.SetTransferStatus(ctx, transaction.ID, enums.TransferStatusFailed); err != nil {
			return false, fmt.Errorf("mark failed: %w", err)
		}
		return false, nil
	}

	if err := s.repo.SetTransferStatus(ctx, transaction.ID, enums.TransferStatusReleased); err != nil {
		return false, fmt.Errorf("mark released: %w", err)
	}

	s.notifier.Dispatch(ctx, notifications.DispatchParams{
		UserID:  provider.UserID,
		Type:    enums.NotificationTypePayoutReleased,
		Title:   "Payout released",
		Message: fmt.Sprintf("Your payout of %s %s was released.", transaction.Amount.StringFixed(2), transaction.Currency),
	})
	return true, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	transaction, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return transaction, nil
}

// authorizeRead allows the party client, the offer provider, or an admin.
func (s *service) authorizeRead(ctx context.Context, actor Actor, transaction *models.Transaction) error {
	if actor.IsAdmin() || transaction.ClientID == actor.UserID {
		return nil
	}
	provider, err := s.providers.FindByID(ctx, transaction.ProviderID)
	if err == nil && provider.UserID == actor.UserID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
}
