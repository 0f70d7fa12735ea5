package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/internal/notifications"
	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
)

// userAdministration is the slice of the users repo the admin surface uses.
type userAdministration interface {
	List(ctx context.Context, role *string) ([]models.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
}

// Service defines the admin moderation operations.
type Service interface {
	ListServices(ctx context.Context, status *enums.ServiceStatus) ([]models.Service, error)
	ApproveService(ctx context.Context, serviceID uuid.UUID) (*models.Service, error)
	RejectService(ctx context.Context, serviceID uuid.UUID, reason string) (*models.Service, error)
	ListUsers(ctx context.Context, role *string) ([]models.User, error)
	DeactivateUser(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	users    userAdministration
	notifier notifications.Service
}

// NewService wires admin dependencies.
func NewService(repo Repository, users userAdministration, notifier notifications.Service) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "admin repository required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications service required")
	}
	return &service{repo: repo, users: users, notifier: notifier}, nil
}

func (s *service) ListServices(ctx context.Context, status *enums.ServiceStatus) ([]models.Service, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid service status")
	}
	services, err := s.repo.ListServices(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services")
	}
	return services, nil
}

// ApproveService puts the listing into ACTIVE. Whether it becomes publicly
// visible still depends on the provider's PayPal state at query time.
func (s *service) ApproveService(ctx context.Context, serviceID uuid.UUID) (*models.Service, error) {
	svc, err := s.loadService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetServiceStatus(ctx, svc.ID, enums.ServiceStatusActive); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve service")
	}
	svc.Status = enums.ServiceStatusActive

	s.notifyOwner(ctx, svc, "Listing approved",
		fmt.Sprintf("Your listing %q was approved.", svc.Title))
	return svc, nil
}

// RejectService puts the listing into INACTIVE. The reason is validated
// before anything is loaded or written.
func (s *service) RejectService(ctx context.Context, serviceID uuid.UUID, reason string) (*models.Service, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	svc, err := s.loadService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetServiceStatus(ctx, svc.ID, enums.ServiceStatusInactive); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject service")
	}
	svc.Status = enums.ServiceStatusInactive

	s.notifyOwner(ctx, svc, "Listing rejected",
		fmt.Sprintf("Your listing %q was rejected: %s", svc.Title, trimmed))
	return svc, nil
}

func (s *service) ListUsers(ctx context.Context, role *string) ([]models.User, error) {
	users, err := s.users.List(ctx, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return users, nil
}

// DeactivateUser is idempotent: deactivating an already inactive user
// succeeds without touching the row.
func (s *service) DeactivateUser(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if _, err := s.users.SetActive(ctx, userID, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate user")
	}
	return nil
}

func (s *service) loadService(ctx context.Context, serviceID uuid.UUID) (*models.Service, error) {
	if serviceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}
	svc, err := s.repo.FindServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
	}
	return svc, nil
}

func (s *service) notifyOwner(ctx context.Context, svc *models.Service, title, message string) {
	if svc.Provider == nil {
		return
	}
	s.notifier.Dispatch(ctx, notifications.DispatchParams{
		UserID:  svc.Provider.UserID,
		Type:    enums.NotificationTypeServiceModeration,
		Title:   title,
		Message: message,
	})
}
