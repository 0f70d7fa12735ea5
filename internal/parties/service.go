package parties

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcastellanos/festivo-backend/pkg/db/models"
	"github.com/dcastellanos/festivo-backend/pkg/enums"
	pkgerrors "github.com/dcastellanos/festivo-backend/pkg/errors"
)

// catalogReader is the slice of the catalog surface parties depend on.
type catalogReader interface {
	FindVisibleByID(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

// Actor identifies the authenticated caller for ownership checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// Service defines party lifecycle operations.
type Service interface {
	Create(ctx context.Context, actor Actor, params CreateParams) (*models.Party, error)
	Get(ctx context.Context, actor Actor, partyID uuid.UUID) (*models.Party, error)
	ListMine(ctx context.Context, actor Actor) ([]models.Party, error)
	AttachService(ctx context.Context, actor Actor, params AttachServiceParams) (*models.PartyService, error)
	Publish(ctx context.Context, actor Actor, partyID uuid.UUID) (*models.Party, error)
}

type service struct {
	repo    Repository
	catalog catalogReader
}

// CreateParams describes a new party.
type CreateParams struct {
	CityID uuid.UUID
	Name   string
	Date   time.Time
}

// AttachServiceParams links a catalog service to a party with client options.
type AttachServiceParams struct {
	PartyID   uuid.UUID
	ServiceID uuid.UUID
	Address   *string
	Comments  *string
	Addons    []string
}

// NewService wires party dependencies.
func NewService(repo Repository, catalog catalogReader) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "parties repository required")
	}
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "parties catalog reader required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, params CreateParams) (*models.Party, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party name is required")
	}
	if params.CityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}
	if params.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party date is required")
	}

	party := &models.Party{
		ClientID: actor.UserID,
		CityID:   params.CityID,
		Name:     name,
		Date:     params.Date,
		Status:   enums.PartyStatusDraft,
	}
	if err := s.repo.Create(ctx, party); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create party")
	}
	return party, nil
}

func (s *service) Get(ctx context.Context, actor Actor, partyID uuid.UUID) (*models.Party, error) {
	party, err := s.loadParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party.ClientID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party belongs to another client")
	}
	return party, nil
}

func (s *service) ListMine(ctx context.Context, actor Actor) ([]models.Party, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	parties, err := s.repo.ListByClient(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parties")
	}
	return parties, nil
}

func (s *service) AttachService(ctx context.Context, actor Actor, params AttachServiceParams) (*models.PartyService, error) {
	party, err := s.loadParty(ctx, params.PartyID)
	if err != nil {
		return nil, err
	}
	if party.ClientID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party belongs to another client")
	}
	if party.Status == enums.PartyStatusCompleted || party.Status == enums.PartyStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party no longer accepts services")
	}

	// Only publicly visible services can be attached.
	if _, err := s.catalog.FindVisibleByID(ctx, params.ServiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service")
	}

	partyService := &models.PartyService{
		PartyID:   party.ID,
		ServiceID: params.ServiceID,
		Address:   params.Address,
		Comments:  params.Comments,
		Addons:    params.Addons,
	}
	if err := s.repo.AttachService(ctx, partyService); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach service")
	}
	return partyService, nil
}

func (s *service) Publish(ctx context.Context, actor Actor, partyID uuid.UUID) (*models.Party, error) {
	party, err := s.loadParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if party.ClientID != actor.UserID && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party belongs to another client")
	}

	moved, err := s.repo.UpdateStatus(ctx, party.ID, enums.PartyStatusDraft, enums.PartyStatusPublished)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish party")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party cannot be published")
	}

	party.Status = enums.PartyStatusPublished
	return party, nil
}

func (s *service) loadParty(ctx context.Context, partyID uuid.UUID) (*models.Party, error) {
	if partyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party id required")
	}
	party, err := s.repo.FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}
	return party, nil
}
