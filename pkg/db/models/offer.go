package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

// Offer is a provider's price quote against one PartyService. ClientID is
// denormalized from the owning party for authorization checks.
type Offer struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PartyServiceID uuid.UUID         `gorm:"column:party_service_id;type:uuid;not null;index"`
	ProviderID     uuid.UUID         `gorm:"column:provider_id;type:uuid;not null;index"`
	ClientID       uuid.UUID         `gorm:"column:client_id;type:uuid;not null"`
	Price          decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Message        *string           `gorm:"column:message"`
	Status         enums.OfferStatus `gorm:"column:status;type:offer_status;not null;default:'PENDING'"`
	DecidedAt      *time.Time        `gorm:"column:decided_at"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
