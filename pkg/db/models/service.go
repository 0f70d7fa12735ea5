package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

// Service is a provider-owned catalog listing. Public visibility is never
// stored; it is recomputed on every query from Status plus the owning
// provider's PayPal onboarding fields.
type Service struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProviderID  uuid.UUID           `gorm:"column:provider_id;type:uuid;not null;index"`
	CategoryID  uuid.UUID           `gorm:"column:category_id;type:uuid;not null"`
	CityID      uuid.UUID           `gorm:"column:city_id;type:uuid;not null"`
	Title       string              `gorm:"type:text;not null"`
	Description *string             `gorm:"type:text"`
	Price       decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Status      enums.ServiceStatus `gorm:"column:status;type:service_status;not null;default:'PENDING'"`
	ViewCount   int64               `gorm:"column:view_count;not null;default:0"`
	Provider    *Provider           `gorm:"foreignKey:ProviderID"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
