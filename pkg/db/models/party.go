package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

// Party is a client's event aggregate holding the requested services.
type Party struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID  uuid.UUID         `gorm:"column:client_id;type:uuid;not null;index"`
	CityID    uuid.UUID         `gorm:"column:city_id;type:uuid;not null"`
	Name      string            `gorm:"type:text;not null"`
	Date      time.Time         `gorm:"column:date;not null"`
	Status    enums.PartyStatus `gorm:"column:status;type:party_status;not null;default:'DRAFT'"`
	Services  []PartyService    `gorm:"foreignKey:PartyID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// PartyService joins a Party to a catalog Service with client-chosen options.
type PartyService struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PartyID   uuid.UUID `gorm:"column:party_id;type:uuid;not null;index"`
	ServiceID uuid.UUID `gorm:"column:service_id;type:uuid;not null"`
	Address   *string   `gorm:"column:address"`
	Comments  *string   `gorm:"column:comments"`
	Addons    []string  `gorm:"column:addons;type:jsonb;serializer:json"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
