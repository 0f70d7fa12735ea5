package models

import (
	"time"

	"github.com/google/uuid"
)

// Provider extends a User with the business profile and PayPal onboarding
// linkage. PayPalMerchantID plus CanReceivePayments gate marketplace
// visibility for every service the provider owns.
type Provider struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID             uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BusinessName       string     `gorm:"column:business_name;not null"`
	Description        *string    `gorm:"column:description"`
	CityID             *uuid.UUID `gorm:"column:city_id;type:uuid"`
	PayPalMerchantID   *string    `gorm:"column:paypal_merchant_id"`
	PayPalTrackingID   *string    `gorm:"column:paypal_tracking_id;index"`
	CanReceivePayments bool       `gorm:"column:can_receive_payments;not null;default:false"`
	OnboardedAt        *time.Time `gorm:"column:onboarded_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
