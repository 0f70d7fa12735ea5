package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dcastellanos/festivo-backend/pkg/enums"
)

// Transaction is the financial record created exactly once when an offer is
// approved. Rows are never deleted; they double as the audit trail.
//
// TransferStatus is nullable on purpose: null means the payout processor has
// not attempted this row yet, which makes COMPLETED+null the payout queue.
type Transaction struct {
	ID              uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PartyID         uuid.UUID               `gorm:"column:party_id;type:uuid;not null;index"`
	OfferID         uuid.UUID               `gorm:"column:offer_id;type:uuid;not null;uniqueIndex"`
	ClientID        uuid.UUID               `gorm:"column:client_id;type:uuid;not null"`
	ProviderID      uuid.UUID               `gorm:"column:provider_id;type:uuid;not null"`
	Amount          decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency        string                  `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status          enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null;default:'PENDING'"`
	PaymentMethod   enums.PaymentMethod     `gorm:"column:payment_method;type:payment_method;not null;default:'paypal'"`
	PayPalOrderID   *string                 `gorm:"column:paypal_order_id;uniqueIndex"`
	CaptureID       *string                 `gorm:"column:capture_id"`
	TransferStatus  *enums.TransferStatus   `gorm:"column:transfer_status;type:transfer_status"`
	TermsAccepted   bool                    `gorm:"column:terms_accepted;not null;default:false"`
	TermsType       *string                 `gorm:"column:terms_type"`
	TermsAcceptedAt *time.Time              `gorm:"column:terms_accepted_at"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
