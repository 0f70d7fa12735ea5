package paypal

import (
	"github.com/shopspring/decimal"
)

// Order mirrors the subset of the PayPal Orders API response we consume.
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links"`
}

// Link is a HATEOAS link returned by PayPal APIs.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// ApprovalLink returns the payer-facing approval URL from an order, if any.
func (o *Order) ApprovalLink() string {
	if o == nil {
		return ""
	}
	for _, l := range o.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			return l.Href
		}
	}
	return ""
}

// CaptureResult carries the capture identifiers needed for reconciliation.
type CaptureResult struct {
	OrderID   string
	CaptureID string
	Status    string
}

// OrderCreateParams describes a checkout order for one transaction.
type OrderCreateParams struct {
	ReferenceID string
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// PartnerReferralParams starts seller onboarding for a provider.
type PartnerReferralParams struct {
	TrackingID string
	Email      string
	ReturnURL  string
}

// PartnerReferral is the onboarding handoff returned to the provider.
type PartnerReferral struct {
	TrackingID string
	ActionURL  string
}

// SellerStatus reports a merchant's readiness to receive marketplace payments.
type SellerStatus struct {
	MerchantID            string
	PaymentsReceivable    bool
	PrimaryEmailConfirmed bool
}

// CanReceivePayments is the single gate used for catalog visibility and payouts.
func (s SellerStatus) CanReceivePayments() bool {
	return s.PaymentsReceivable && s.PrimaryEmailConfirmed
}
