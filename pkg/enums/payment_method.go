package enums

import "fmt"

// PaymentMethod names the gateway a transaction settles through.
type PaymentMethod string

const (
	PaymentMethodPayPal PaymentMethod = "paypal"
)

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	return p == PaymentMethodPayPal
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	if value == string(PaymentMethodPayPal) {
		return PaymentMethodPayPal, nil
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
