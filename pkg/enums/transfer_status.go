package enums

import "fmt"

// TransferStatus records the payout outcome for a completed transaction.
// A null column means the payout processor has not attempted it yet.
type TransferStatus string

const (
	TransferStatusReleased TransferStatus = "RELEASED"
	TransferStatusFailed   TransferStatus = "FAILED"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusReleased,
	TransferStatusFailed,
}

// String implements fmt.Stringer.
func (t TransferStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransferStatus.
func (t TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransferStatus converts raw input into a TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
