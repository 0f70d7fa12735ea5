package enums

import "fmt"

// PartyStatus tracks the lifecycle of a client's event. Transitions only
// advance; there is no path back to DRAFT.
type PartyStatus string

const (
	PartyStatusDraft      PartyStatus = "DRAFT"
	PartyStatusPublished  PartyStatus = "PUBLISHED"
	PartyStatusInProgress PartyStatus = "IN_PROGRESS"
	PartyStatusCompleted  PartyStatus = "COMPLETED"
	PartyStatusCancelled  PartyStatus = "CANCELLED"
)

var validPartyStatuses = []PartyStatus{
	PartyStatusDraft,
	PartyStatusPublished,
	PartyStatusInProgress,
	PartyStatusCompleted,
	PartyStatusCancelled,
}

// partyStatusRank orders the forward-only lifecycle. CANCELLED sits outside
// the progression and is handled separately.
var partyStatusRank = map[PartyStatus]int{
	PartyStatusDraft:      0,
	PartyStatusPublished:  1,
	PartyStatusInProgress: 2,
	PartyStatusCompleted:  3,
}

// String implements fmt.Stringer.
func (p PartyStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PartyStatus.
func (p PartyStatus) IsValid() bool {
	for _, candidate := range validPartyStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// AtOrPast reports whether the status has already reached the given stage.
func (p PartyStatus) AtOrPast(other PartyStatus) bool {
	rank, ok := partyStatusRank[p]
	otherRank, otherOK := partyStatusRank[other]
	if !ok || !otherOK {
		return false
	}
	return rank >= otherRank
}

// PartyStatusesBefore returns the lifecycle stages strictly before target.
// Useful for conditional forward-only updates.
func PartyStatusesBefore(target PartyStatus) []PartyStatus {
	targetRank, ok := partyStatusRank[target]
	if !ok {
		return nil
	}
	var earlier []PartyStatus
	for _, candidate := range validPartyStatuses {
		if rank, ok := partyStatusRank[candidate]; ok && rank < targetRank {
			earlier = append(earlier, candidate)
		}
	}
	return earlier
}

// ParsePartyStatus converts raw input into a PartyStatus.
func ParsePartyStatus(value string) (PartyStatus, error) {
	for _, candidate := range validPartyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid party status %q", value)
}
