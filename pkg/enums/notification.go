package enums

import "fmt"

// NotificationType tags in-app notification rows.
type NotificationType string

const (
	NotificationTypeOfferApproved      NotificationType = "offer_approved"
	NotificationTypeOfferRejected      NotificationType = "offer_rejected"
	NotificationTypeServiceModeration  NotificationType = "service_moderation"
	NotificationTypePaymentCaptured    NotificationType = "payment_captured"
	NotificationTypePayoutReleased     NotificationType = "payout_released"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOfferApproved,
	NotificationTypeOfferRejected,
	NotificationTypeServiceModeration,
	NotificationTypePaymentCaptured,
	NotificationTypePayoutReleased,
	NotificationTypeSystemAnnouncement,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
