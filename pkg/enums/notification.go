package enums

import "fmt"

// NotificationKind maps to the notification_kind enum in Postgres. The
// catalog is closed; dispatch rejects anything outside this list.
type NotificationKind string

const (
	NotificationKindBidReceived       NotificationKind = "bid_received"
	NotificationKindBidAccepted       NotificationKind = "bid_accepted"
	NotificationKindBidRejected       NotificationKind = "bid_rejected"
	NotificationKindLoadAssigned      NotificationKind = "load_assigned"
	NotificationKindLoadCancelled     NotificationKind = "load_cancelled"
	NotificationKindShipmentPickup    NotificationKind = "shipment_pickup"
	NotificationKindShipmentDelivered NotificationKind = "shipment_delivered"
	NotificationKindShipmentDelayed   NotificationKind = "shipment_delayed"
	NotificationKindPaymentReceived   NotificationKind = "payment_received"
	NotificationKindPaymentDue        NotificationKind = "payment_due"
	NotificationKindDocumentRequired  NotificationKind = "document_required"
	NotificationKindRatingReceived    NotificationKind = "rating_received"
	NotificationKindAccountAlert      NotificationKind = "account_alert"
	NotificationKindSystem            NotificationKind = "system"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindBidReceived,
	NotificationKindBidAccepted,
	NotificationKindBidRejected,
	NotificationKindLoadAssigned,
	NotificationKindLoadCancelled,
	NotificationKindShipmentPickup,
	NotificationKindShipmentDelivered,
	NotificationKindShipmentDelayed,
	NotificationKindPaymentReceived,
	NotificationKindPaymentDue,
	NotificationKindDocumentRequired,
	NotificationKindRatingReceived,
	NotificationKindAccountAlert,
	NotificationKindSystem,
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}

// NotificationPriority maps to the notification_priority enum in Postgres.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

var validNotificationPriorities = []NotificationPriority{
	NotificationPriorityLow,
	NotificationPriorityNormal,
	NotificationPriorityHigh,
	NotificationPriorityUrgent,
}

// IsValid checks whether the given priority matches the canonical enum.
func (p NotificationPriority) IsValid() bool {
	for _, candidate := range validNotificationPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}
