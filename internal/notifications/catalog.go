package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/haulhub-backend/pkg/db/models"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
)

// Params carries the values templates interpolate. Unused fields are ignored
// by kinds that do not reference them.
type Params struct {
	TrackingCode string
	Origin       string
	Destination  string
	CarrierName  string
	ShipperName  string
	Amount       string
	Reason       string
	Detail       string
}

type template struct {
	priority enums.NotificationPriority
	title    string
	message  func(p Params) string
}

// The kind catalog is closed: dispatching an unknown kind is a programming
// error surfaced as validation, never a silent insert.
var catalog = map[enums.NotificationKind]template{
	enums.NotificationKindBidReceived: {
		priority: enums.NotificationPriorityNormal,
		title:    "New bid received",
		message: func(p Params) string {
			return fmt.Sprintf("%s placed a bid of %s on load %s", p.CarrierName, p.Amount, p.TrackingCode)
		},
	},
	enums.NotificationKindBidAccepted: {
		priority: enums.NotificationPriorityHigh,
		title:    "Bid accepted",
		message: func(p Params) string {
			return fmt.Sprintf("Your bid on load %s (%s to %s) was accepted", p.TrackingCode, p.Origin, p.Destination)
		},
	},
	enums.NotificationKindBidRejected: {
		priority: enums.NotificationPriorityNormal,
		title:    "Bid not selected",
		message: func(p Params) string {
			if p.Reason != "" {
				return fmt.Sprintf("Your bid on load %s was not selected: %s", p.TrackingCode, p.Reason)
			}
			return fmt.Sprintf("Your bid on load %s was not selected", p.TrackingCode)
		},
	},
	enums.NotificationKindLoadAssigned: {
		priority: enums.NotificationPriorityHigh,
		title:    "Load assigned",
		message: func(p Params) string {
			return fmt.Sprintf("Load %s has been assigned to %s", p.TrackingCode, p.CarrierName)
		},
	},
	enums.NotificationKindLoadCancelled: {
		priority: enums.NotificationPriorityHigh,
		title:    "Load cancelled",
		message: func(p Params) string {
			if p.Reason != "" {
				return fmt.Sprintf("Load %s was cancelled: %s", p.TrackingCode, p.Reason)
			}
			return fmt.Sprintf("Load %s was cancelled", p.TrackingCode)
		},
	},
	enums.NotificationKindShipmentPickup: {
		priority: enums.NotificationPriorityNormal,
		title:    "Shipment picked up",
		message: func(p Params) string {
			return fmt.Sprintf("Load %s was picked up at %s", p.TrackingCode, p.Origin)
		},
	},
	enums.NotificationKindShipmentDelivered: {
		priority: enums.NotificationPriorityHigh,
		title:    "Shipment delivered",
		message: func(p Params) string {
			return fmt.Sprintf("Load %s was delivered at %s", p.TrackingCode, p.Destination)
		},
	},
	enums.NotificationKindShipmentDelayed: {
		priority: enums.NotificationPriorityUrgent,
		title:    "Shipment delayed",
		message: func(p Params) string {
			if p.Reason != "" {
				return fmt.Sprintf("Load %s is delayed: %s", p.TrackingCode, p.Reason)
			}
			return fmt.Sprintf("Load %s is delayed", p.TrackingCode)
		},
	},
	enums.NotificationKindPaymentReceived: {
		priority: enums.NotificationPriorityNormal,
		title:    "Payment received",
		message: func(p Params) string {
			return fmt.Sprintf("Payment of %s received for load %s", p.Amount, p.TrackingCode)
		},
	},
	enums.NotificationKindPaymentDue: {
		priority: enums.NotificationPriorityHigh,
		title:    "Payment due",
		message: func(p Params) string {
			return fmt.Sprintf("Payment of %s is due for load %s", p.Amount, p.TrackingCode)
		},
	},
	enums.NotificationKindDocumentRequired: {
		priority: enums.NotificationPriorityHigh,
		title:    "Document required",
		message: func(p Params) string {
			return fmt.Sprintf("A document is required for load %s: %s", p.TrackingCode, p.Detail)
		},
	},
	enums.NotificationKindRatingReceived: {
		priority: enums.NotificationPriorityLow,
		title:    "New rating",
		message: func(p Params) string {
			return fmt.Sprintf("You received a new rating: %s", p.Detail)
		},
	},
	enums.NotificationKindAccountAlert: {
		priority: enums.NotificationPriorityUrgent,
		title:    "Account alert",
		message: func(p Params) string {
			return p.Detail
		},
	},
	enums.NotificationKindSystem: {
		priority: enums.NotificationPriorityLow,
		title:    "System notice",
		message: func(p Params) string {
			return p.Detail
		},
	},
}

// Message is a fully-addressed notification ready for dispatch.
type Message struct {
	RecipientID uuid.UUID
	Kind        enums.NotificationKind
	Params      Params
	Link        *string
	LoadID      *uuid.UUID
	BidID       *uuid.UUID
	ActorID     *uuid.UUID
}

// Build renders a catalog template into a persistable notification row.
func Build(msg Message) (*models.Notification, error) {
	if msg.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	tmpl, ok := catalog[msg.Kind]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown notification kind %q", msg.Kind))
	}

	return &models.Notification{
		RecipientID: msg.RecipientID,
		Kind:        msg.Kind,
		Priority:    tmpl.priority,
		Title:       tmpl.title,
		Message:     tmpl.message(msg.Params),
		Link:        msg.Link,
		LoadID:      msg.LoadID,
		BidID:       msg.BidID,
		ActorID:     msg.ActorID,
	}, nil
}
