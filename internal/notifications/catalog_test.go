package notifications

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/haulhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haulhub-backend/pkg/errors"
)

func TestBuildRendersTemplate(t *testing.T) {
	recipient := uuid.New()
	row, err := Build(Message{
		RecipientID: recipient,
		Kind:        enums.NotificationKindBidReceived,
		Params: Params{
			CarrierName:  "Fast Freight LLC",
			Amount:       "$1,250.00",
			TrackingCode: "HHL2026ABCD",
		},
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if row.RecipientID != recipient {
		t.Fatalf("wrong recipient")
	}
	if row.Priority != enums.NotificationPriorityNormal {
		t.Fatalf("expected normal priority, got %s", row.Priority)
	}
	if !strings.Contains(row.Message, "HHL2026ABCD") || !strings.Contains(row.Message, "$1,250.00") {
		t.Fatalf("message missing params: %q", row.Message)
	}
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	_, err := Build(Message{
		RecipientID: uuid.New(),
		Kind:        enums.NotificationKind("carrier_pigeon"),
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildRejectsMissingRecipient(t *testing.T) {
	_, err := Build(Message{Kind: enums.NotificationKindSystem})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCatalogCoversEveryKind(t *testing.T) {
	kinds := []enums.NotificationKind{
		enums.NotificationKindBidReceived,
		enums.NotificationKindBidAccepted,
		enums.NotificationKindBidRejected,
		enums.NotificationKindLoadAssigned,
		enums.NotificationKindLoadCancelled,
		enums.NotificationKindShipmentPickup,
		enums.NotificationKindShipmentDelivered,
		enums.NotificationKindShipmentDelayed,
		enums.NotificationKindPaymentReceived,
		enums.NotificationKindPaymentDue,
		enums.NotificationKindDocumentRequired,
		enums.NotificationKindRatingReceived,
		enums.NotificationKindAccountAlert,
		enums.NotificationKindSystem,
	}
	for _, kind := range kinds {
		if _, ok := catalog[kind]; !ok {
			t.Errorf("kind %s missing from catalog", kind)
		}
	}
	if len(catalog) != len(kinds) {
		t.Fatalf("catalog has %d entries, expected %d", len(catalog), len(kinds))
	}
}
