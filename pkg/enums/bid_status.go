package enums

import "fmt"

// BidStatus maps to the bid_status enum in Postgres. A bid row doubles as the
// booking record once confirmed, so the statuses continue past acceptance:
// pending is the offer phase, everything from confirmed onward is execution.
type BidStatus string

const (
	BidStatusPending   BidStatus = "pending"
	BidStatusConfirmed BidStatus = "confirmed"
	BidStatusInTransit BidStatus = "in_transit"
	BidStatusCompleted BidStatus = "completed"
	BidStatusCancelled BidStatus = "cancelled"
)

var validBidStatuses = []BidStatus{
	BidStatusPending,
	BidStatusConfirmed,
	BidStatusInTransit,
	BidStatusCompleted,
	BidStatusCancelled,
}

// String implements fmt.Stringer.
func (s BidStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BidStatus.
func (s BidStatus) IsValid() bool {
	for _, candidate := range validBidStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from this status.
func (s BidStatus) Terminal() bool {
	return s == BidStatusCompleted || s == BidStatusCancelled
}

// ParseBidStatus converts raw input into a BidStatus.
func ParseBidStatus(value string) (BidStatus, error) {
	for _, candidate := range validBidStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bid status %q", value)
}
