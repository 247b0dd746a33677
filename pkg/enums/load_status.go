package enums

import "fmt"

// LoadStatus maps to the load_status enum in Postgres.
type LoadStatus string

const (
	LoadStatusPosted    LoadStatus = "posted"
	LoadStatusPending   LoadStatus = "pending"
	LoadStatusInTransit LoadStatus = "in_transit"
	LoadStatusDelivered LoadStatus = "delivered"
	LoadStatusCancelled LoadStatus = "cancelled"
)

var validLoadStatuses = []LoadStatus{
	LoadStatusPosted,
	LoadStatusPending,
	LoadStatusInTransit,
	LoadStatusDelivered,
	LoadStatusCancelled,
}

// String implements fmt.Stringer.
func (s LoadStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LoadStatus.
func (s LoadStatus) IsValid() bool {
	for _, candidate := range validLoadStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// OpenForBidding reports whether carriers may still submit bids.
func (s LoadStatus) OpenForBidding() bool {
	return s == LoadStatusPosted || s == LoadStatusPending
}

// Editable reports whether the shipper may still edit or delete the load.
func (s LoadStatus) Editable() bool {
	return s == LoadStatusPosted || s == LoadStatusPending
}

// ParseLoadStatus converts raw input into a LoadStatus.
func ParseLoadStatus(value string) (LoadStatus, error) {
	for _, candidate := range validLoadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid load status %q", value)
}
