package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haulhub-backend/pkg/enums"
)

// Bid is a carrier's offer against one load. After acceptance the same row is
// the booking record: the execution columns (pickup/delivery stamps, progress,
// location) are only written by booking transitions.
type Bid struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LoadID       uuid.UUID       `gorm:"column:load_id;type:uuid;not null;index"`
	CarrierID    uuid.UUID       `gorm:"column:carrier_id;type:uuid;not null;index"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	PlatformFee  decimal.Decimal `gorm:"column:platform_fee;type:numeric(12,2);not null"`
	Total        decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	Status       enums.BidStatus `gorm:"column:status;type:bid_status;not null;default:'pending'"`
	VehicleID    *uuid.UUID      `gorm:"column:vehicle_id;type:uuid"`
	Notes        *string         `gorm:"column:notes"`
	PickupAt     *time.Time      `gorm:"column:pickup_at"`
	DeliveredAt  *time.Time      `gorm:"column:delivered_at"`
	Progress     int             `gorm:"column:progress;not null;default:0"`
	LocationNote *string         `gorm:"column:location_note"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
