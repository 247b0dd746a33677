package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/haulhub-backend/pkg/enums"
)

// Load represents a shipper's posted transport request.
type Load struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShipperID    uuid.UUID        `gorm:"column:shipper_id;type:uuid;not null"`
	TrackingCode string           `gorm:"column:tracking_code;type:text;not null;uniqueIndex:idx_loads_tracking_code"`
	Origin       string           `gorm:"column:origin;type:text;not null"`
	Destination  string           `gorm:"column:destination;type:text;not null"`
	CargoType    string           `gorm:"column:cargo_type;type:text;not null"`
	WeightKG     int              `gorm:"column:weight_kg;not null;default:0"`
	PickupDate   *time.Time       `gorm:"column:pickup_date"`
	Status       enums.LoadStatus `gorm:"column:status;type:load_status;not null;default:'posted'"`
	Notes        *string          `gorm:"column:notes"`
	Bids         []Bid            `gorm:"foreignKey:LoadID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
