package models

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a carrier-owned truck a bid may reference.
type Vehicle struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CarrierID   uuid.UUID `gorm:"column:carrier_id;type:uuid;not null;index"`
	PlateNumber string    `gorm:"column:plate_number;type:text;not null"`
	Kind        string    `gorm:"column:kind;type:text;not null"`
	CapacityKG  int       `gorm:"column:capacity_kg;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
