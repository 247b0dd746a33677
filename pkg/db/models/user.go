package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/haulhub-backend/pkg/enums"
)

// User is the minimal account record the engine reads. Credential storage and
// verification live in the external identity service.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Role      enums.UserRole `gorm:"column:role;type:user_role;not null"`
	Name      string         `gorm:"column:name;type:text;not null"`
	Email     string         `gorm:"column:email;type:text;not null;uniqueIndex:idx_users_email"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
