package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/haulhub-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID          uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID                  `gorm:"column:recipient_id;type:uuid;not null;index"`
	Kind        enums.NotificationKind     `gorm:"column:kind;type:notification_kind;not null"`
	Priority    enums.NotificationPriority `gorm:"column:priority;type:notification_priority;not null;default:'normal'"`
	Title       string                     `gorm:"column:title;type:text;not null"`
	Message     string                     `gorm:"column:message;type:text;not null"`
	Link        *string                    `gorm:"column:link;type:text"`
	LoadID      *uuid.UUID                 `gorm:"column:load_id;type:uuid"`
	BidID       *uuid.UUID                 `gorm:"column:bid_id;type:uuid"`
	ActorID     *uuid.UUID                 `gorm:"column:actor_id;type:uuid"`
	Read        bool                       `gorm:"column:read;not null;default:false"`
	ReadAt      *time.Time                 `gorm:"column:read_at"`
	ExpiresAt   *time.Time                 `gorm:"column:expires_at"`
	CreatedAt   time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
