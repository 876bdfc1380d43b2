package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

// OrderAuditEntry is an immutable record of one status change.
type OrderAuditEntry struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID             `gorm:"column:order_id;type:uuid;not null"`
	OldStatus enums.OrderStatusCode `gorm:"column:old_status;type:text;not null"`
	NewStatus enums.OrderStatusCode `gorm:"column:new_status;type:text;not null"`
	OldStage  enums.OrderStage      `gorm:"column:old_stage;type:text;not null"`
	NewStage  enums.OrderStage      `gorm:"column:new_stage;type:text;not null"`
	ActorID   *uuid.UUID            `gorm:"column:actor_id;type:uuid"`
	Label     string                `gorm:"column:label;not null"`
	Notes     *string               `gorm:"column:notes"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
