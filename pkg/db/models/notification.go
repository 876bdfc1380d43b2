package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

// Notification is an operator-facing message produced after transitions and
// generation runs. Delivery/rendering is a UI concern; the core only records.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind      enums.NotificationKind `gorm:"column:kind;type:text;not null"`
	Title     string                 `gorm:"column:title;not null"`
	Body      string                 `gorm:"column:body;not null"`
	OrderID   *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
