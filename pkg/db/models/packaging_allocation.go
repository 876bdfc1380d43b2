package models

import (
	"time"

	"github.com/google/uuid"
)

// PackagingAllocation assigns packaging units (clamshells, trays, bulk bags) to
// an order.
type PackagingAllocation struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	PackagingType string    `gorm:"column:packaging_type;not null"`
	Quantity      int       `gorm:"column:quantity;not null"`
	Notes         *string   `gorm:"column:notes"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
