package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a wholesale buyer (restaurant, grocer, distributor).
type Customer struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	Email            *string   `gorm:"column:email"`
	BillingFrequency string    `gorm:"column:billing_frequency;not null;default:'per_order'"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
