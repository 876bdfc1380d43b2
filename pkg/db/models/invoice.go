package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

// Invoice bills one order, or several when consolidated for a customer's
// billing period.
type Invoice struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID     uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	Status         enums.InvoiceStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(14,4);not null;default:0"`
	IsConsolidated bool                `gorm:"column:is_consolidated;not null;default:false"`
	PeriodStart    *time.Time          `gorm:"column:period_start"`
	PeriodEnd      *time.Time          `gorm:"column:period_end"`
	PaidAt         *time.Time          `gorm:"column:paid_at"`
	CancelledAt    *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
