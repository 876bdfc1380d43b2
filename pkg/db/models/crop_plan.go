package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

// CropPlan is a production requirement derived from an order's line items:
// how many trays and grams must be planted, by when, to fulfill the order.
type CropPlan struct {
	ID                  uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID            `gorm:"column:order_id;type:uuid;not null"`
	CropBatchID         *uuid.UUID           `gorm:"column:crop_batch_id;type:uuid"`
	ProductID           uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	Status              enums.CropPlanStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	TraysNeeded         int                  `gorm:"column:trays_needed;not null;default:0"`
	GramsNeeded         decimal.Decimal      `gorm:"column:grams_needed;type:numeric(14,4);not null;default:0"`
	PlantByDate         *time.Time           `gorm:"column:plant_by_date"`
	ExpectedHarvestDate *time.Time           `gorm:"column:expected_harvest_date"`
	CancelReason        *string              `gorm:"column:cancel_reason"`
	CancelledAt         *time.Time           `gorm:"column:cancelled_at"`

	Crops []Crop `gorm:"foreignKey:CropPlanID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// CropBatch aggregates crop plans that share a planting window so trays and
// grams can be summed into one production run.
type CropBatch struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID           uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	TotalTrays          int             `gorm:"column:total_trays;not null;default:0"`
	TotalGrams          decimal.Decimal `gorm:"column:total_grams;type:numeric(14,4);not null;default:0"`
	PlantByDate         *time.Time      `gorm:"column:plant_by_date"`
	ExpectedHarvestDate *time.Time      `gorm:"column:expected_harvest_date"`

	Plans []CropPlan `gorm:"foreignKey:CropBatchID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
