package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

// Crop is one physical tray moving through the grow room.
type Crop struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CropPlanID   uuid.UUID       `gorm:"column:crop_plan_id;type:uuid;not null"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	Stage        enums.CropStage `gorm:"column:stage;type:text;not null;default:'planted'"`
	PlantedAt    *time.Time      `gorm:"column:planted_at"`
	HarvestedAt  *time.Time      `gorm:"column:harvested_at"`
	CancelledAt  *time.Time      `gorm:"column:cancelled_at"`
	CancelReason *string         `gorm:"column:cancel_reason"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// IsHarvested reports whether the tray has already been cut.
func (c Crop) IsHarvested() bool {
	return c.Stage == enums.CropStageHarvested || c.HarvestedAt != nil
}

// IsReadyToHarvest reports whether the tray can be advanced to harvesting.
func (c Crop) IsReadyToHarvest() bool {
	return c.Stage == enums.CropStageReadyToHarvest
}
