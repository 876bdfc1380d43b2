package models

import (
	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

// OrderStatus is one row of the fixed status catalog. Seeded once by migration
// and loaded into the in-memory registry at process start; never mutated at
// runtime.
type OrderStatus struct {
	Code      enums.OrderStatusCode `gorm:"column:code;type:text;primaryKey"`
	Name      string                `gorm:"column:name;not null"`
	Stage     enums.OrderStage      `gorm:"column:stage;type:text;not null"`
	IsFinal   bool                  `gorm:"column:is_final;not null;default:false"`
	SortOrder int                   `gorm:"column:sort_order;not null;default:0"`
}

// TableName overrides the default pluralization.
func (OrderStatus) TableName() string { return "order_statuses" }

// OrderStatusTransition is one directed edge of the transition graph.
type OrderStatusTransition struct {
	FromCode enums.OrderStatusCode `gorm:"column:from_code;type:text;primaryKey"`
	ToCode   enums.OrderStatusCode `gorm:"column:to_code;type:text;primaryKey"`
}

// TableName overrides the default pluralization.
func (OrderStatusTransition) TableName() string { return "order_status_transitions" }
