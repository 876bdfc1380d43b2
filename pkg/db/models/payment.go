package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment records money received against an order. Owned by the payment
// subsystem; the lifecycle engine only reads the amounts.
type Payment struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(14,4);not null"`
	Method     string          `gorm:"column:method;not null;default:'bank_transfer'"`
	ReceivedAt time.Time       `gorm:"column:received_at;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
