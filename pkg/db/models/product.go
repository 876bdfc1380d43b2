package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a microgreen variety in the catalog.
type Product struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	GrowDays       int       `gorm:"column:grow_days;not null;default:10"`
	YieldGramsTray int       `gorm:"column:yield_grams_tray;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PriceVariation is one sellable unit of a product (e.g. 50g clamshell, 1kg
// bulk) carrying the list price.
type PriceVariation struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	UnitGrams decimal.Decimal `gorm:"column:unit_grams;type:numeric(14,4);not null;default:0"`
	ListPrice decimal.Decimal `gorm:"column:list_price;type:numeric(14,4);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerPrice overrides the list price of a variation for one customer.
type CustomerPrice struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID       uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:ux_customer_prices_customer_variation"`
	PriceVariationID uuid.UUID       `gorm:"column:price_variation_id;type:uuid;not null;uniqueIndex:ux_customer_prices_customer_variation"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
