package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

// Order is the central aggregate: a concrete customer order, a recurring
// template, or an instance generated from one. Exactly one of the three roles
// holds at any time (see IsTemplate / IsGenerated).
type Order struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID             `gorm:"column:customer_id;type:uuid;not null"`
	Status     enums.OrderStatusCode `gorm:"column:status;type:text;not null;default:'pending'"`
	Stage      enums.OrderStage      `gorm:"column:stage;type:text;not null;default:'pre_production'"`
	OrderType  string                `gorm:"column:order_type;not null;default:'standard'"`

	IsRecurring            bool                      `gorm:"column:is_recurring;not null;default:false"`
	IsRecurringActive      bool                      `gorm:"column:is_recurring_active;not null;default:false"`
	ParentRecurringOrderID *uuid.UUID                `gorm:"column:parent_recurring_order_id;type:uuid"`
	RecurringFrequency     *enums.RecurringFrequency `gorm:"column:recurring_frequency;type:text"`
	RecurringInterval      int                       `gorm:"column:recurring_interval;not null;default:1"`
	RecurringStartDate     *time.Time                `gorm:"column:recurring_start_date"`
	RecurringEndDate       *time.Time                `gorm:"column:recurring_end_date"`
	NextGenerationDate     *time.Time                `gorm:"column:next_generation_date"`
	LastGeneratedAt        *time.Time                `gorm:"column:last_generated_at"`

	DeliveryDate *time.Time `gorm:"column:delivery_date"`
	HarvestDate  *time.Time `gorm:"column:harvest_date"`

	RequiresInvoice       bool       `gorm:"column:requires_invoice;not null;default:false"`
	InvoiceID             *uuid.UUID `gorm:"column:invoice_id;type:uuid"`
	ConsolidatedInvoiceID *uuid.UUID `gorm:"column:consolidated_invoice_id;type:uuid"`
	BillingFrequency      string     `gorm:"column:billing_frequency;not null;default:'per_order'"`

	Notes *string `gorm:"column:notes"`

	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`

	Items     []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Packaging []PackagingAllocation `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CropPlans []CropPlan            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments  []Payment             `gorm:"foreignKey:OrderID"`
	Invoice   *Invoice              `gorm:"foreignKey:InvoiceID;references:ID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsTemplate reports whether the order is a recurring template.
func (o *Order) IsTemplate() bool {
	return o.Status == enums.OrderStatusTemplate && o.IsRecurring && o.ParentRecurringOrderID == nil
}

// IsGenerated reports whether the order was materialized from a template.
func (o *Order) IsGenerated() bool {
	return o.ParentRecurringOrderID != nil
}

// TotalAmount sums quantity times unit price over all line items. Prices may be
// negative (discount lines); quantities may be fractional for weight-based goods.
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return total
}

// PaidAmount sums the recorded payments against this order.
func (o *Order) PaidAmount() decimal.Decimal {
	total := decimal.Zero
	for _, payment := range o.Payments {
		total = total.Add(payment.Amount)
	}
	return total
}

// IsFullyPaid reports whether payments cover the order total.
func (o *Order) IsFullyPaid() bool {
	return o.PaidAmount().GreaterThanOrEqual(o.TotalAmount())
}
