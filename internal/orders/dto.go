package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

// OrderFilters narrows order listings.
type OrderFilters struct {
	Status        *enums.OrderStatusCode
	Stage         *enums.OrderStage
	CustomerID    *uuid.UUID
	TemplatesOnly bool
}

// OrderList is one page of orders plus the cursor for the next page.
type OrderList struct {
	Items  []models.Order `json:"items"`
	Cursor string         `json:"cursor"`
}

// TransitionContext carries who/why metadata for a status change.
type TransitionContext struct {
	Manual      bool
	Notes       *string
	ActorID     uuid.UUID
	SourceEvent *string
}

// Label names the origin of a transition for audit entries.
func (c TransitionContext) Label() string {
	if c.Manual {
		return "manual"
	}
	if c.SourceEvent != nil && *c.SourceEvent != "" {
		return *c.SourceEvent
	}
	return "system"
}

// BulkSkip reports an order pre-filtered out of a bulk transition.
type BulkSkip struct {
	OrderID uuid.UUID `json:"orderId"`
	Reason  string    `json:"reason"`
}

// BulkFailure reports an order whose transition failed.
type BulkFailure struct {
	OrderID uuid.UUID `json:"orderId"`
	Reason  string    `json:"reason"`
}

// BulkResult summarizes a bulk transition pass.
type BulkResult struct {
	Successful []uuid.UUID   `json:"successful"`
	Skipped    []BulkSkip    `json:"skipped"`
	Failed     []BulkFailure `json:"failed"`
}

// StatusChangedEvent is the outbox payload emitted on every transition.
type StatusChangedEvent struct {
	OrderID    uuid.UUID             `json:"orderId"`
	CustomerID uuid.UUID             `json:"customerId"`
	OldStatus  enums.OrderStatusCode `json:"oldStatus"`
	NewStatus  enums.OrderStatusCode `json:"newStatus"`
	OldStage   enums.OrderStage      `json:"oldStage"`
	NewStage   enums.OrderStage      `json:"newStage"`
	Label      string                `json:"label"`
	ChangedAt  time.Time             `json:"changedAt"`
}

// PackingStartedEvent is emitted once per entry into the packing status.
type PackingStartedEvent struct {
	OrderID    uuid.UUID `json:"orderId"`
	CustomerID uuid.UUID `json:"customerId"`
	StartedAt  time.Time `json:"startedAt"`
}

// InvoiceCancelledEvent is emitted when a cancellation cascades to an invoice.
type InvoiceCancelledEvent struct {
	InvoiceID   uuid.UUID `json:"invoiceId"`
	OrderID     uuid.UUID `json:"orderId"`
	CancelledAt time.Time `json:"cancelledAt"`
}

// InvoicePaidEvent is emitted when delivery marks a fully paid order's invoice.
type InvoicePaidEvent struct {
	InvoiceID uuid.UUID `json:"invoiceId"`
	OrderID   uuid.UUID `json:"orderId"`
	PaidAt    time.Time `json:"paidAt"`
}
