package recurrence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/internal/orders"
	"github.com/sproutlane/microfarm-backend/internal/pricing"
	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
	"github.com/sproutlane/microfarm-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Materializer turns a recurring template into a concrete order.
type Materializer interface {
	Generate(ctx context.Context, template *models.Order, harvestDate, deliveryDate time.Time) (*models.Order, error)
}

type materializer struct {
	repo    orders.Repository
	pricing pricing.Resolver
	tx      txRunner
	outbox  outboxEmitter
	now     func() time.Time
}

// MaterializerParams configure the order materializer.
type MaterializerParams struct {
	Repo    orders.Repository
	Pricing pricing.Resolver
	TX      txRunner
	Outbox  outboxEmitter
	Now     func() time.Time
}

// NewMaterializer builds the materializer with the required dependencies.
func NewMaterializer(params MaterializerParams) (Materializer, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing resolver required")
	}
	if params.TX == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &materializer{
		repo:    params.Repo,
		pricing: params.Pricing,
		tx:      params.TX,
		outbox:  params.Outbox,
		now:     now,
	}, nil
}

// GeneratedEvent is the outbox payload for a materialized order.
type GeneratedEvent struct {
	OrderID      string    `json:"orderId"`
	TemplateID   string    `json:"templateId"`
	CustomerID   string    `json:"customerId"`
	DeliveryDate time.Time `json:"deliveryDate"`
	HarvestDate  time.Time `json:"harvestDate"`
	ItemCount    int       `json:"itemCount"`
}

// Generate clones the template into a new pending order. Line item prices are
// re-resolved against the customer's current pricing; the template's snapshot
// prices are never copied. Quantities are copied verbatim, including zero and
// very large values.
func (m *materializer) Generate(ctx context.Context, template *models.Order, harvestDate, deliveryDate time.Time) (*models.Order, error) {
	if template == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template required")
	}
	if !template.IsTemplate() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is not a recurring template")
	}

	items := make([]models.OrderItem, 0, len(template.Items))
	for _, templateItem := range template.Items {
		price, err := m.pricing.PriceFor(ctx, template.CustomerID, templateItem.PriceVariationID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
				fmt.Sprintf("resolve price for variation %s", templateItem.PriceVariationID))
		}
		items = append(items, models.OrderItem{
			ProductID:        templateItem.ProductID,
			PriceVariationID: templateItem.PriceVariationID,
			Quantity:         templateItem.Quantity,
			UnitPrice:        price,
			Notes:            templateItem.Notes,
		})
	}

	packaging := make([]models.PackagingAllocation, 0, len(template.Packaging))
	for _, allocation := range template.Packaging {
		packaging = append(packaging, models.PackagingAllocation{
			PackagingType: allocation.PackagingType,
			Quantity:      allocation.Quantity,
			Notes:         allocation.Notes,
		})
	}

	templateID := template.ID
	harvest := harvestDate
	delivery := deliveryDate
	order := &models.Order{
		CustomerID:             template.CustomerID,
		Status:                 enums.OrderStatusPending,
		Stage:                  enums.StagePreProduction,
		OrderType:              template.OrderType,
		IsRecurring:            false,
		ParentRecurringOrderID: &templateID,
		DeliveryDate:           &delivery,
		HarvestDate:            &harvest,
		RequiresInvoice:        template.RequiresInvoice,
		BillingFrequency:       template.BillingFrequency,
		Notes:                  template.Notes,
	}

	err := m.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := m.repo.WithTx(tx)
		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for i := range items {
			items[i].OrderID = created.ID
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		for i := range packaging {
			packaging[i].OrderID = created.ID
		}
		if err := repo.CreatePackagingAllocations(ctx, packaging); err != nil {
			return fmt.Errorf("create packaging allocations: %w", err)
		}
		return m.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderGenerated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   created.ID,
			Version:       1,
			OccurredAt:    m.now().UTC(),
			Data: GeneratedEvent{
				OrderID:      created.ID.String(),
				TemplateID:   templateID.String(),
				CustomerID:   created.CustomerID.String(),
				DeliveryDate: delivery,
				HarvestDate:  harvest,
				ItemCount:    len(items),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	order.Items = items
	order.Packaging = packaging
	return order, nil
}
