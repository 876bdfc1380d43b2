package recurrence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/internal/orders"
	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
	"github.com/sproutlane/microfarm-backend/pkg/outbox"
	"github.com/sproutlane/microfarm-backend/pkg/pagination"
)

type stubTemplateRepo struct {
	templates       []models.Order
	created         []*models.Order
	createdItems    [][]models.OrderItem
	orderUpdates    map[uuid.UUID]map[string]any
	existingDeliver map[string]bool
	failCreate      bool
}

func newStubTemplateRepo() *stubTemplateRepo {
	return &stubTemplateRepo{
		orderUpdates:    make(map[uuid.UUID]map[string]any),
		existingDeliver: make(map[string]bool),
	}
}

func deliveryKey(templateID uuid.UUID, deliveryDate time.Time) string {
	return templateID.String() + "|" + deliveryDate.Format("2006-01-02")
}

func (s *stubTemplateRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubTemplateRepo) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	if s.failCreate {
		return nil, fmt.Errorf("insert rejected")
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.created = append(s.created, order)
	if order.ParentRecurringOrderID != nil && order.DeliveryDate != nil {
		s.existingDeliver[deliveryKey(*order.ParentRecurringOrderID, *order.DeliveryDate)] = true
	}
	return order, nil
}

func (s *stubTemplateRepo) CreateOrderItems(_ context.Context, items []models.OrderItem) error {
	s.createdItems = append(s.createdItems, items)
	return nil
}

func (s *stubTemplateRepo) CreatePackagingAllocations(context.Context, []models.PackagingAllocation) error {
	return nil
}

func (s *stubTemplateRepo) FindOrder(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	for i := range s.templates {
		if s.templates[i].ID == orderID {
			clone := s.templates[i]
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTemplateRepo) FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.FindOrder(ctx, orderID)
}

func (s *stubTemplateRepo) ListOrders(context.Context, pagination.Params, orders.OrderFilters) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (s *stubTemplateRepo) UpdateOrderStatus(context.Context, uuid.UUID, enums.OrderStatusCode, enums.OrderStatusCode, enums.OrderStage, map[string]any) (bool, error) {
	return true, nil
}

func (s *stubTemplateRepo) UpdateOrder(_ context.Context, orderID uuid.UUID, updates map[string]any) error {
	merged, ok := s.orderUpdates[orderID]
	if !ok {
		merged = make(map[string]any)
		s.orderUpdates[orderID] = merged
	}
	for column, value := range updates {
		merged[column] = value
	}
	for i := range s.templates {
		if s.templates[i].ID != orderID {
			continue
		}
		if active, ok := updates["is_recurring_active"].(bool); ok {
			s.templates[i].IsRecurringActive = active
		}
		if last, ok := updates["last_generated_at"].(time.Time); ok {
			s.templates[i].LastGeneratedAt = &last
		}
	}
	return nil
}

func (s *stubTemplateRepo) FindCropsByOrder(context.Context, uuid.UUID) ([]models.Crop, error) {
	return nil, nil
}

func (s *stubTemplateRepo) UpdateCrop(context.Context, uuid.UUID, map[string]any) error { return nil }

func (s *stubTemplateRepo) FindInvoice(context.Context, uuid.UUID) (*models.Invoice, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTemplateRepo) UpdateInvoice(context.Context, uuid.UUID, map[string]any) error {
	return nil
}

func (s *stubTemplateRepo) FindTemplates(context.Context) ([]models.Order, error) {
	templates := make([]models.Order, len(s.templates))
	copy(templates, s.templates)
	return templates, nil
}

func (s *stubTemplateRepo) GeneratedOrderExists(_ context.Context, templateID uuid.UUID, deliveryDate time.Time) (bool, error) {
	return s.existingDeliver[deliveryKey(templateID, deliveryDate)], nil
}

type stubPricing struct {
	prices map[uuid.UUID]decimal.Decimal
}

func (s *stubPricing) PriceFor(_ context.Context, _ uuid.UUID, priceVariationID uuid.UUID) (decimal.Decimal, error) {
	price, ok := s.prices[priceVariationID]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for variation %s", priceVariationID)
	}
	return price, nil
}

type nopTxRunner struct{}

func (nopTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type recordingOutbox struct {
	emitted []outbox.DomainEvent
}

func (s *recordingOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.emitted = append(s.emitted, event)
	return nil
}

type silentSink struct{}

func (silentSink) Notify(context.Context, enums.NotificationKind, string, string, *uuid.UUID) {}

type schedulerFixture struct {
	repo    *stubTemplateRepo
	pricing *stubPricing
	outbox  *recordingOutbox
	service Service
	now     time.Time
}

func newSchedulerFixture(t *testing.T, now time.Time) *schedulerFixture {
	t.Helper()
	repo := newStubTemplateRepo()
	priceStub := &stubPricing{prices: make(map[uuid.UUID]decimal.Decimal)}
	ob := &recordingOutbox{}
	logg := logger.New(logger.Options{ServiceName: "test"})

	mat, err := NewMaterializer(MaterializerParams{
		Repo:    repo,
		Pricing: priceStub,
		TX:      nopTxRunner{},
		Outbox:  ob,
		Now:     func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewMaterializer: %v", err)
	}

	svc, err := NewService(ServiceParams{
		Repo:            repo,
		Materializer:    mat,
		TX:              nopTxRunner{},
		Outbox:          ob,
		Notifier:        silentSink{},
		Logger:          logg,
		DeliveryLagDays: 1,
		Now:             func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &schedulerFixture{repo: repo, pricing: priceStub, outbox: ob, service: svc, now: now}
}

func weeklyTemplate(f *schedulerFixture, lastGenerated time.Time) *models.Order {
	frequency := enums.FrequencyWeekly
	last := lastGenerated
	template := models.Order{
		ID:                 uuid.New(),
		CustomerID:         uuid.New(),
		Status:             enums.OrderStatusTemplate,
		Stage:              enums.StagePreProduction,
		OrderType:          "standard",
		IsRecurring:        true,
		IsRecurringActive:  true,
		RecurringFrequency: &frequency,
		RecurringInterval:  1,
		LastGeneratedAt:    &last,
		BillingFrequency:   "per_order",
	}
	f.repo.templates = append(f.repo.templates, template)
	return &f.repo.templates[len(f.repo.templates)-1]
}

func TestSchedulerWeeklyScenario(t *testing.T) {
	// Template last generated 2025-01-01, pass on 2025-01-08: one order with
	// delivery 2025-01-09, harvest 2025-01-08, stale item price replaced by
	// the customer's current price.
	f := newSchedulerFixture(t, date(2025, time.January, 8))
	template := weeklyTemplate(f, date(2025, time.January, 1))

	variationID := uuid.New()
	template.Items = []models.OrderItem{{
		ProductID:        uuid.New(),
		PriceVariationID: variationID,
		Quantity:         decimal.RequireFromString("5"),
		UnitPrice:        decimal.RequireFromString("10"), // stale snapshot
	}}
	f.pricing.prices[variationID] = decimal.RequireFromString("12")

	summary, err := f.service.ProcessRecurringOrders(context.Background())
	if err != nil {
		t.Fatalf("ProcessRecurringOrders: %v", err)
	}
	if summary.Processed != 1 || summary.Generated != 1 || len(summary.Errors) != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(f.repo.created) != 1 {
		t.Fatalf("expected one generated order, got %d", len(f.repo.created))
	}

	generated := f.repo.created[0]
	if generated.Status != enums.OrderStatusPending || generated.IsRecurring {
		t.Fatalf("generated order must be a pending concrete order")
	}
	if generated.ParentRecurringOrderID == nil || *generated.ParentRecurringOrderID != template.ID {
		t.Fatalf("generated order must reference the template")
	}
	if !generated.DeliveryDate.Equal(date(2025, time.January, 9)) {
		t.Fatalf("expected delivery 2025-01-09, got %s", generated.DeliveryDate)
	}
	if !generated.HarvestDate.Equal(date(2025, time.January, 8)) {
		t.Fatalf("expected harvest 2025-01-08, got %s", generated.HarvestDate)
	}

	items := f.repo.createdItems[0]
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	if !items[0].UnitPrice.Equal(decimal.RequireFromString("12")) {
		t.Fatalf("expected re-resolved price 12, got %s", items[0].UnitPrice)
	}
	if !items[0].Quantity.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("quantity must be copied verbatim")
	}

	updates := f.repo.orderUpdates[template.ID]
	last, ok := updates["last_generated_at"].(time.Time)
	if !ok || !last.Equal(date(2025, time.January, 8)) {
		t.Fatalf("last_generated_at should advance to 2025-01-08, got %v", updates["last_generated_at"])
	}
	next, ok := updates["next_generation_date"].(time.Time)
	if !ok || !next.Equal(date(2025, time.January, 15)) {
		t.Fatalf("next_generation_date should be 2025-01-15, got %v", updates["next_generation_date"])
	}
}

func TestSchedulerDoubleRunIsIdempotent(t *testing.T) {
	f := newSchedulerFixture(t, date(2025, time.January, 8))
	template := weeklyTemplate(f, date(2025, time.January, 1))
	variationID := uuid.New()
	template.Items = []models.OrderItem{{
		PriceVariationID: variationID,
		ProductID:        uuid.New(),
		Quantity:         decimal.RequireFromString("1"),
	}}
	f.pricing.prices[variationID] = decimal.RequireFromString("4")

	first, err := f.service.ProcessRecurringOrders(context.Background())
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	if first.Generated != 1 {
		t.Fatalf("first pass should generate, got %+v", first)
	}

	// Simulate a retry where the template row was not advanced.
	f.repo.templates[0].LastGeneratedAt = ptrTime(date(2025, time.January, 1))

	second, err := f.service.ProcessRecurringOrders(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if second.Generated != 0 || len(second.Errors) != 0 {
		t.Fatalf("second pass must skip silently, got %+v", second)
	}
	if len(f.repo.created) != 1 {
		t.Fatalf("duplicate generation detected")
	}
}

func TestSchedulerSkipsFutureTemplates(t *testing.T) {
	f := newSchedulerFixture(t, date(2025, time.January, 5))
	weeklyTemplate(f, date(2025, time.January, 1))

	summary, err := f.service.ProcessRecurringOrders(context.Background())
	if err != nil {
		t.Fatalf("ProcessRecurringOrders: %v", err)
	}
	if summary.Processed != 1 || summary.Generated != 0 {
		t.Fatalf("future template must be skipped, got %+v", summary)
	}
}

func TestSchedulerDeactivatesExpiredTemplate(t *testing.T) {
	f := newSchedulerFixture(t, date(2025, time.June, 1))
	template := weeklyTemplate(f, date(2025, time.January, 1))
	template.RecurringEndDate = ptrTime(date(2025, time.March, 1))

	summary, err := f.service.ProcessRecurringOrders(context.Background())
	if err != nil {
		t.Fatalf("ProcessRecurringOrders: %v", err)
	}
	if summary.Generated != 0 {
		t.Fatalf("expired template must not generate, got %+v", summary)
	}
	if f.repo.templates[0].IsRecurringActive {
		t.Fatalf("expired template should be deactivated")
	}

	deactivated := false
	for _, event := range f.outbox.emitted {
		if event.EventType == enums.EventTemplateDeactivated {
			deactivated = true
		}
	}
	if !deactivated {
		t.Fatalf("expected template deactivated event")
	}

	// Subsequent passes see an inactive template and produce nothing.
	followup, err := f.service.ProcessRecurringOrders(context.Background())
	if err != nil {
		t.Fatalf("followup pass: %v", err)
	}
	if followup.Generated != 0 || len(f.repo.created) != 0 {
		t.Fatalf("deactivated template generated an order")
	}
}

func TestSchedulerIsolatesTemplateFailures(t *testing.T) {
	f := newSchedulerFixture(t, date(2025, time.January, 8))

	broken := weeklyTemplate(f, date(2025, time.January, 1))
	broken.Items = []models.OrderItem{{
		PriceVariationID: uuid.New(), // no price registered -> materialization fails
		ProductID:        uuid.New(),
		Quantity:         decimal.RequireFromString("1"),
	}}

	healthy := weeklyTemplate(f, date(2025, time.January, 1))
	variationID := uuid.New()
	healthy.Items = []models.OrderItem{{
		PriceVariationID: variationID,
		ProductID:        uuid.New(),
		Quantity:         decimal.RequireFromString("2"),
	}}
	f.pricing.prices[variationID] = decimal.RequireFromString("3")

	summary, err := f.service.ProcessRecurringOrders(context.Background())
	if err != nil {
		t.Fatalf("ProcessRecurringOrders: %v", err)
	}
	if summary.Processed != 2 || summary.Generated != 1 {
		t.Fatalf("expected one success despite failure, got %+v", summary)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].OrderID != broken.ID {
		t.Fatalf("expected broken template recorded in errors, got %+v", summary.Errors)
	}
}

func TestMaterializerRejectsNonTemplate(t *testing.T) {
	f := newSchedulerFixture(t, date(2025, time.January, 8))
	mat, err := NewMaterializer(MaterializerParams{
		Repo:    f.repo,
		Pricing: f.pricing,
		TX:      nopTxRunner{},
		Outbox:  f.outbox,
	})
	if err != nil {
		t.Fatalf("NewMaterializer: %v", err)
	}

	concrete := &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	if _, err := mat.Generate(context.Background(), concrete, f.now, f.now); err == nil {
		t.Fatalf("expected error for non-template order")
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
