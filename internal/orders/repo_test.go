package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	"github.com/sproutlane/microfarm-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  stage TEXT NOT NULL DEFAULT 'pre_production',
  order_type TEXT NOT NULL DEFAULT 'standard',
  is_recurring INTEGER NOT NULL DEFAULT 0,
  is_recurring_active INTEGER NOT NULL DEFAULT 0,
  parent_recurring_order_id TEXT,
  recurring_frequency TEXT,
  recurring_interval INTEGER NOT NULL DEFAULT 1,
  recurring_start_date DATETIME,
  recurring_end_date DATETIME,
  next_generation_date DATETIME,
  last_generated_at DATETIME,
  delivery_date DATETIME,
  harvest_date DATETIME,
  requires_invoice INTEGER NOT NULL DEFAULT 0,
  invoice_id TEXT,
  consolidated_invoice_id TEXT,
  billing_frequency TEXT NOT NULL DEFAULT 'per_order',
  notes TEXT,
  confirmed_at DATETIME,
  cancelled_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  price_variation_id TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  unit_price NUMERIC NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	payments := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  method TEXT NOT NULL DEFAULT 'bank_transfer',
  received_at DATETIME NOT NULL,
  created_at DATETIME
);`
	crops := `
CREATE TABLE IF NOT EXISTS crops (
  id TEXT PRIMARY KEY,
  crop_plan_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  stage TEXT NOT NULL DEFAULT 'planted',
  cancel_reason TEXT,
  cancelled_at DATETIME,
  planted_at DATETIME,
  harvested_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	packaging := `
CREATE TABLE IF NOT EXISTS packaging_allocations (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  packaging_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(payments).Error)
	require.NoError(t, db.Exec(crops).Error)
	require.NoError(t, db.Exec(packaging).Error)
	return db
}

func createTestOrder(t *testing.T, db *gorm.DB, created time.Time, mutate func(*models.Order)) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Status:     enums.OrderStatusPending,
		Stage:      enums.StagePreProduction,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func createTestItem(t *testing.T, db *gorm.DB, orderID uuid.UUID, quantity, price string) {
	t.Helper()

	item := &models.OrderItem{
		ID:               uuid.New(),
		OrderID:          orderID,
		ProductID:        uuid.New(),
		PriceVariationID: uuid.New(),
		Quantity:         decimal.RequireFromString(quantity),
		UnitPrice:        decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(item).Error)
}

func TestRepositoryUpdateOrderStatus_compareAndSwap(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	order := createTestOrder(t, db, now, nil)

	confirmedAt := now.Truncate(time.Second)
	swapped, err := repo.UpdateOrderStatus(context.Background(), order.ID,
		enums.OrderStatusPending, enums.OrderStatusConfirmed, enums.StagePreProduction,
		map[string]any{"confirmed_at": confirmedAt})
	require.NoError(t, err)
	assert.True(t, swapped)

	var reloaded models.Order
	require.NoError(t, db.Where("id = ?", order.ID).First(&reloaded).Error)
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.Status)
	require.NotNil(t, reloaded.ConfirmedAt)
	assert.WithinDuration(t, confirmedAt, *reloaded.ConfirmedAt, time.Second)

	// The guard observes the stale status and refuses the write.
	swapped, err = repo.UpdateOrderStatus(context.Background(), order.ID,
		enums.OrderStatusPending, enums.OrderStatusCancelled, enums.StageFinal, nil)
	require.NoError(t, err)
	assert.False(t, swapped)

	require.NoError(t, db.Where("id = ?", order.ID).First(&reloaded).Error)
	assert.Equal(t, enums.OrderStatusConfirmed, reloaded.Status)
}

func TestRepositoryGeneratedOrderExists(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	template := createTestOrder(t, db, now, func(o *models.Order) {
		o.Status = enums.OrderStatusTemplate
		o.IsRecurring = true
		o.IsRecurringActive = true
	})
	delivery := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	createTestOrder(t, db, now, func(o *models.Order) {
		o.ParentRecurringOrderID = &template.ID
		o.DeliveryDate = &delivery
	})

	exists, err := repo.GeneratedOrderExists(context.Background(), template.ID, delivery)
	require.NoError(t, err)
	assert.True(t, exists)

	other := delivery.AddDate(0, 0, 7)
	exists, err = repo.GeneratedOrderExists(context.Background(), template.ID, other)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepositoryListOrders_paginationAndFilters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	oldest := createTestOrder(t, db, now.Add(-2*time.Hour), func(o *models.Order) {
		o.Status = enums.OrderStatusGrowing
		o.Stage = enums.StageProduction
	})
	middle := createTestOrder(t, db, now.Add(-time.Hour), nil)
	newest := createTestOrder(t, db, now, nil)

	list, err := repo.ListOrders(context.Background(), pagination.Params{Limit: 2}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, newest.ID, list.Items[0].ID)
	assert.Equal(t, middle.ID, list.Items[1].ID)
	require.NotEmpty(t, list.Cursor)

	second, err := repo.ListOrders(context.Background(), pagination.Params{Limit: 2, Cursor: list.Cursor}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, oldest.ID, second.Items[0].ID)
	assert.Empty(t, second.Cursor)

	growing := enums.OrderStatusGrowing
	filtered, err := repo.ListOrders(context.Background(), pagination.Params{Limit: 10}, OrderFilters{Status: &growing})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, oldest.ID, filtered.Items[0].ID)

	byCustomer, err := repo.ListOrders(context.Background(), pagination.Params{Limit: 10}, OrderFilters{CustomerID: &middle.CustomerID})
	require.NoError(t, err)
	require.Len(t, byCustomer.Items, 1)
	assert.Equal(t, middle.ID, byCustomer.Items[0].ID)
}

func TestRepositoryFindTemplatesExcludesGeneratedOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	template := createTestOrder(t, db, now.Add(-time.Hour), func(o *models.Order) {
		o.Status = enums.OrderStatusTemplate
		o.IsRecurring = true
		o.IsRecurringActive = true
	})
	createTestItem(t, db, template.ID, "5", "10.00")

	inactive := createTestOrder(t, db, now.Add(-30*time.Minute), func(o *models.Order) {
		o.Status = enums.OrderStatusTemplate
		o.IsRecurring = true
		o.IsRecurringActive = false
	})
	// Generated instances carry is_recurring from their template but point
	// back at it; they must never be scheduled themselves.
	createTestOrder(t, db, now, func(o *models.Order) {
		o.IsRecurring = true
		o.ParentRecurringOrderID = &template.ID
	})

	templates, err := repo.FindTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, template.ID, templates[0].ID)
	assert.Equal(t, inactive.ID, templates[1].ID)
	require.Len(t, templates[0].Items, 1)
	assert.True(t, templates[0].Items[0].Quantity.Equal(decimal.RequireFromString("5")))
}

func TestRepositoryCascadeHelpers(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	order := createTestOrder(t, db, now, nil)
	crop := &models.Crop{
		ID:         uuid.New(),
		CropPlanID: uuid.New(),
		OrderID:    order.ID,
		Stage:      enums.CropStageGrowing,
	}
	require.NoError(t, db.Create(crop).Error)

	crops, err := repo.FindCropsByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, crops, 1)

	require.NoError(t, repo.UpdateCrop(context.Background(), crop.ID, map[string]any{
		"stage":         enums.CropStageCancelled,
		"cancel_reason": "order cancelled",
	}))
	var reloaded models.Crop
	require.NoError(t, db.Where("id = ?", crop.ID).First(&reloaded).Error)
	assert.Equal(t, enums.CropStageCancelled, reloaded.Stage)
	require.NotNil(t, reloaded.CancelReason)
	assert.Equal(t, "order cancelled", *reloaded.CancelReason)
}
