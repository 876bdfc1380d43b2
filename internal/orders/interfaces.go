package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	"github.com/sproutlane/microfarm-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and the rows the
// transition engine touches alongside them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	CreatePackagingAllocations(ctx context.Context, allocations []models.PackagingAllocation) error

	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)

	// UpdateOrderStatus performs a compare-and-swap on the status column;
	// reports false when the order was concurrently moved off fromStatus.
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, fromStatus, toStatus enums.OrderStatusCode, stage enums.OrderStage, extra map[string]any) (bool, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error

	FindCropsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Crop, error)
	UpdateCrop(ctx context.Context, cropID uuid.UUID, updates map[string]any) error

	FindInvoice(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, invoiceID uuid.UUID, updates map[string]any) error

	FindTemplates(ctx context.Context) ([]models.Order, error)
	GeneratedOrderExists(ctx context.Context, templateID uuid.UUID, deliveryDate time.Time) (bool, error)
}
