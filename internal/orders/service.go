package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/internal/audit"
	"github.com/sproutlane/microfarm-backend/internal/notifications"
	"github.com/sproutlane/microfarm-backend/internal/statuses"
	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
	"github.com/sproutlane/microfarm-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type auditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error
}

// Service is the status transition engine: the single write path for order
// status changes, whether triggered manually or by business events.
type Service interface {
	Transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatusCode, tc TransitionContext) (*models.Order, error)
	BulkTransition(ctx context.Context, orderIDs []uuid.UUID, target enums.OrderStatusCode, tc TransitionContext) (*BulkResult, error)
}

// ServiceParams configure the transition engine.
type ServiceParams struct {
	Repo     Repository
	Registry *statuses.Registry
	TX       txRunner
	Outbox   outboxEmitter
	Audit    auditRecorder
	Notifier notifications.Sink
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	registry *statuses.Registry
	tx       txRunner
	outbox   outboxEmitter
	audit    auditRecorder
	notifier notifications.Sink
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a transition engine with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("status registry required")
	}
	if params.TX == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notification sink required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		registry: params.Registry,
		tx:       params.TX,
		outbox:   params.Outbox,
		audit:    params.Audit,
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      now,
	}, nil
}

var errConcurrentTransition = errors.New("order status changed concurrently")

func (s *service) Transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatusCode, tc TransitionContext) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	targetDef, err := s.registry.Get(target)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	var oldStatus enums.OrderStatusCode
	var oldStage enums.OrderStage
	applied := false
	// Losers of a concurrent race re-validate against the now-current status
	// instead of overwriting it; one retry is enough since the second loser
	// sees a status that either still allows the edge or no longer does.
	for attempt := 0; attempt < 2; attempt++ {
		if err := s.registry.IsValidTransition(order.Status, target); err != nil {
			return nil, err
		}
		oldStatus = order.Status
		oldStage = order.Stage
		changedAt := s.now().UTC()

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			swapped, err := repo.UpdateOrderStatus(ctx, order.ID, oldStatus, target, targetDef.Stage, s.stampColumns(order, target, changedAt))
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
			if !swapped {
				return errConcurrentTransition
			}
			if err := s.audit.Record(ctx, tx, audit.Entry{
				OrderID:   order.ID,
				OldStatus: oldStatus,
				NewStatus: target,
				OldStage:  oldStage,
				NewStage:  targetDef.Stage,
				ActorID:   actorID(tc),
				Label:     tc.Label(),
				Notes:     tc.Notes,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record audit entry")
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderStatusChanged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				OccurredAt:    changedAt,
				Actor:         buildActor(tc),
				Data: StatusChangedEvent{
					OrderID:    order.ID,
					CustomerID: order.CustomerID,
					OldStatus:  oldStatus,
					NewStatus:  target,
					OldStage:   oldStage,
					NewStage:   targetDef.Stage,
					Label:      tc.Label(),
					ChangedAt:  changedAt,
				},
			})
		})
		if err == nil {
			s.applyStamps(order, target, changedAt)
			order.Status = target
			order.Stage = targetDef.Stage
			applied = true
			break
		}
		if errors.Is(err, errConcurrentTransition) {
			order, err = s.repo.FindOrder(ctx, orderID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
			}
			continue
		}
		return nil, err
	}
	if !applied {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently, retry")
	}

	s.applySideEffects(ctx, order, oldStatus, tc)

	s.notifier.Notify(ctx, enums.NotificationSuccess,
		"Order status updated",
		fmt.Sprintf("Order moved from %s to %s", oldStatus, target),
		&order.ID)

	return order, nil
}

func (s *service) BulkTransition(ctx context.Context, orderIDs []uuid.UUID, target enums.OrderStatusCode, tc TransitionContext) (*BulkResult, error) {
	if _, err := s.registry.Get(target); err != nil {
		return nil, err
	}

	result := &BulkResult{}
	for _, orderID := range orderIDs {
		order, err := s.repo.FindOrder(ctx, orderID)
		if err != nil {
			reason := "load order failed"
			if errors.Is(err, gorm.ErrRecordNotFound) {
				reason = "order not found"
			}
			result.Failed = append(result.Failed, BulkFailure{OrderID: orderID, Reason: reason})
			continue
		}
		if order.IsTemplate() {
			result.Skipped = append(result.Skipped, BulkSkip{OrderID: orderID, Reason: "template order"})
			continue
		}
		if def, err := s.registry.Get(order.Status); err == nil && def.IsFinal {
			result.Skipped = append(result.Skipped, BulkSkip{OrderID: orderID, Reason: fmt.Sprintf("already in final status %s", order.Status)})
			continue
		}

		if _, err := s.Transition(ctx, orderID, target, tc); err != nil {
			reason := err.Error()
			if typed := pkgerrors.As(err); typed != nil {
				reason = typed.Message()
			}
			result.Failed = append(result.Failed, BulkFailure{OrderID: orderID, Reason: reason})
			continue
		}
		result.Successful = append(result.Successful, orderID)
	}
	return result, nil
}

// stampColumns returns the timestamp columns written atomically with the
// status change itself.
func (s *service) stampColumns(order *models.Order, target enums.OrderStatusCode, changedAt time.Time) map[string]any {
	switch target {
	case enums.OrderStatusConfirmed:
		if order.ConfirmedAt == nil {
			return map[string]any{"confirmed_at": changedAt}
		}
	case enums.OrderStatusCancelled:
		return map[string]any{"cancelled_at": changedAt}
	case enums.OrderStatusDelivered:
		return map[string]any{"delivered_at": changedAt}
	}
	return nil
}

func (s *service) applyStamps(order *models.Order, target enums.OrderStatusCode, changedAt time.Time) {
	switch target {
	case enums.OrderStatusConfirmed:
		if order.ConfirmedAt == nil {
			order.ConfirmedAt = &changedAt
		}
	case enums.OrderStatusCancelled:
		order.CancelledAt = &changedAt
	case enums.OrderStatusDelivered:
		order.DeliveredAt = &changedAt
	}
}

// applySideEffects runs the status-specific cascades. Each one is isolated:
// a failure is logged and reported, never rolled back into the already
// committed status change.
func (s *service) applySideEffects(ctx context.Context, order *models.Order, oldStatus enums.OrderStatusCode, tc TransitionContext) {
	var err error
	switch order.Status {
	case enums.OrderStatusCancelled:
		err = s.cascadeCancellation(ctx, order)
	case enums.OrderStatusDelivered:
		err = s.settleDeliveredInvoice(ctx, order)
	case enums.OrderStatusPacking:
		if oldStatus != enums.OrderStatusPacking {
			err = s.emitPackingStarted(ctx, order, tc)
		}
	case enums.OrderStatusHarvesting:
		err = s.advanceReadyCrops(ctx, order)
	}
	if err != nil {
		s.logg.Error(ctx, "transition side effect failed", err)
		s.notifier.Notify(ctx, enums.NotificationWarning,
			"Order side effect failed",
			fmt.Sprintf("Order reached %s but a follow-up action failed: %v", order.Status, err),
			&order.ID)
	}
}

// cascadeCancellation cancels every non-harvested crop on the order and a
// pending invoice if one exists. Paid invoices are left untouched.
func (s *service) cascadeCancellation(ctx context.Context, order *models.Order) error {
	now := s.now().UTC()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		crops, err := repo.FindCropsByOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("load crops for cancellation: %w", err)
		}
		for _, crop := range crops {
			if crop.IsHarvested() || crop.Stage == enums.CropStageCancelled {
				continue
			}
			updates := map[string]any{
				"stage":         enums.CropStageCancelled,
				"cancelled_at":  now,
				"cancel_reason": "order cancelled",
			}
			if err := repo.UpdateCrop(ctx, crop.ID, updates); err != nil {
				return fmt.Errorf("cancel crop %s: %w", crop.ID, err)
			}
		}

		if order.InvoiceID == nil {
			return nil
		}
		invoice, err := repo.FindInvoice(ctx, *order.InvoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load invoice: %w", err)
		}
		if invoice.Status != enums.InvoiceStatusPending {
			return nil
		}
		if err := repo.UpdateInvoice(ctx, invoice.ID, map[string]any{
			"status":       enums.InvoiceStatusCancelled,
			"cancelled_at": now,
		}); err != nil {
			return fmt.Errorf("cancel invoice: %w", err)
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInvoiceCancelled,
			AggregateType: enums.AggregateInvoice,
			AggregateID:   invoice.ID,
			Version:       1,
			OccurredAt:    now,
			Data: InvoiceCancelledEvent{
				InvoiceID:   invoice.ID,
				OrderID:     order.ID,
				CancelledAt: now,
			},
		})
	})
}

// settleDeliveredInvoice marks the invoice paid when the delivered order is
// fully covered by recorded payments.
func (s *service) settleDeliveredInvoice(ctx context.Context, order *models.Order) error {
	if order.InvoiceID == nil || !order.IsFullyPaid() {
		return nil
	}
	now := s.now().UTC()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invoice, err := repo.FindInvoice(ctx, *order.InvoiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load invoice: %w", err)
		}
		if invoice.Status != enums.InvoiceStatusPending {
			return nil
		}
		if err := repo.UpdateInvoice(ctx, invoice.ID, map[string]any{
			"status":  enums.InvoiceStatusPaid,
			"paid_at": now,
		}); err != nil {
			return fmt.Errorf("mark invoice paid: %w", err)
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInvoicePaid,
			AggregateType: enums.AggregateInvoice,
			AggregateID:   invoice.ID,
			Version:       1,
			OccurredAt:    now,
			Data: InvoicePaidEvent{
				InvoiceID: invoice.ID,
				OrderID:   order.ID,
				PaidAt:    now,
			},
		})
	})
}

// emitPackingStarted queues the packing.started event exactly once per entry
// into packing; EmitIfNotExists absorbs redelivery.
func (s *service) emitPackingStarted(ctx context.Context, order *models.Order, tc TransitionContext) error {
	now := s.now().UTC()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPackingStarted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			OccurredAt:    now,
			Actor:         buildActor(tc),
			Data: PackingStartedEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				StartedAt:  now,
			},
		})
	})
}

// advanceReadyCrops moves every ready-to-harvest crop on the order into the
// harvesting stage.
func (s *service) advanceReadyCrops(ctx context.Context, order *models.Order) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		crops, err := repo.FindCropsByOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("load crops for harvest: %w", err)
		}
		for _, crop := range crops {
			if crop.IsHarvested() || !crop.IsReadyToHarvest() {
				continue
			}
			if err := repo.UpdateCrop(ctx, crop.ID, map[string]any{
				"stage": enums.CropStageHarvesting,
			}); err != nil {
				return fmt.Errorf("advance crop %s: %w", crop.ID, err)
			}
		}
		return nil
	})
}

func actorID(tc TransitionContext) *uuid.UUID {
	if tc.ActorID == uuid.Nil {
		return nil
	}
	id := tc.ActorID
	return &id
}

func buildActor(tc TransitionContext) *outbox.ActorRef {
	if tc.ActorID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: tc.ActorID, Role: tc.Label()}
}
