package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/sproutlane/microfarm-backend/internal/orders"
	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
)

// Outcome reports what the router did with an event.
type Outcome string

const (
	// OutcomeTransitioned means the event advanced the order.
	OutcomeTransitioned Outcome = "transitioned"
	// OutcomeNoOp means a guard or the transition graph absorbed the event.
	// This is backpressure, not an error: the order waits for the next
	// satisfying event.
	OutcomeNoOp Outcome = "no_op"
)

// Router maps production and payment events onto status transitions.
type Router interface {
	HandleBusinessEvent(ctx context.Context, orderID uuid.UUID, event enums.BusinessEventType, payload json.RawMessage) (Outcome, error)
}

type guardFn func(order *models.Order) bool

// rule is one row of the declarative event table: which status the event
// targets and the predicate that must hold before the transition is attempted.
type rule struct {
	target enums.OrderStatusCode
	guard  guardFn
}

var rules = map[enums.BusinessEventType]rule{
	enums.BusinessEventCropPlanted: {
		target: enums.OrderStatusGrowing,
		guard:  allPlansPlanted,
	},
	enums.BusinessEventCropsReady: {
		target: enums.OrderStatusReadyToHarvest,
		guard:  allCropsReady,
	},
	enums.BusinessEventHarvestCompleted: {
		target: enums.OrderStatusPacking,
		guard:  func(*models.Order) bool { return true },
	},
	enums.BusinessEventPackingCompleted: {
		target: enums.OrderStatusReadyForDelivery,
		guard: func(order *models.Order) bool {
			return !order.RequiresInvoice || order.IsFullyPaid()
		},
	},
	enums.BusinessEventPaymentReceived: {
		target: enums.OrderStatusReadyForDelivery,
		guard: func(order *models.Order) bool {
			return order.Status == enums.OrderStatusPacking && order.IsFullyPaid()
		},
	},
}

// allPlansPlanted holds when every live crop plan on the order has at least
// one live crop. Crops only exist once planting is recorded, so a plan with no
// crops has not been planted. An order without a single live plan holds too:
// the event asserts planting happened, the rows say otherwise.
func allPlansPlanted(order *models.Order) bool {
	livePlans := 0
	for _, plan := range order.CropPlans {
		if plan.Status == enums.CropPlanStatusCancelled {
			continue
		}
		livePlans++
		planted := false
		for _, crop := range plan.Crops {
			if crop.CancelledAt == nil {
				planted = true
				break
			}
		}
		if !planted {
			return false
		}
	}
	return livePlans > 0
}

// allCropsReady holds when every live crop on the order has reached
// ready_to_harvest or beyond, and at least one such crop exists.
func allCropsReady(order *models.Order) bool {
	ready := 0
	for _, plan := range order.CropPlans {
		if plan.Status == enums.CropPlanStatusCancelled {
			continue
		}
		for _, crop := range plan.Crops {
			if crop.CancelledAt != nil {
				continue
			}
			switch crop.Stage {
			case enums.CropStageReadyToHarvest, enums.CropStageHarvesting, enums.CropStageHarvested:
				ready++
			default:
				return false
			}
		}
	}
	return ready > 0
}

type orderReader interface {
	FindOrderDetail(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type router struct {
	reader orderReader
	engine orders.Service
	logg   *logger.Logger
}

// NewRouter builds the event router on top of the transition engine.
func NewRouter(reader orderReader, engine orders.Service, logg *logger.Logger) (Router, error) {
	if reader == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if engine == nil {
		return nil, fmt.Errorf("transition engine required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &router{reader: reader, engine: engine, logg: logg}, nil
}

func (r *router) HandleBusinessEvent(ctx context.Context, orderID uuid.UUID, event enums.BusinessEventType, payload json.RawMessage) (Outcome, error) {
	if orderID == uuid.Nil {
		return OutcomeNoOp, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	mapped, ok := rules[event]
	if !ok {
		return OutcomeNoOp, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown business event %q", event)
	}

	order, err := r.reader.FindOrderDetail(ctx, orderID)
	if err != nil {
		return OutcomeNoOp, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order for event")
	}

	ctx = r.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"event":    event.String(),
	})

	if !mapped.guard(order) {
		r.logg.Info(ctx, "event guard not satisfied, holding order")
		return OutcomeNoOp, nil
	}

	source := event.String()
	_, err = r.engine.Transition(ctx, order.ID, mapped.target, orders.TransitionContext{
		Manual:      false,
		SourceEvent: &source,
	})
	if err != nil {
		// Redelivered events land here: the graph has no same-status edge,
		// so the registry rejects the repeat and the event becomes a no-op.
		if pkgerrors.Is(err, pkgerrors.CodeInvalidTransition) {
			r.logg.Info(ctx, "event transition not applicable, ignoring")
			return OutcomeNoOp, nil
		}
		return OutcomeNoOp, err
	}
	return OutcomeTransitioned, nil
}
