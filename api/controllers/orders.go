package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/api/middleware"
	"github.com/sproutlane/microfarm-backend/api/responses"
	"github.com/sproutlane/microfarm-backend/api/validators"
	"github.com/sproutlane/microfarm-backend/internal/events"
	internalorders "github.com/sproutlane/microfarm-backend/internal/orders"
	"github.com/sproutlane/microfarm-backend/internal/statuses"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
	"github.com/sproutlane/microfarm-backend/pkg/pagination"
)

// ListOrders returns a filtered, cursor-paginated page of orders.
func ListOrders(repo internalorders.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := repo.ListOrders(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type orderDetailResponse struct {
	Order       any                     `json:"order"`
	AllowedNext []enums.OrderStatusCode `json:"allowedNext"`
}

// OrderDetail returns one order with items, packaging, crop plans, payments,
// and the statuses it may legally move to.
func OrderDetail(repo internalorders.Repository, registry *statuses.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := repo.FindOrderDetail(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order"))
			return
		}

		responses.WriteSuccess(w, orderDetailResponse{
			Order:       order,
			AllowedNext: registry.AllowedNext(order.Status),
		})
	}
}

type transitionRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

// TransitionOrder applies a manual status change to one order.
func TransitionOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatusCode(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeUnknownStatus, "unknown order status").WithDetails(map[string]any{"status": req.Status}))
			return
		}

		order, err := svc.Transition(r.Context(), orderID, target, internalorders.TransitionContext{
			Manual:  true,
			Notes:   req.Notes,
			ActorID: middleware.UserID(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type bulkTransitionRequest struct {
	OrderIDs []uuid.UUID `json:"orderIds" validate:"required,min=1,max=200"`
	Status   string      `json:"status" validate:"required"`
	Notes    *string     `json:"notes" validate:"omitempty,max=2000"`
}

// BulkTransitionOrders applies one target status to many orders, reporting
// per-order outcomes instead of failing the batch.
func BulkTransitionOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkTransitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatusCode(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeUnknownStatus, "unknown order status").WithDetails(map[string]any{"status": req.Status}))
			return
		}

		result, err := svc.BulkTransition(r.Context(), req.OrderIDs, target, internalorders.TransitionContext{
			Manual:  true,
			Notes:   req.Notes,
			ActorID: middleware.UserID(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type orderEventRequest struct {
	Event   string          `json:"event" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

type orderEventResponse struct {
	Outcome events.Outcome `json:"outcome"`
}

// IngestOrderEvent feeds a production or payment event into the router. The
// router decides whether it advances the order or is absorbed as a no-op.
func IngestOrderEvent(router events.Router, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req orderEventRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		event, err := enums.ParseBusinessEventType(req.Event)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown business event").WithDetails(map[string]any{"event": req.Event}))
			return
		}

		outcome, err := router.HandleBusinessEvent(r.Context(), orderID, event, req.Payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderEventResponse{Outcome: outcome})
	}
}

func buildOrderFilters(r *http.Request) (internalorders.OrderFilters, error) {
	filters := internalorders.OrderFilters{}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatusCode(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").WithDetails(map[string]any{"status": raw})
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("stage")); raw != "" {
		stage, err := enums.ParseOrderStage(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid stage filter").WithDetails(map[string]any{"stage": raw})
		}
		filters.Stage = &stage
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("customerId")); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer id filter").WithDetails(map[string]any{"customerId": raw})
		}
		filters.CustomerID = &customerID
	}

	templatesOnly, err := validators.ParseQueryBool(r, "templatesOnly")
	if err != nil {
		return filters, err
	}
	filters.TemplatesOnly = templatesOnly
	return filters, nil
}
