package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sproutlane/microfarm-backend/api/controllers"
	"github.com/sproutlane/microfarm-backend/api/middleware"
	"github.com/sproutlane/microfarm-backend/internal/cropplans"
	"github.com/sproutlane/microfarm-backend/internal/events"
	"github.com/sproutlane/microfarm-backend/internal/notifications"
	"github.com/sproutlane/microfarm-backend/internal/orders"
	"github.com/sproutlane/microfarm-backend/internal/recurrence"
	"github.com/sproutlane/microfarm-backend/internal/statuses"
	"github.com/sproutlane/microfarm-backend/pkg/config"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         controllers.Pinger
	Registry      *statuses.Registry
	OrdersRepo    orders.Repository
	OrdersSvc     orders.Service
	EventsRouter  events.Router
	Recurrence    recurrence.Service
	CropPlans     cropplans.Service
	Notifications notifications.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/statuses", controllers.StatusCatalog(deps.Registry))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.OrdersRepo, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersRepo, deps.Registry, logg))
			r.Post("/{orderId}/events", controllers.IngestOrderEvent(deps.EventsRouter, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.RoleAdmin, enums.RoleManager))
				r.Post("/{orderId}/transition", controllers.TransitionOrder(deps.OrdersSvc, logg))
				r.Post("/bulk-transition", controllers.BulkTransitionOrders(deps.OrdersSvc, logg))
			})
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", controllers.ListTemplates(deps.OrdersRepo, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(logg, enums.RoleAdmin))
				r.Post("/{templateId}/activate", controllers.ActivateTemplate(deps.Recurrence, logg))
				r.Post("/{templateId}/deactivate", controllers.DeactivateTemplate(deps.Recurrence, logg))
				r.Post("/run", controllers.RunRecurrence(deps.Recurrence, logg))
			})
		})

		r.Route("/crop-plans", func(r chi.Router) {
			r.Use(middleware.RequireRoles(logg, enums.RoleAdmin, enums.RoleManager))
			r.Post("/{planId}/approve", controllers.ApproveCropPlan(deps.CropPlans, logg))
			r.Post("/{planId}/cancel", controllers.CancelCropPlan(deps.CropPlans, logg))
		})
		r.Post("/crop-batches/{batchId}/recalculate", controllers.RecalculateCropBatch(deps.CropPlans, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})
	})

	return r
}
