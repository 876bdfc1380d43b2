package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/sproutlane/microfarm-backend/api/routes"
	"github.com/sproutlane/microfarm-backend/internal/audit"
	"github.com/sproutlane/microfarm-backend/internal/cropplans"
	"github.com/sproutlane/microfarm-backend/internal/events"
	"github.com/sproutlane/microfarm-backend/internal/notifications"
	"github.com/sproutlane/microfarm-backend/internal/orders"
	"github.com/sproutlane/microfarm-backend/internal/pricing"
	"github.com/sproutlane/microfarm-backend/internal/recurrence"
	"github.com/sproutlane/microfarm-backend/internal/statuses"
	"github.com/sproutlane/microfarm-backend/pkg/config"
	"github.com/sproutlane/microfarm-backend/pkg/db"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
	"github.com/sproutlane/microfarm-backend/pkg/migrate"
	"github.com/sproutlane/microfarm-backend/pkg/outbox"
	"github.com/sproutlane/microfarm-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := statuses.NewRegistry()
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	notificationsSvc, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:     ordersRepo,
		Registry: registry,
		TX:       dbClient,
		Outbox:   outboxSvc,
		Audit:    audit.NewRecorder(dbClient.DB()),
		Notifier: notificationsSvc,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	eventsRouter, err := events.NewRouter(ordersRepo, ordersSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create event router", err)
		os.Exit(1)
	}

	pricingResolver, err := pricing.NewResolver(pricing.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing resolver", err)
		os.Exit(1)
	}

	materializer, err := recurrence.NewMaterializer(recurrence.MaterializerParams{
		Repo:    ordersRepo,
		Pricing: pricingResolver,
		TX:      dbClient,
		Outbox:  outboxSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create materializer", err)
		os.Exit(1)
	}

	recurrenceSvc, err := recurrence.NewService(recurrence.ServiceParams{
		Repo:            ordersRepo,
		Materializer:    materializer,
		TX:              dbClient,
		Outbox:          outboxSvc,
		Notifier:        notificationsSvc,
		Logger:          logg,
		DeliveryLagDays: cfg.Recurrence.DeliveryLagDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create recurrence service", err)
		os.Exit(1)
	}

	cropPlansSvc, err := cropplans.NewService(cropplans.ServiceParams{
		Repo:   cropplans.NewRepository(dbClient.DB()),
		TX:     dbClient,
		Outbox: outboxSvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create crop plans service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Registry:      registry,
			OrdersRepo:    ordersRepo,
			OrdersSvc:     ordersSvc,
			EventsRouter:  eventsRouter,
			Recurrence:    recurrenceSvc,
			CropPlans:     cropPlansSvc,
			Notifications: notificationsSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
