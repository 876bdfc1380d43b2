package cron

import (
	"context"
	"fmt"

	"github.com/sproutlane/microfarm-backend/internal/recurrence"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
	"github.com/sproutlane/microfarm-backend/pkg/metrics"
)

// RecurringOrdersJobParams configure the recurring order generation job.
type RecurringOrdersJobParams struct {
	Logger    *logger.Logger
	Scheduler recurrence.Service
	Metrics   *metrics.CronJobMetrics
}

// NewRecurringOrdersJob builds the job that materializes orders from
// recurring templates once per cycle.
func NewRecurringOrdersJob(params RecurringOrdersJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Scheduler == nil {
		return nil, fmt.Errorf("recurrence scheduler required")
	}
	return &recurringOrdersJob{
		logg:      params.Logger,
		scheduler: params.Scheduler,
		metrics:   params.Metrics,
	}, nil
}

type recurringOrdersJob struct {
	logg      *logger.Logger
	scheduler recurrence.Service
	metrics   *metrics.CronJobMetrics
}

func (j *recurringOrdersJob) Name() string { return "recurring-orders" }

// Run executes a scheduler pass. Per-template failures are reported in the
// summary and logged here; only a failure of the pass itself fails the job.
func (j *recurringOrdersJob) Run(ctx context.Context) error {
	summary, err := j.scheduler.ProcessRecurringOrders(ctx)
	if err != nil {
		return fmt.Errorf("recurring orders pass: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddGenerated(j.Name(), summary.Generated)
	}
	for _, templateErr := range summary.Errors {
		errCtx := j.logg.WithFields(ctx, map[string]any{
			"template_id": templateErr.OrderID,
			"message":     templateErr.Message,
		})
		j.logg.Warn(errCtx, "template skipped with error")
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"processed": summary.Processed,
		"generated": summary.Generated,
		"errors":    len(summary.Errors),
	})
	j.logg.Info(logCtx, "recurring order generation complete")
	return nil
}
