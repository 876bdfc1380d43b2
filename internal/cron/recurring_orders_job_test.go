package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/sproutlane/microfarm-backend/internal/recurrence"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
)

type fakeScheduler struct {
	summary *recurrence.Summary
	err     error
	calls   int
}

func (f *fakeScheduler) ProcessRecurringOrders(context.Context) (*recurrence.Summary, error) {
	f.calls++
	return f.summary, f.err
}

func (f *fakeScheduler) ActivateTemplate(context.Context, uuid.UUID) error   { return nil }
func (f *fakeScheduler) DeactivateTemplate(context.Context, uuid.UUID) error { return nil }

func TestRecurringOrdersJobSucceedsDespiteTemplateErrors(t *testing.T) {
	scheduler := &fakeScheduler{
		summary: &recurrence.Summary{
			Processed: 3,
			Generated: 2,
			Errors: []recurrence.TemplateError{
				{OrderID: uuid.New(), Message: "price variation not found"},
			},
		},
	}
	job, err := NewRecurringOrdersJob(RecurringOrdersJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "cron-test"}),
		Scheduler: scheduler,
	})
	if err != nil {
		t.Fatalf("NewRecurringOrdersJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("per-template errors must not fail the job: %v", err)
	}
	if scheduler.calls != 1 {
		t.Fatalf("expected one scheduler pass, got %d", scheduler.calls)
	}
}

func TestRecurringOrdersJobFailsWhenPassFails(t *testing.T) {
	scheduler := &fakeScheduler{err: errors.New("db unavailable")}
	job, err := NewRecurringOrdersJob(RecurringOrdersJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "cron-test"}),
		Scheduler: scheduler,
	})
	if err != nil {
		t.Fatalf("NewRecurringOrdersJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error when the scheduler pass fails")
	}
}
