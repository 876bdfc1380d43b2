package recurrence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/internal/notifications"
	"github.com/sproutlane/microfarm-backend/internal/orders"
	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
	"github.com/sproutlane/microfarm-backend/pkg/logger"
	"github.com/sproutlane/microfarm-backend/pkg/outbox"
)

// TemplateError records one template's failure without stopping the pass.
type TemplateError struct {
	OrderID uuid.UUID `json:"orderId"`
	Message string    `json:"message"`
}

// Summary reports a scheduler pass. Per-template errors are data, not a
// process failure.
type Summary struct {
	Processed int             `json:"processed"`
	Generated int             `json:"generated"`
	Errors    []TemplateError `json:"errors"`
}

// Service walks recurring templates and materializes due orders.
type Service interface {
	ProcessRecurringOrders(ctx context.Context) (*Summary, error)
	ActivateTemplate(ctx context.Context, templateID uuid.UUID) error
	DeactivateTemplate(ctx context.Context, templateID uuid.UUID) error
}

// ServiceParams configure the recurrence scheduler.
type ServiceParams struct {
	Repo            orders.Repository
	Materializer    Materializer
	TX              txRunner
	Outbox          outboxEmitter
	Notifier        notifications.Sink
	Logger          *logger.Logger
	DeliveryLagDays int
	Now             func() time.Time
}

type service struct {
	repo            orders.Repository
	materializer    Materializer
	tx              txRunner
	outbox          outboxEmitter
	notifier        notifications.Sink
	logg            *logger.Logger
	deliveryLagDays int
	now             func() time.Time
}

// NewService builds the scheduler with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Materializer == nil {
		return nil, fmt.Errorf("materializer required")
	}
	if params.TX == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notification sink required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	lag := params.DeliveryLagDays
	if lag <= 0 {
		lag = 1
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:            params.Repo,
		materializer:    params.Materializer,
		tx:              params.TX,
		outbox:          params.Outbox,
		notifier:        params.Notifier,
		logg:            params.Logger,
		deliveryLagDays: lag,
		now:             now,
	}, nil
}

// ProcessRecurringOrders runs one scheduler pass. Safe under overlapping
// invocations: the (template, delivery date) existence check is the
// idempotency key, so a retry after timeout cannot double-generate.
func (s *service) ProcessRecurringOrders(ctx context.Context) (*Summary, error) {
	templates, err := s.repo.FindTemplates(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recurring templates")
	}

	summary := &Summary{}
	today := s.now().UTC().Truncate(24 * time.Hour)

	for i := range templates {
		template := templates[i]
		summary.Processed++

		if !template.IsRecurringActive {
			continue
		}

		if template.RecurringEndDate != nil && template.RecurringEndDate.Before(today) {
			if err := s.deactivateExpired(ctx, &template); err != nil {
				summary.Errors = append(summary.Errors, TemplateError{OrderID: template.ID, Message: err.Error()})
			}
			continue
		}

		generated, err := s.processTemplate(ctx, &template, today)
		if err != nil {
			s.logg.Error(s.logg.WithOrderID(ctx, template.ID.String()), "template generation failed", err)
			summary.Errors = append(summary.Errors, TemplateError{OrderID: template.ID, Message: errorMessage(err)})
			continue
		}
		if generated {
			summary.Generated++
		}
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"processed": summary.Processed,
		"generated": summary.Generated,
		"errors":    len(summary.Errors),
	})
	s.logg.Info(logCtx, "recurring order pass complete")
	return summary, nil
}

// processTemplate generates at most one order for the template; reports
// whether one was created.
func (s *service) processTemplate(ctx context.Context, template *models.Order, today time.Time) (bool, error) {
	if template.RecurringFrequency == nil {
		return false, fmt.Errorf("template has no recurring frequency")
	}
	base := template.LastGeneratedAt
	if base == nil {
		base = template.RecurringStartDate
	}
	if base == nil {
		return false, fmt.Errorf("template has neither last generation nor start date")
	}

	next, err := NextGenerationDate(*base, *template.RecurringFrequency, template.RecurringInterval)
	if err != nil {
		return false, err
	}
	if next.After(today) {
		return false, nil
	}

	harvestDate := next
	deliveryDate := next.AddDate(0, 0, s.deliveryLagDays)

	// Duplicate-generation guard: skip silently, this is not an error.
	exists, err := s.repo.GeneratedOrderExists(ctx, template.ID, deliveryDate)
	if err != nil {
		return false, fmt.Errorf("check existing generation: %w", err)
	}
	if exists {
		return false, nil
	}

	order, err := s.materializer.Generate(ctx, template, harvestDate, deliveryDate)
	if err != nil {
		return false, err
	}

	following, err := NextGenerationDate(next, *template.RecurringFrequency, template.RecurringInterval)
	if err != nil {
		return false, err
	}
	if err := s.repo.UpdateOrder(ctx, template.ID, map[string]any{
		"last_generated_at":    next,
		"next_generation_date": following,
	}); err != nil {
		return false, fmt.Errorf("advance template schedule: %w", err)
	}

	s.notifier.Notify(ctx, enums.NotificationSuccess,
		"Recurring order generated",
		fmt.Sprintf("Order for delivery on %s generated from template", deliveryDate.Format("2006-01-02")),
		&order.ID)
	return true, nil
}

// deactivateExpired switches off a template past its end date and announces it.
func (s *service) deactivateExpired(ctx context.Context, template *models.Order) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateOrder(ctx, template.ID, map[string]any{
			"is_recurring_active": false,
		}); err != nil {
			return fmt.Errorf("deactivate template: %w", err)
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTemplateDeactivated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   template.ID,
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Data: map[string]any{
				"templateId": template.ID.String(),
				"endDate":    template.RecurringEndDate,
			},
		})
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(ctx, enums.NotificationWarning,
		"Recurring template deactivated",
		"Template reached its end date and will generate no further orders",
		&template.ID)
	return nil
}

func (s *service) ActivateTemplate(ctx context.Context, templateID uuid.UUID) error {
	return s.setTemplateActive(ctx, templateID, true)
}

func (s *service) DeactivateTemplate(ctx context.Context, templateID uuid.UUID) error {
	template, err := s.loadTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if !template.IsRecurringActive {
		return nil
	}
	return s.deactivateExpired(ctx, template)
}

func (s *service) setTemplateActive(ctx context.Context, templateID uuid.UUID, active bool) error {
	template, err := s.loadTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if template.IsRecurringActive == active {
		return nil
	}
	return s.repo.UpdateOrder(ctx, template.ID, map[string]any{
		"is_recurring_active": active,
	})
}

func (s *service) loadTemplate(ctx context.Context, templateID uuid.UUID) (*models.Order, error) {
	if templateID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "template id required")
	}
	template, err := s.repo.FindOrder(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "template not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load template")
	}
	if !template.IsTemplate() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order is not a recurring template")
	}
	return template, nil
}

func errorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
