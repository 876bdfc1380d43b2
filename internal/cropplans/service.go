package cropplans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
	"github.com/sproutlane/microfarm-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service maintains crop plan aggregation and the plan approval/cancellation
// gating rules. It performs arithmetic consistency only; authorization is the
// caller's concern.
type Service interface {
	RecalculateAggregation(ctx context.Context, batchID uuid.UUID) (*models.CropBatch, error)
	ApprovePlan(ctx context.Context, planID uuid.UUID) error
	CancelPlan(ctx context.Context, planID uuid.UUID, reason string) error
}

// ServiceParams configure the crop plan service.
type ServiceParams struct {
	Repo   Repository
	TX     txRunner
	Outbox outboxEmitter
	Now    func() time.Time
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxEmitter
	now    func() time.Time
}

// NewService builds the crop plan service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("crop plan repository required")
	}
	if params.TX == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   params.Repo,
		tx:     params.TX,
		outbox: params.Outbox,
		now:    now,
	}, nil
}

// RecalculateAggregation resums trays and grams over the batch's plans.
// Cancelled plans no longer contribute to the production run.
func (s *service) RecalculateAggregation(ctx context.Context, batchID uuid.UUID) (*models.CropBatch, error) {
	if batchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch id required")
	}
	batch, err := s.repo.FindBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "crop batch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load crop batch")
	}
	plans, err := s.repo.FindPlansByBatch(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load batch plans")
	}

	totalTrays := 0
	totalGrams := decimal.Zero
	var plantBy *time.Time
	var expectedHarvest *time.Time
	for i := range plans {
		plan := plans[i]
		if plan.Status == enums.CropPlanStatusCancelled {
			continue
		}
		totalTrays += plan.TraysNeeded
		totalGrams = totalGrams.Add(plan.GramsNeeded)
		if plan.PlantByDate != nil && (plantBy == nil || plan.PlantByDate.Before(*plantBy)) {
			plantBy = plan.PlantByDate
		}
		if plan.ExpectedHarvestDate != nil && (expectedHarvest == nil || plan.ExpectedHarvestDate.After(*expectedHarvest)) {
			expectedHarvest = plan.ExpectedHarvestDate
		}
	}

	updates := map[string]any{
		"total_trays": totalTrays,
		"total_grams": totalGrams,
	}
	if plantBy != nil {
		updates["plant_by_date"] = *plantBy
	}
	if expectedHarvest != nil {
		updates["expected_harvest_date"] = *expectedHarvest
	}
	if err := s.repo.UpdateBatch(ctx, batchID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update batch totals")
	}

	batch.TotalTrays = totalTrays
	batch.TotalGrams = totalGrams
	batch.PlantByDate = plantBy
	batch.ExpectedHarvestDate = expectedHarvest
	return batch, nil
}

// ApprovePlan activates a draft plan and brings its crops into existence, one
// tray per crop, awaiting the planting event.
func (s *service) ApprovePlan(ctx context.Context, planID uuid.UUID) error {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Status != enums.CropPlanStatusDraft {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "only draft plans can be approved, plan is %s", plan.Status)
	}

	crops := make([]models.Crop, 0, plan.TraysNeeded)
	for i := 0; i < plan.TraysNeeded; i++ {
		crops = append(crops, models.Crop{
			CropPlanID: plan.ID,
			OrderID:    plan.OrderID,
			Stage:      enums.CropStagePlanted,
		})
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdatePlan(ctx, plan.ID, map[string]any{
			"status": enums.CropPlanStatusActive,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate plan")
		}
		if err := repo.CreateCrops(ctx, crops); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create crops")
		}
		return nil
	})
}

// CancelPlan cancels a plan that has no attached crops yet.
func (s *service) CancelPlan(ctx context.Context, planID uuid.UUID, reason string) error {
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return err
	}
	if plan.Status == enums.CropPlanStatusCancelled {
		return nil
	}

	count, err := s.repo.CountCropsByPlan(ctx, planID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count plan crops")
	}
	if count > 0 {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "plan has %d crops attached and cannot be cancelled", count)
	}

	now := s.now().UTC()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdatePlan(ctx, plan.ID, map[string]any{
			"status":        enums.CropPlanStatusCancelled,
			"cancel_reason": reason,
			"cancelled_at":  now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel plan")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCropPlanCancelled,
			AggregateType: enums.AggregateCropPlan,
			AggregateID:   plan.ID,
			Version:       1,
			OccurredAt:    now,
			Data: map[string]any{
				"planId":  plan.ID.String(),
				"orderId": plan.OrderID.String(),
				"reason":  reason,
			},
		})
	})
}

func (s *service) loadPlan(ctx context.Context, planID uuid.UUID) (*models.CropPlan, error) {
	if planID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id required")
	}
	plan, err := s.repo.FindPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "crop plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load crop plan")
	}
	return plan, nil
}
