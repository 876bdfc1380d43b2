package cropplans

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/pkg/db/models"
)

// Repository defines persistence operations for crop plans and batches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindPlan(ctx context.Context, planID uuid.UUID) (*models.CropPlan, error)
	FindPlansByBatch(ctx context.Context, batchID uuid.UUID) ([]models.CropPlan, error)
	FindBatch(ctx context.Context, batchID uuid.UUID) (*models.CropBatch, error)
	UpdatePlan(ctx context.Context, planID uuid.UUID, updates map[string]any) error
	UpdateBatch(ctx context.Context, batchID uuid.UUID, updates map[string]any) error
	CountCropsByPlan(ctx context.Context, planID uuid.UUID) (int64, error)
	CreateCrops(ctx context.Context, crops []models.Crop) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a crop plan repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindPlan(ctx context.Context, planID uuid.UUID) (*models.CropPlan, error) {
	var plan models.CropPlan
	err := r.db.WithContext(ctx).
		Where("id = ?", planID).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) FindPlansByBatch(ctx context.Context, batchID uuid.UUID) ([]models.CropPlan, error) {
	var plans []models.CropPlan
	err := r.db.WithContext(ctx).
		Where("crop_batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) FindBatch(ctx context.Context, batchID uuid.UUID) (*models.CropBatch, error) {
	var batch models.CropBatch
	err := r.db.WithContext(ctx).
		Where("id = ?", batchID).
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) UpdatePlan(ctx context.Context, planID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.CropPlan{}).
		Where("id = ?", planID).
		Updates(updates).Error
}

func (r *repository) UpdateBatch(ctx context.Context, batchID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.CropBatch{}).
		Where("id = ?", batchID).
		Updates(updates).Error
}

func (r *repository) CountCropsByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Crop{}).
		Where("crop_plan_id = ?", planID).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateCrops(ctx context.Context, crops []models.Crop) error {
	if len(crops) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&crops).Error
}
