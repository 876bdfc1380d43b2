package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/pkg/db/models"
	"github.com/sproutlane/microfarm-backend/pkg/enums"
)

// Entry captures one status change for the immutable audit trail.
type Entry struct {
	OrderID   uuid.UUID
	OldStatus enums.OrderStatusCode
	NewStatus enums.OrderStatusCode
	OldStage  enums.OrderStage
	NewStage  enums.OrderStage
	ActorID   *uuid.UUID
	Label     string
	Notes     *string
}

// Recorder persists audit entries. Entries are append-only.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderAuditEntry, error)
}

type recorder struct {
	db *gorm.DB
}

// NewRecorder builds the default audit recorder.
func NewRecorder(db *gorm.DB) Recorder {
	return &recorder{db: db}
}

func (r *recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	row := models.OrderAuditEntry{
		OrderID:   entry.OrderID,
		OldStatus: entry.OldStatus,
		NewStatus: entry.NewStatus,
		OldStage:  entry.OldStage,
		NewStage:  entry.NewStage,
		ActorID:   entry.ActorID,
		Label:     entry.Label,
		Notes:     entry.Notes,
	}
	return tx.WithContext(ctx).Create(&row).Error
}

func (r *recorder) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderAuditEntry, error) {
	var rows []models.OrderAuditEntry
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
