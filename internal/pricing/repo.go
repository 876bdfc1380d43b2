package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sproutlane/microfarm-backend/pkg/db/models"
)

// Repository defines the reads the resolver depends on.
type Repository interface {
	FindCustomerPrice(ctx context.Context, customerID, priceVariationID uuid.UUID) (*models.CustomerPrice, error)
	FindPriceVariation(ctx context.Context, priceVariationID uuid.UUID) (*models.PriceVariation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindCustomerPrice(ctx context.Context, customerID, priceVariationID uuid.UUID) (*models.CustomerPrice, error) {
	var price models.CustomerPrice
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND price_variation_id = ?", customerID, priceVariationID).
		First(&price).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *repository) FindPriceVariation(ctx context.Context, priceVariationID uuid.UUID) (*models.PriceVariation, error) {
	var variation models.PriceVariation
	err := r.db.WithContext(ctx).
		Where("id = ?", priceVariationID).
		First(&variation).Error
	if err != nil {
		return nil, err
	}
	return &variation, nil
}
