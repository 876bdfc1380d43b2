package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	pkgerrors "github.com/sproutlane/microfarm-backend/pkg/errors"
)

// Resolver answers the current unit price of a price variation for a customer.
type Resolver interface {
	PriceFor(ctx context.Context, customerID, priceVariationID uuid.UUID) (decimal.Decimal, error)
}

type resolver struct {
	repo Repository
}

// NewResolver builds the default repository-backed resolver.
func NewResolver(repo Repository) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	return &resolver{repo: repo}, nil
}

// PriceFor returns the customer-specific price when one exists, falling back
// to the variation's list price. A missing variation is an error: the caller
// is about to snapshot a price that does not exist.
func (r *resolver) PriceFor(ctx context.Context, customerID, priceVariationID uuid.UUID) (decimal.Decimal, error) {
	if priceVariationID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price variation id required")
	}

	if customerID != uuid.Nil {
		custom, err := r.repo.FindCustomerPrice(ctx, customerID, priceVariationID)
		if err == nil {
			return custom.UnitPrice, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer price")
		}
	}

	variation, err := r.repo.FindPriceVariation(ctx, priceVariationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeNotFound, "price variation %s not found", priceVariationID)
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price variation")
	}
	return variation.ListPrice, nil
}
