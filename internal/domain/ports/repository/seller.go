package repository

import (
	"context"

	"seller-onboarding/internal/domain/model"
)

// SellerRepository is the port for the Seller Store.
type SellerRepository interface {
	// Upsert writes the profile keyed on its ID. It must be idempotent:
	// two racing terminal turns for the same seller end up with one row.
	Upsert(ctx context.Context, p *model.SellerProfile) error

	FindByID(ctx context.Context, id string) (*model.SellerProfile, error)

	// CountOnboarded returns how many profiles finished onboarding.
	CountOnboarded(ctx context.Context) (int, error)
}
