// File: internal/domain/model/seller.go
package model

import (
	"time"

	"seller-onboarding/internal/domain"
)

// SellerProfile is the durable outcome of a finished onboarding
// conversation. It is written exactly once per conversation, as an upsert
// keyed on ID, when the flow reaches its terminal step.
type SellerProfile struct {
	ID          string
	Language    string
	StoreName   string
	StoreSlug   string
	Category    string
	Description string
	Phone       string

	// OnboardingComplete is true for every stored profile today; it stays
	// a column so partially-onboarded rows can exist later without a
	// migration.
	OnboardingComplete bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSellerProfile builds a profile from a finished conversation context.
// Description may be empty (the flow allows skipping it); everything else
// the flow validates must be present.
func NewSellerProfile(c ConversationContext) (*SellerProfile, error) {
	if c.Get(FieldSellerID) == "" || c.Get(FieldStoreName) == "" || c.Get(FieldPhone) == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &SellerProfile{
		ID:                 c.Get(FieldSellerID),
		Language:           c.Get(FieldLanguage),
		StoreName:          c.Get(FieldStoreName),
		StoreSlug:          c.Get(FieldStoreSlug),
		Category:           c.Get(FieldCategory),
		Description:        c.Get(FieldDescription),
		Phone:              c.Get(FieldPhone),
		OnboardingComplete: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}
