package repositories

import (
	"context"

	"storefront/internal/models"
)

// AddressRepository defines the interface for saved address data access.
// Every lookup is scoped to the owning user.
type AddressRepository interface {
	Create(ctx context.Context, address *models.Address) error
	ListByUserID(ctx context.Context, userID string) ([]models.Address, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
	GetForUser(ctx context.Context, userID, addressID string) (*models.Address, error)
	GetDefault(ctx context.Context, userID string) (*models.Address, error)
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, userID, addressID string) error
	// SetDefault clears the user's current default and marks addressID as default.
	// Callers run it inside a transaction.
	SetDefault(ctx context.Context, userID, addressID string) error
}
