package repositories

import (
	"context"

	"storefront/internal/models"
)

// CartRepository defines the interface for cart and cart item data access.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	// GetOrCreate returns the user's cart, creating it on first use.
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)

	// ListItems returns the cart's lines with Product loaded. Product is nil when
	// the referenced product no longer exists.
	ListItems(ctx context.Context, cartID string) ([]models.CartItem, error)
	GetItem(ctx context.Context, cartID, productID string) (*models.CartItem, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID string, qty int) error
	DeleteItem(ctx context.Context, itemID string) error
	ClearItems(ctx context.Context, cartID string) (int64, error)
}
