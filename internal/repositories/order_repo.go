package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// Create inserts the order header and its items.
	Create(ctx context.Context, order *models.Order) error
	// GetByID loads an order with its items.
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetForUser loads an order with its items only if it belongs to userID.
	GetForUser(ctx context.Context, userID, orderID string) (*models.Order, error)
	ListByUserID(ctx context.Context, userID string) ([]models.Order, error)
	// UpdateStatus moves the order to status only while its current status is one of
	// from, and reports whether the row changed. Check and write happen in one statement.
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, from ...models.OrderStatus) (bool, error)
	// HasPurchased reports whether the user has a non-cancelled order containing productID.
	HasPurchased(ctx context.Context, userID, productID string) (bool, error)
	// Orders are never deleted; cancellation is a status change.
}
