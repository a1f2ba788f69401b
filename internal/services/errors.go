package services

import (
	"errors"
	"fmt"

	"storefront/internal/repositories"
)

// Checkout and order errors.
var (
	ErrCartEmpty               = errors.New("cart is empty")
	ErrAddressNotFound         = errors.New("address not found")
	ErrMissingShippingInfo     = errors.New("shipping information is required")
	ErrOrderNotFound           = errors.New("order not found")
	ErrAlreadyCancelled        = errors.New("order is already cancelled")
	ErrAlreadyCompleted        = errors.New("order has already shipped and cannot be cancelled")
	ErrInvalidStatusTransition = errors.New("order status cannot be changed")
)

// Errors for the rest of the API.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("refresh token is unknown, expired or already used")
	ErrCartItemNotFound    = errors.New("product is not in the cart")
	ErrReviewNotAllowed    = errors.New("only customers who bought the product can review it")
	ErrForbidden           = errors.New("only the owner or an admin may change this")
	ErrAlreadyInWishlist   = errors.New("product is already in the wishlist")
	ErrPaymentsDisabled    = errors.New("payments are not configured")
)

// ProductNotFoundError is returned when a cart line or buy-now request references a
// product that does not exist or has been removed from the catalog.
type ProductNotFoundError struct {
	ProductID string
}

// Error implements error.
func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError reports a request for more units than are available.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

// Error implements error.
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// mapNotFound replaces a repository not-found error with target, keeping other errors.
func mapNotFound(err, target error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return target
	}
	return err
}
