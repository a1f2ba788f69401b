package services

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartView is a cart with its lines and the running subtotal of live products.
type CartView struct {
	CartID   string            `json:"cart_id"`
	Items    []models.CartItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

// CartService handles business logic related to the shopping cart.
type CartService struct {
	store repositories.Store
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.Store) *CartService {
	return &CartService{store: store}
}

// GetCart returns the user's cart, creating an empty one on first use.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.store.Carts().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.Carts().ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		if item.Product != nil {
			subtotal = subtotal.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return &CartView{CartID: cart.ID, Items: items, Subtotal: subtotal}, nil
}

// AddToCart adds qty units of a product, merging with an existing line. The resulting
// quantity may not exceed the product's stock.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string, qty int) (*models.CartItem, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, invalid("product_id is required")
	}
	if qty < 1 {
		return nil, invalid("quantity must be at least 1")
	}

	var result *models.CartItem
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		product, err := r.Products().GetByID(ctx, productID)
		if err != nil {
			return mapNotFound(err, &ProductNotFoundError{ProductID: productID})
		}
		cart, err := r.Carts().GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}

		existing, err := r.Carts().GetItem(ctx, cart.ID, productID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return err
		}

		want := qty
		if existing != nil {
			want += existing.Quantity
		}
		if !product.HasStockFor(want) {
			return &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   want,
				Available:   product.Stock,
			}
		}

		if existing != nil {
			if err := r.Carts().UpdateItemQuantity(ctx, existing.ID, want); err != nil {
				return err
			}
			existing.Quantity = want
			result = existing
		} else {
			item := &models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: want}
			if err := r.Carts().AddItem(ctx, item); err != nil {
				return err
			}
			result = item
		}
		result.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReduceCartItem lowers a line's quantity by qty and deletes it once it reaches zero.
// It returns nil when the line was deleted.
func (s *CartService) ReduceCartItem(ctx context.Context, userID, productID string, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, invalid("quantity must be at least 1")
	}

	var result *models.CartItem
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		item, err := s.findItem(ctx, r, userID, productID)
		if err != nil {
			return err
		}
		remaining := item.Quantity - qty
		if remaining <= 0 {
			return r.Carts().DeleteItem(ctx, item.ID)
		}
		if err := r.Carts().UpdateItemQuantity(ctx, item.ID, remaining); err != nil {
			return err
		}
		item.Quantity = remaining
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveFromCart deletes the product's line from the cart.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID string) error {
	return s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		item, err := s.findItem(ctx, r, userID, productID)
		if err != nil {
			return err
		}
		return r.Carts().DeleteItem(ctx, item.ID)
	})
}

// ClearCart empties the cart. Clearing an empty or missing cart is not an error.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	cart, err := s.store.Carts().GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.store.Carts().ClearItems(ctx, cart.ID)
	return err
}

func (s *CartService) findItem(ctx context.Context, r repositories.Repositories, userID, productID string) (*models.CartItem, error) {
	cart, err := r.Carts().GetByUserID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrCartItemNotFound)
	}
	item, err := r.Carts().GetItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, mapNotFound(err, ErrCartItemNotFound)
	}
	return item, nil
}
