package services

import (
	"context"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// WishlistService manages the user's wishlist.
type WishlistService struct {
	store repositories.Store
}

// NewWishlistService creates a new WishlistService.
func NewWishlistService(store repositories.Store) *WishlistService {
	return &WishlistService{store: store}
}

// GetWishlist returns the user's wishlist items with their products.
func (s *WishlistService) GetWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	w, err := s.store.Wishlists().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.Wishlists().ListItems(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.WishlistItem{}
	}
	return items, nil
}

// AddToWishlist saves a product to the wishlist. Adding it twice is an error.
func (s *WishlistService) AddToWishlist(ctx context.Context, userID, productID string) (*models.WishlistItem, error) {
	var item *models.WishlistItem
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		product, err := r.Products().GetByID(ctx, productID)
		if err != nil {
			return mapNotFound(err, &ProductNotFoundError{ProductID: productID})
		}
		w, err := r.Wishlists().GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		exists, err := r.Wishlists().HasItem(ctx, w.ID, productID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyInWishlist
		}
		item = &models.WishlistItem{WishlistID: w.ID, ProductID: productID}
		if err := r.Wishlists().AddItem(ctx, item); err != nil {
			return err
		}
		item.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveFromWishlist deletes a product from the wishlist.
func (s *WishlistService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	w, err := s.store.Wishlists().GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.store.Wishlists().RemoveItem(ctx, w.ID, productID); err != nil {
		return mapNotFound(err, ErrNotFound)
	}
	return nil
}

// ClearWishlist removes every saved product and returns how many there were.
func (s *WishlistService) ClearWishlist(ctx context.Context, userID string) (int64, error) {
	w, err := s.store.Wishlists().GetOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.store.Wishlists().ClearItems(ctx, w.ID)
}
