package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistRepository defines the interface for wishlist data access.
type WishlistRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Wishlist, error)
	ListItems(ctx context.Context, wishlistID string) ([]models.WishlistItem, error)
	HasItem(ctx context.Context, wishlistID, productID string) (bool, error)
	AddItem(ctx context.Context, item *models.WishlistItem) error
	RemoveItem(ctx context.Context, wishlistID, productID string) error
	// ClearItems deletes every item and returns how many were removed.
	ClearItems(ctx context.Context, wishlistID string) (int64, error)
}

// GORMWishlistRepository is a GORM implementation of WishlistRepository.
type GORMWishlistRepository struct {
	db *gorm.DB
}

// NewGORMWishlistRepository creates a new instance of GORMWishlistRepository.
func NewGORMWishlistRepository(db *gorm.DB) *GORMWishlistRepository {
	return &GORMWishlistRepository{db: db}
}

// GetOrCreate returns the user's wishlist, creating it on first use.
func (r *GORMWishlistRepository) GetOrCreate(ctx context.Context, userID string) (*models.Wishlist, error) {
	w := models.Wishlist{ID: uuid.New().String(), UserID: userID}
	db := r.db.WithContext(ctx)
	if err := db.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(&w).Error; err != nil {
		return nil, fmt.Errorf("failed to create wishlist for user %s: %w", userID, err)
	}

	var out models.Wishlist
	if err := db.First(&out, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get wishlist for user %s: %w", userID, err)
	}
	return &out, nil
}

// ListItems preloads each product; items whose product was removed keep a nil Product.
func (r *GORMWishlistRepository) ListItems(ctx context.Context, wishlistID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("wishlist_id = ?", wishlistID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	return items, nil
}

// HasItem reports whether productID is already saved.
func (r *GORMWishlistRepository) HasItem(ctx context.Context, wishlistID, productID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check wishlist item: %w", err)
	}
	return count > 0, nil
}

// AddItem inserts a wishlist item without touching its product.
func (r *GORMWishlistRepository) AddItem(ctx context.Context, item *models.WishlistItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

// RemoveItem deletes one saved product.
func (r *GORMWishlistRepository) RemoveItem(ctx context.Context, wishlistID, productID string) error {
	res := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s in wishlist: %w", productID, ErrNotFound)
	}
	return nil
}

// ClearItems deletes every item of the wishlist.
func (r *GORMWishlistRepository) ClearItems(ctx context.Context, wishlistID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear wishlist %s: %w", wishlistID, res.Error)
	}
	return res.RowsAffected, nil
}
