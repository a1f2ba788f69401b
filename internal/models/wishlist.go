package models

import "time"

// Wishlist holds the products a user saved for later. Each user has at most one.
type Wishlist struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string         `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	Items     []WishlistItem `json:"items" gorm:"foreignKey:WishlistID"`
	CreatedAt time.Time      `json:"created_at"`
}

// WishlistItem is one saved product; a product appears once per wishlist.
type WishlistItem struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	WishlistID string    `json:"wishlist_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_wishlist_items_product"`
	ProductID  string    `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_wishlist_items_product"`
	Product    *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt  time.Time `json:"created_at"`
}
