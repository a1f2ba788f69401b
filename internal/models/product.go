package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products in the catalog.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product represents a product in the store.
//
// SellerID is the user who listed it; only that seller or an admin may change it.
// Stock is always tracked unless Unlimited is set, in which case Stock is ignored
// by checkout and never decremented.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"type:varchar(200);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	Unlimited   bool            `json:"unlimited" gorm:"not null;default:false"`
	CategoryID  *string         `json:"category_id,omitempty" gorm:"type:varchar(36);index"`
	SellerID    string          `json:"seller_id" gorm:"type:varchar(36);index"` // empty for catalog-owned products
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// HasStockFor reports whether qty units can be sold right now.
func (p *Product) HasStockFor(qty int) bool {
	return p.Unlimited || qty <= p.Stock
}
