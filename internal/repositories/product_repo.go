package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// ProductFilter narrows a product listing. Zero values mean "no constraint".
type ProductFilter struct {
	Keyword    string
	CategoryID string
	SellerID   string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	MinStock   *int
	MaxStock   *int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	// GetByID skips soft-deleted products.
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error

	// DecreaseStock subtracts qty only when at least qty units are left and reports
	// whether the row was changed. Check and write happen in one statement.
	DecreaseStock(ctx context.Context, id string, qty int) (bool, error)
	// IncreaseStock adds qty back and reports whether a row was changed. Soft-deleted
	// and unlimited products are skipped.
	IncreaseStock(ctx context.Context, id string, qty int) (bool, error)
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}
