package repositories

import (
	"context"

	"gorm.io/gorm"
)

type gormRepositories struct {
	users      *GORMUserRepository
	categories *GORMCategoryRepository
	products   *GORMProductRepository
	carts      *GORMCartRepository
	addresses  *GORMAddressRepository
	orders     *GORMOrderRepository
	payments   *GORMPaymentRepository
	reviews    *GORMReviewRepository
	wishlists  *GORMWishlistRepository
	tokens     *GORMRefreshTokenRepository
}

func newGORMRepositories(db *gorm.DB) *gormRepositories {
	return &gormRepositories{
		users:      NewGORMUserRepository(db),
		categories: NewGORMCategoryRepository(db),
		products:   NewGORMProductRepository(db),
		carts:      NewGORMCartRepository(db),
		addresses:  NewGORMAddressRepository(db),
		orders:     NewGORMOrderRepository(db),
		payments:   NewGORMPaymentRepository(db),
		reviews:    NewGORMReviewRepository(db),
		wishlists:  NewGORMWishlistRepository(db),
		tokens:     NewGORMRefreshTokenRepository(db),
	}
}

// Accessors for the repositories bound to this handle.

func (r *gormRepositories) Users() UserRepository          { return r.users }
func (r *gormRepositories) Categories() CategoryRepository { return r.categories }
func (r *gormRepositories) Products() ProductRepository    { return r.products }
func (r *gormRepositories) Carts() CartRepository          { return r.carts }
func (r *gormRepositories) Addresses() AddressRepository   { return r.addresses }
func (r *gormRepositories) Orders() OrderRepository        { return r.orders }
func (r *gormRepositories) Payments() PaymentRepository    { return r.payments }
func (r *gormRepositories) Reviews() ReviewRepository      { return r.reviews }
func (r *gormRepositories) Wishlists() WishlistRepository  { return r.wishlists }
func (r *gormRepositories) RefreshTokens() RefreshTokenRepository {
	return r.tokens
}

// GORMStore is the GORM implementation of Store.
type GORMStore struct {
	*gormRepositories
	db *gorm.DB
}

// NewGORMStore creates a Store backed by db.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		gormRepositories: newGORMRepositories(db),
		db:               db,
	}
}

// WithinTx runs fn with repositories rebuilt on top of a single transaction.
func (s *GORMStore) WithinTx(ctx context.Context, fn func(r Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGORMRepositories(tx))
	})
}
