package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by every repository when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// Repositories groups the data access objects that can take part in one unit of work.
type Repositories interface {
	Users() UserRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Carts() CartRepository
	Addresses() AddressRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Reviews() ReviewRepository
	Wishlists() WishlistRepository
	RefreshTokens() RefreshTokenRepository
}

// Store exposes the repositories bound to the connection pool and a way to run
// a function against repositories bound to a single transaction.
type Store interface {
	Repositories
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
