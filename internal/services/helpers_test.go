package services_test

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType string, body []byte) error {
	args := m.Called(ctx, eventType, body)
	return args.Error(0)
}

// newTestStore opens a private in-memory SQLite database with every table migrated.
func newTestStore(t *testing.T) *repositories.GORMStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open("sqlite", dsn, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repositories.NewGORMStore(db)
}

func seedUser(t *testing.T, store repositories.Store, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Test User", Email: email, PasswordHash: "x"}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, store repositories.Store, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func stockOf(t *testing.T, store repositories.Store, productID string) int {
	t.Helper()
	p, err := store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func inlineAddress() services.InlineAddress {
	return services.InlineAddress{
		Contact: services.ContactInfo{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "+44 20 7946 0000",
		},
		Shipping: services.ShippingInfo{
			StreetAddress: "12 St James's Square",
			City:          "London",
			State:         "Greater London",
			Zip:           "SW1Y 4JH",
			Country:       "GB",
		},
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// staleStore replays snapshots taken before a competing transaction committed, so a
// service reads an old row and only the write can notice the change. Each snapshot
// is served once; later reads go to the database.
type staleStore struct {
	repositories.Store
	orders   map[string]models.Order
	products map[string]models.Product
}

func newStaleStore(store repositories.Store) *staleStore {
	return &staleStore{
		Store:    store,
		orders:   map[string]models.Order{},
		products: map[string]models.Product{},
	}
}

func (s *staleStore) WithinTx(ctx context.Context, fn func(r repositories.Repositories) error) error {
	return s.Store.WithinTx(ctx, func(r repositories.Repositories) error {
		return fn(staleRepositories{Repositories: r, s: s})
	})
}

type staleRepositories struct {
	repositories.Repositories
	s *staleStore
}

func (r staleRepositories) Orders() repositories.OrderRepository {
	return staleOrders{OrderRepository: r.Repositories.Orders(), s: r.s}
}

func (r staleRepositories) Products() repositories.ProductRepository {
	return staleProducts{ProductRepository: r.Repositories.Products(), s: r.s}
}

type staleOrders struct {
	repositories.OrderRepository
	s *staleStore
}

func (o staleOrders) take(id string) (*models.Order, bool) {
	snap, ok := o.s.orders[id]
	if !ok {
		return nil, false
	}
	delete(o.s.orders, id)
	return &snap, true
}

func (o staleOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if snap, ok := o.take(id); ok {
		return snap, nil
	}
	return o.OrderRepository.GetByID(ctx, id)
}

func (o staleOrders) GetForUser(ctx context.Context, userID, orderID string) (*models.Order, error) {
	if snap, ok := o.take(orderID); ok && snap.UserID == userID {
		return snap, nil
	}
	return o.OrderRepository.GetForUser(ctx, userID, orderID)
}

type staleProducts struct {
	repositories.ProductRepository
	s *staleStore
}

func (p staleProducts) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if snap, ok := p.s.products[id]; ok {
		delete(p.s.products, id)
		return &snap, nil
	}
	return p.ProductRepository.GetByID(ctx, id)
}
