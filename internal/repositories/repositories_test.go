package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *repositories.GORMStore {
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

func createProduct(t *testing.T, store repositories.Store, stock int, unlimited bool) *models.Product {
	t.Helper()
	p := &models.Product{Name: "Widget", Price: decimal.RequireFromString("4.00"), Stock: stock, Unlimited: unlimited}
	require.NoError(t, store.Products().Create(context.Background(), p))
	return p
}

func address(userID string, isDefault bool) *models.Address {
	return &models.Address{
		UserID: userID, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "1",
		StreetAddress: "1 Main St", City: "London", State: "LDN", Zip: "N1", Country: "GB",
		IsDefault: isDefault,
	}
}

func TestProductStock_ConditionalDecrement(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	p := createProduct(t, store, 3, false)

	ok, err := store.Products().DecreaseStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Products().DecreaseStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "only one unit left")

	got, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)

	ok, err = store.Products().IncreaseStock(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestProductStock_IncreaseSkipsUnlimitedAndRemoved(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	unlimited := createProduct(t, store, 0, true)
	ok, err := store.Products().IncreaseStock(ctx, unlimited.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	removed := createProduct(t, store, 1, false)
	require.NoError(t, store.Products().Delete(ctx, removed.ID))
	ok, err = store.Products().IncreaseStock(ctx, removed.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Products().GetByID(ctx, removed.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	p := createProduct(t, store, 5, false)

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(r repositories.Repositories) error {
		ok, err := r.Products().DecreaseStock(ctx, p.ID, 5)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}

func TestAddresses_SingleDefault(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	userID := uuid.NewString()

	first := address(userID, true)
	require.NoError(t, store.Addresses().Create(ctx, first))
	second := address(userID, false)
	require.NoError(t, store.Addresses().Create(ctx, second))

	assert.Error(t, store.Addresses().Create(ctx, address(userID, true)), "second default for the same user")
	require.NoError(t, store.Addresses().Create(ctx, address(uuid.NewString(), true)), "other users keep their own default")

	require.NoError(t, store.WithinTx(ctx, func(r repositories.Repositories) error {
		return r.Addresses().SetDefault(ctx, userID, second.ID)
	}))

	list, err := store.Addresses().ListByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	first.City = "Paris"
	first.IsDefault = true
	require.NoError(t, store.Addresses().Update(ctx, first))
	got, err := store.Addresses().GetForUser(ctx, userID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paris", got.City)
	assert.False(t, got.IsDefault, "update never touches the default flag")

	_, err = store.Addresses().GetForUser(ctx, uuid.NewString(), first.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrders_CreateAndHasPurchased(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	userID := uuid.NewString()
	p := createProduct(t, store, 5, false)

	order := &models.Order{
		UserID: userID, Status: models.OrderStatusPending, TotalAmount: decimal.RequireFromString("8.00"),
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "1",
		StreetAddress: "1 Main St", City: "London", State: "LDN", Zip: "N1", Country: "GB",
		ShippingMethod: models.ShippingStandard, ShippingCost: decimal.Zero,
		Items: []models.OrderItem{{ProductID: p.ID, ProductName: p.Name, Quantity: 2, Price: p.Price}},
	}
	require.NoError(t, store.Orders().Create(ctx, order))
	require.NotEmpty(t, order.ID)

	got, err := store.Orders().GetForUser(ctx, userID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, order.ID, got.Items[0].OrderID)
	assert.True(t, got.Items[0].Subtotal().Equal(decimal.NewFromInt(8)))

	_, err = store.Orders().GetForUser(ctx, uuid.NewString(), order.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	bought, err := store.Orders().HasPurchased(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.True(t, bought)

	ok, err := store.Orders().UpdateStatus(ctx, order.ID, models.OrderStatusCancelled, models.OrderStatusPending)
	require.NoError(t, err)
	assert.True(t, ok)
	bought, err = store.Orders().HasPurchased(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.False(t, bought)
}

func TestOrders_UpdateStatusIsConditional(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	order := &models.Order{
		UserID: uuid.NewString(), TotalAmount: decimal.RequireFromString("4.00"),
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "1",
		StreetAddress: "1 Main St", City: "London", State: "LDN", Zip: "N1", Country: "GB",
		ShippingMethod: models.ShippingStandard, ShippingCost: decimal.Zero,
	}
	require.NoError(t, store.Orders().Create(ctx, order))

	ok, err := store.Orders().UpdateStatus(ctx, order.ID, models.OrderStatusCancelled, models.OrderStatusPending, models.OrderStatusPaid)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second writer that still believes the order is pending changes nothing.
	ok, err = store.Orders().UpdateStatus(ctx, order.ID, models.OrderStatusPaid, models.OrderStatusPending)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Orders().UpdateStatus(ctx, "missing", models.OrderStatusPaid, models.OrderStatusPending)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Orders().UpdateStatus(ctx, order.ID, models.OrderStatusPaid)
	assert.Error(t, err, "a source status is required")

	got, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
}
