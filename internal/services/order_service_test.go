package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderFixture(t *testing.T, publisher services.EventPublisher) (*repositories.GORMStore, *services.OrderService, *services.CartService) {
	t.Helper()
	store := newTestStore(t)
	return store, services.NewOrderService(store, publisher, "usd", nil, nil), services.NewCartService(store)
}

func TestPlaceOrder_TotalsStockAndEmptiesCart(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	store, orders, carts := newOrderFixture(t, pub)

	user := seedUser(t, store, "buyer@example.com")
	a := seedProduct(t, store, "Product A", "10.00", 5)
	_, err := carts.AddToCart(ctx, user.ID, a.ID, 2)
	require.NoError(t, err)

	pub.On("Publish", mock.Anything, services.EventOrderPlaced, mock.MatchedBy(func(body []byte) bool {
		var ev services.OrderEvent
		return json.Unmarshal(body, &ev) == nil && ev.UserID == user.ID && ev.Status == models.OrderStatusPending
	})).Return(nil).Once()

	res, err := orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{
		Address:        inlineAddress(),
		ShippingMethod: models.ShippingExpress,
		ShippingCost:   dec("3.00"),
	})
	require.NoError(t, err)
	assert.True(t, dec("23.00").Equal(res.TotalAmount), "total was %s", res.TotalAmount)
	assert.Equal(t, models.OrderStatusPending, res.Status)

	assert.Equal(t, 3, stockOf(t, store, a.ID))

	view, err := carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	order, err := orders.GetOrder(ctx, user.ID, res.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Product A", order.Items[0].ProductName)
	assert.True(t, dec("10.00").Equal(order.Items[0].Price))
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "Ada", order.FirstName)
	assert.Equal(t, "London", order.City)
	assert.Equal(t, models.ShippingExpress, order.ShippingMethod)

	sum := order.ShippingCost
	for _, item := range order.Items {
		sum = sum.Add(item.Subtotal())
	}
	assert.True(t, sum.Equal(order.TotalAmount))

	// The inline address was saved and, being the first, made default.
	addrs, err := store.Addresses().ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.True(t, addrs[0].IsDefault)
	require.NotNil(t, order.AddressID)
	assert.Equal(t, addrs[0].ID, *order.AddressID)

	pub.AssertExpectations(t)
}

func TestPlaceOrder_SnapshotSurvivesAddressAndPriceChanges(t *testing.T) {
	ctx := context.Background()
	store, orders, carts := newOrderFixture(t, nil)
	addresses := services.NewAddressService(store)

	user := seedUser(t, store, "snap@example.com")
	p := seedProduct(t, store, "Lamp", "40.00", 3)
	addr, err := addresses.Create(ctx, user.ID, services.AddressInput(inlineAddress()))
	require.NoError(t, err)

	_, err = carts.AddToCart(ctx, user.ID, p.ID, 1)
	require.NoError(t, err)
	res, err := orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{
		Address:      services.AddressByID{ID: addr.ID},
		ShippingCost: dec("0"),
	})
	require.NoError(t, err)

	changed := services.AddressInput(inlineAddress())
	changed.Shipping.City = "Manchester"
	_, err = addresses.Update(ctx, user.ID, addr.ID, changed)
	require.NoError(t, err)
	p.Price = dec("55.00")
	require.NoError(t, store.Products().Update(ctx, p))

	order, err := orders.GetOrder(ctx, user.ID, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "London", order.City)
	assert.True(t, dec("40.00").Equal(order.Items[0].Price))
	assert.Equal(t, models.ShippingStandard, order.ShippingMethod)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()
	store, orders, carts := newOrderFixture(t, nil)
	user := seedUser(t, store, "empty@example.com")

	// No cart at all.
	_, err := orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress()})
	assert.ErrorIs(t, err, services.ErrCartEmpty)

	// A cart that exists but has no lines.
	_, err = carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	_, err = orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress()})
	assert.ErrorIs(t, err, services.ErrCartEmpty)

	list, err := orders.ListOrders(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	addrs, err := store.Addresses().ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, addrs, "no address may be written for a rejected checkout")
}

func TestPlaceOrder_OneOverstockedLineRollsBackEverything(t *testing.T) {
	ctx := context.Background()
	store, orders, carts := newOrderFixture(t, nil)
	user := seedUser(t, store, "partial@example.com")

	a := seedProduct(t, store, "Product A", "10.00", 5)
	b := seedProduct(t, store, "Product B", "7.50", 1)
	_, err := carts.AddToCart(ctx, user.ID, a.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, user.ID, b.ID, 1)
	require.NoError(t, err)

	// B sells out after it went into the cart.
	b.Stock = 0
	require.NoError(t, store.Products().Update(ctx, b))

	_, err = orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress(), ShippingCost: dec("3.00")})
	var stockErr *services.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, b.ID, stockErr.ProductID)
	assert.Equal(t, "Product B", stockErr.ProductName)
	assert.Equal(t, 1, stockErr.Requested)
	assert.Equal(t, 0, stockErr.Available)

	assert.Equal(t, 5, stockOf(t, store, a.ID))
	assert.Equal(t, 0, stockOf(t, store, b.ID))
	view, err := carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	list, err := orders.ListOrders(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPlaceOrder_RemovedProduct(t *testing.T) {
	ctx := context.Background()
	store, orders, carts := newOrderFixture(t, nil)
	user := seedUser(t, store, "removed@example.com")
	p := seedProduct(t, store, "Discontinued", "5.00", 10)

	_, err := carts.AddToCart(ctx, user.ID, p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, store.Products().Delete(ctx, p.ID))

	_, err = orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress()})
	var notFound *services.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, p.ID, notFound.ProductID)
}

func TestPlaceOrder_AddressResolution(t *testing.T) {
	ctx := context.Background()
	store, orders, carts := newOrderFixture(t, nil)
	addresses := services.NewAddressService(store)

	user := seedUser(t, store, "owner@example.com")
	other := seedUser(t, store, "other@example.com")
	p := seedProduct(t, store, "Mug", "8.00", 10)
	_, err := carts.AddToCart(ctx, user.ID, p.ID, 1)
	require.NoError(t, err)

	foreign, err := addresses.Create(ctx, other.ID, services.AddressInput(inlineAddress()))
	require.NoError(t, err)

	_, err = orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: services.AddressByID{ID: foreign.ID}})
	assert.ErrorIs(t, err, services.ErrAddressNotFound)

	_, err = orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{})
	assert.ErrorIs(t, err, services.ErrMissingShippingInfo)

	partial := inlineAddress()
	partial.Shipping.Zip = ""
	_, err = orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: partial})
	assert.ErrorIs(t, err, services.ErrMissingShippingInfo)

	_, err = orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress(), ShippingMethod: "teleport"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	assert.Equal(t, 10, stockOf(t, store, p.ID))
}

func TestPlaceOrder_WithSucceededPayment(t *testing.T) {
	ctx := context.Background()
	store, orders, carts := newOrderFixture(t, nil)
	user := seedUser(t, store, "paid@example.com")
	p := seedProduct(t, store, "Book", "12.50", 4)
	_, err := carts.AddToCart(ctx, user.ID, p.ID, 2)
	require.NoError(t, err)

	res, err := orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{
		Address:      inlineAddress(),
		ShippingCost: dec("5.00"),
		Payment: &services.PaymentConfirmation{
			ExternalID: "pi_abc",
			Method:     "card",
			Currency:   "USD",
			Status:     "succeeded",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, res.Status)

	pays, err := store.Payments().ListByOrderID(ctx, res.OrderID)
	require.NoError(t, err)
	require.Len(t, pays, 1)
	assert.Equal(t, "pi_abc", pays[0].ExternalID)
	assert.Equal(t, "usd", pays[0].Currency)
	assert.True(t, dec("30.00").Equal(pays[0].Amount))
}

func TestPlaceOrder_UnlimitedProductKeepsStock(t *testing.T) {
	ctx := context.Background()
	store, orders, carts := newOrderFixture(t, nil)
	user := seedUser(t, store, "digital@example.com")

	p := &models.Product{Name: "E-book", Price: dec("9.99"), Unlimited: true}
	require.NoError(t, store.Products().Create(ctx, p))
	_, err := carts.AddToCart(ctx, user.ID, p.ID, 3)
	require.NoError(t, err)

	res, err := orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress()})
	require.NoError(t, err)
	assert.True(t, dec("29.97").Equal(res.TotalAmount))
	assert.Equal(t, 0, stockOf(t, store, p.ID))
}

func TestPlaceOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	store, orders, carts := newOrderFixture(t, pub)
	user := seedUser(t, store, "offline@example.com")
	p := seedProduct(t, store, "Pen", "1.20", 10)
	_, err := carts.AddToCart(ctx, user.ID, p.ID, 1)
	require.NoError(t, err)

	pub.On("Publish", mock.Anything, services.EventOrderPlaced, mock.Anything).Return(errors.New("broker down")).Once()

	res, err := orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress()})
	require.NoError(t, err)
	assert.NotEmpty(t, res.OrderID)
	pub.AssertExpectations(t)
}

func TestBuyNow(t *testing.T) {
	ctx := context.Background()
	store, orders, carts := newOrderFixture(t, nil)
	user := seedUser(t, store, "fast@example.com")

	t.Run("insufficient stock leaves everything untouched", func(t *testing.T) {
		b := seedProduct(t, store, "Product B", "50.00", 1)
		_, err := orders.BuyNow(ctx, user.ID, services.BuyNowInput{
			ProductID:       b.ID,
			Quantity:        2,
			PlaceOrderInput: services.PlaceOrderInput{Address: inlineAddress()},
		})
		var stockErr *services.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "Product B", stockErr.ProductName)
		assert.Equal(t, 1, stockOf(t, store, b.ID))

		list, err := orders.ListOrders(ctx, user.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := orders.BuyNow(ctx, user.ID, services.BuyNowInput{
			ProductID:       "does-not-exist",
			PlaceOrderInput: services.PlaceOrderInput{Address: inlineAddress()},
		})
		var notFound *services.ProductNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "does-not-exist", notFound.ProductID)
	})

	t.Run("negative quantity", func(t *testing.T) {
		_, err := orders.BuyNow(ctx, user.ID, services.BuyNowInput{ProductID: "x", Quantity: -1})
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})

	t.Run("does not touch the cart", func(t *testing.T) {
		inCart := seedProduct(t, store, "In cart", "2.00", 10)
		direct := seedProduct(t, store, "Direct", "15.00", 4)
		_, err := carts.AddToCart(ctx, user.ID, inCart.ID, 1)
		require.NoError(t, err)

		res, err := orders.BuyNow(ctx, user.ID, services.BuyNowInput{
			ProductID: direct.ID,
			PlaceOrderInput: services.PlaceOrderInput{
				Address:      inlineAddress(),
				ShippingCost: dec("4.99"),
			},
		})
		require.NoError(t, err)
		assert.True(t, dec("19.99").Equal(res.TotalAmount))
		assert.Equal(t, 3, stockOf(t, store, direct.ID))

		view, err := carts.GetCart(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, view.Items, 1)
		assert.Equal(t, inCart.ID, view.Items[0].ProductID)
	})
}

func TestBuyNow_ConcurrentBuyersNeverOversell(t *testing.T) {
	ctx := context.Background()
	store, orders, _ := newOrderFixture(t, nil)
	p := seedProduct(t, store, "Last one", "99.00", 1)

	const buyers = 5
	users := make([]*models.User, buyers)
	for i := range users {
		users[i] = seedUser(t, store, "buyer"+string(rune('a'+i))+"@example.com")
	}

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = orders.BuyNow(ctx, users[i].ID, services.BuyNowInput{
				ProductID:       p.ID,
				PlaceOrderInput: services.PlaceOrderInput{Address: inlineAddress()},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *services.InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, stockOf(t, store, p.ID))
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	pub := new(MockPublisher)
	store, orders, carts := newOrderFixture(t, pub)
	user := seedUser(t, store, "cancel@example.com")
	p := seedProduct(t, store, "Chair", "45.00", 6)

	pub.On("Publish", mock.Anything, services.EventOrderPlaced, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, services.EventOrderCancelled, mock.Anything).Return(nil).Once()

	_, err := carts.AddToCart(ctx, user.ID, p.ID, 4)
	require.NoError(t, err)
	res, err := orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress()})
	require.NoError(t, err)
	require.Equal(t, 2, stockOf(t, store, p.ID))

	order, err := orders.CancelOrder(ctx, user.ID, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, 6, stockOf(t, store, p.ID))

	_, err = orders.CancelOrder(ctx, user.ID, res.OrderID)
	assert.ErrorIs(t, err, services.ErrAlreadyCancelled)
	assert.Equal(t, 6, stockOf(t, store, p.ID))

	pub.AssertExpectations(t)
}

func TestCancelOrder_Rejections(t *testing.T) {
	ctx := context.Background()
	store, orders, _ := newOrderFixture(t, nil)
	user := seedUser(t, store, "reject@example.com")
	other := seedUser(t, store, "nosy@example.com")
	p := seedProduct(t, store, "Desk", "120.00", 3)

	res, err := orders.BuyNow(ctx, user.ID, services.BuyNowInput{
		ProductID:       p.ID,
		PlaceOrderInput: services.PlaceOrderInput{Address: inlineAddress()},
	})
	require.NoError(t, err)

	_, err = orders.CancelOrder(ctx, other.ID, res.OrderID)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	_, err = orders.UpdateOrderStatus(ctx, res.OrderID, models.OrderStatusShipped)
	require.NoError(t, err)

	_, err = orders.CancelOrder(ctx, user.ID, res.OrderID)
	assert.ErrorIs(t, err, services.ErrAlreadyCompleted)
	assert.Equal(t, 2, stockOf(t, store, p.ID))
}

func TestCancelOrder_SkipsRemovedProducts(t *testing.T) {
	ctx := context.Background()
	store, orders, carts := newOrderFixture(t, nil)
	user := seedUser(t, store, "skip@example.com")
	keep := seedProduct(t, store, "Keep", "3.00", 5)
	gone := seedProduct(t, store, "Gone", "4.00", 5)

	_, err := carts.AddToCart(ctx, user.ID, keep.ID, 1)
	require.NoError(t, err)
	_, err = carts.AddToCart(ctx, user.ID, gone.ID, 2)
	require.NoError(t, err)
	res, err := orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress()})
	require.NoError(t, err)

	require.NoError(t, store.Products().Delete(ctx, gone.ID))

	order, err := orders.CancelOrder(ctx, user.ID, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, 5, stockOf(t, store, keep.ID))
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	store, orders, _ := newOrderFixture(t, nil)
	user := seedUser(t, store, "status@example.com")
	p := seedProduct(t, store, "Shelf", "60.00", 2)

	res, err := orders.BuyNow(ctx, user.ID, services.BuyNowInput{
		ProductID:       p.ID,
		PlaceOrderInput: services.PlaceOrderInput{Address: inlineAddress()},
	})
	require.NoError(t, err)

	_, err = orders.UpdateOrderStatus(ctx, res.OrderID, "processing")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = orders.UpdateOrderStatus(ctx, "missing", models.OrderStatusPaid)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	order, err := orders.UpdateOrderStatus(ctx, res.OrderID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, 2, stockOf(t, store, p.ID))

	_, err = orders.UpdateOrderStatus(ctx, res.OrderID, models.OrderStatusPaid)
	assert.ErrorIs(t, err, services.ErrInvalidStatusTransition)
}

func TestCancelOrder_StaleReadRestoresStockOnce(t *testing.T) {
	ctx := context.Background()
	store, orders, _ := newOrderFixture(t, nil)
	user := seedUser(t, store, "twice@example.com")
	p := seedProduct(t, store, "Stool", "30.00", 5)

	res, err := orders.BuyNow(ctx, user.ID, services.BuyNowInput{
		ProductID:       p.ID,
		Quantity:        2,
		PlaceOrderInput: services.PlaceOrderInput{Address: inlineAddress()},
	})
	require.NoError(t, err)
	pending, err := orders.GetOrder(ctx, user.ID, res.OrderID)
	require.NoError(t, err)

	_, err = orders.CancelOrder(ctx, user.ID, res.OrderID)
	require.NoError(t, err)
	require.Equal(t, 5, stockOf(t, store, p.ID))

	// A second cancel that read the order before the first one committed.
	stale := newStaleStore(store)
	stale.orders[res.OrderID] = *pending
	late := services.NewOrderService(stale, nil, "usd", nil, nil)

	_, err = late.CancelOrder(ctx, user.ID, res.OrderID)
	assert.ErrorIs(t, err, services.ErrAlreadyCancelled)
	assert.Equal(t, 5, stockOf(t, store, p.ID))

	stale.orders[res.OrderID] = *pending
	_, err = late.UpdateOrderStatus(ctx, res.OrderID, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, services.ErrInvalidStatusTransition)
	assert.Equal(t, 5, stockOf(t, store, p.ID))

	stale.orders[res.OrderID] = *pending
	_, err = late.UpdateOrderStatus(ctx, res.OrderID, models.OrderStatusShipped)
	assert.ErrorIs(t, err, services.ErrInvalidStatusTransition)

	order, err := orders.GetOrder(ctx, user.ID, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
}

func TestCheckout_StockTakenAfterRead(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := seedUser(t, store, "late@example.com")
	p := seedProduct(t, store, "Scarce", "12.00", 5)

	// Another checkout sold four units after this one read the product.
	snapshot, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	ok, err := store.Products().DecreaseStock(ctx, p.ID, 4)
	require.NoError(t, err)
	require.True(t, ok)

	stale := newStaleStore(store)
	stale.products[p.ID] = *snapshot
	orders := services.NewOrderService(stale, nil, "usd", nil, nil)

	_, err = orders.BuyNow(ctx, user.ID, services.BuyNowInput{
		ProductID:       p.ID,
		Quantity:        3,
		PlaceOrderInput: services.PlaceOrderInput{Address: inlineAddress()},
	})
	var stockErr *services.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, p.ID, stockErr.ProductID)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available, "the error reports the stock left after the competing sale")

	assert.Equal(t, 1, stockOf(t, store, p.ID))
	list, err := store.Orders().ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	addrs, err := store.Addresses().ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, addrs, "the inline address is rolled back with the order")
}

func TestCheckout_RejectsSubCentAmounts(t *testing.T) {
	ctx := context.Background()
	store, orders, carts := newOrderFixture(t, nil)
	user := seedUser(t, store, "cents@example.com")
	p := seedProduct(t, store, "Widget", "10.00", 5)
	_, err := carts.AddToCart(ctx, user.ID, p.ID, 2)
	require.NoError(t, err)

	_, err = orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress(), ShippingCost: dec("3.005")})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{
		Address: inlineAddress(),
		Payment: &services.PaymentConfirmation{ExternalID: "pi_x", Status: "succeeded", Amount: dec("23.001")},
	})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	assert.Equal(t, 5, stockOf(t, store, p.ID))

	// Trailing zeros are still whole cents.
	res, err := orders.PlaceOrder(ctx, user.ID, services.PlaceOrderInput{Address: inlineAddress(), ShippingCost: dec("3.000")})
	require.NoError(t, err)
	assert.True(t, dec("23.00").Equal(res.TotalAmount))
}

func TestCheckout_PaymentCurrencyDefaultsToConfigured(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	orders := services.NewOrderService(store, nil, "EUR", nil, nil)
	user := seedUser(t, store, "euro@example.com")
	p := seedProduct(t, store, "Croissant", "2.50", 10)

	payment := &services.PaymentConfirmation{ExternalID: "pi_eur", Status: "succeeded"}
	res, err := orders.BuyNow(ctx, user.ID, services.BuyNowInput{
		ProductID:       p.ID,
		Quantity:        2,
		PlaceOrderInput: services.PlaceOrderInput{Address: inlineAddress(), Payment: payment},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, res.Status)
	assert.Empty(t, payment.Currency, "the caller's input is not modified")

	pays, err := store.Payments().ListByOrderID(ctx, res.OrderID)
	require.NoError(t, err)
	require.Len(t, pays, 1)
	assert.Equal(t, "eur", pays[0].Currency)
	assert.True(t, dec("5.00").Equal(pays[0].Amount))
}
