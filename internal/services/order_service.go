package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/telemetry"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Event types published after an order transaction commits.
const (
	EventOrderPlaced    = "order.placed"
	EventOrderCancelled = "order.cancelled"
)

const (
	sourceCart   = "cart"
	sourceBuyNow = "buy_now"
)

// EventPublisher delivers order events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, body []byte) error
}

// OrderEvent is the JSON body of an order event.
type OrderEvent struct {
	Event       string             `json:"event"`
	OrderID     string             `json:"order_id"`
	UserID      string             `json:"user_id"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	store     repositories.Store
	publisher EventPublisher // nil disables events
	currency  string
	metrics   *telemetry.Metrics
	log       *zap.Logger
}

// NewOrderService creates a new OrderService. publisher may be nil; currency is
// applied to checkout payments that do not name one and defaults to usd.
func NewOrderService(store repositories.Store, publisher EventPublisher, currency string, metrics *telemetry.Metrics, log *zap.Logger) *OrderService {
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	if currency == "" {
		currency = "usd"
	}
	return &OrderService{
		store:     store,
		publisher: publisher,
		currency:  strings.ToLower(currency),
		metrics:   metrics,
		log:       telemetry.OrNop(log),
	}
}

// PlaceOrder turns the user's cart into an order. Stock, the order, its items,
// an optional payment and the emptied cart are committed together or not at all.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*OrderResult, error) {
	if err := in.normalize(s.currency); err != nil {
		return nil, s.checkoutFailed(ctx, sourceCart, userID, err)
	}

	var result *OrderResult
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		cart, err := r.Carts().GetByUserID(ctx, userID)
		if err != nil {
			return mapNotFound(err, ErrCartEmpty)
		}
		items, err := r.Carts().ListItems(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		lines := make([]checkoutLine, 0, len(items))
		for _, item := range items {
			// Preload leaves Product nil for removed products.
			if item.Product == nil {
				return &ProductNotFoundError{ProductID: item.ProductID}
			}
			lines = append(lines, checkoutLine{product: item.Product, quantity: item.Quantity})
		}

		result, err = s.checkout(ctx, r, userID, lines, in)
		if err != nil {
			return err
		}

		if _, err := r.Carts().ClearItems(ctx, cart.ID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.checkoutFailed(ctx, sourceCart, userID, err)
	}

	s.orderPlaced(ctx, sourceCart, userID, result)
	return result, nil
}

// BuyNow places an order for a single product without touching the cart.
func (s *OrderService) BuyNow(ctx context.Context, userID string, in BuyNowInput) (*OrderResult, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, s.checkoutFailed(ctx, sourceBuyNow, userID, invalid("quantity must be positive"))
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, s.checkoutFailed(ctx, sourceBuyNow, userID, invalid("product_id is required"))
	}
	if err := in.PlaceOrderInput.normalize(s.currency); err != nil {
		return nil, s.checkoutFailed(ctx, sourceBuyNow, userID, err)
	}

	var result *OrderResult
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		product, err := r.Products().GetByID(ctx, in.ProductID)
		if err != nil {
			return mapNotFound(err, &ProductNotFoundError{ProductID: in.ProductID})
		}
		result, err = s.checkout(ctx, r, userID, []checkoutLine{{product: product, quantity: in.Quantity}}, in.PlaceOrderInput)
		return err
	})
	if err != nil {
		return nil, s.checkoutFailed(ctx, sourceBuyNow, userID, err)
	}

	s.orderPlaced(ctx, sourceBuyNow, userID, result)
	return result, nil
}

// checkout runs the shared write phase of PlaceOrder and BuyNow inside the caller's transaction.
func (s *OrderService) checkout(ctx context.Context, r repositories.Repositories, userID string, lines []checkoutLine, in PlaceOrderInput) (*OrderResult, error) {
	if err := checkStock(lines); err != nil {
		return nil, err
	}
	total := orderTotal(lines, in.ShippingCost)

	addr, err := resolveAddress(ctx, r, userID, in.Address)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		if l.product.Unlimited {
			continue
		}
		ok, err := r.Products().DecreaseStock(ctx, l.product.ID, l.quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Another checkout took the units between our read and this write.
			return nil, stockLost(ctx, r, l)
		}
	}

	order := snapshotOrder(userID, addr, in, lines, total)
	if err := r.Orders().Create(ctx, order); err != nil {
		return nil, err
	}

	if in.Payment != nil {
		if err := r.Payments().Create(ctx, in.Payment.toModel(order.ID, total)); err != nil {
			return nil, err
		}
	}

	return &OrderResult{OrderID: order.ID, Status: order.Status, TotalAmount: total}, nil
}

func resolveAddress(ctx context.Context, r repositories.Repositories, userID string, spec AddressSpec) (*models.Address, error) {
	switch a := spec.(type) {
	case nil:
		return nil, ErrMissingShippingInfo
	case AddressByID:
		if strings.TrimSpace(a.ID) == "" {
			return nil, ErrMissingShippingInfo
		}
		addr, err := r.Addresses().GetForUser(ctx, userID, a.ID)
		if err != nil {
			return nil, mapNotFound(err, ErrAddressNotFound)
		}
		return addr, nil
	case InlineAddress:
		if missing := a.missingFields(); len(missing) > 0 {
			return nil, fmt.Errorf("%w: missing %s", ErrMissingShippingInfo, strings.Join(missing, ", "))
		}
		addr := a.toModel(userID)
		count, err := r.Addresses().CountByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		addr.IsDefault = count == 0
		if err := r.Addresses().Create(ctx, addr); err != nil {
			return nil, err
		}
		return addr, nil
	default:
		return nil, fmt.Errorf("unsupported address spec %T", spec)
	}
}

func stockLost(ctx context.Context, r repositories.Repositories, l checkoutLine) error {
	current, err := r.Products().GetByID(ctx, l.product.ID)
	if err != nil {
		return mapNotFound(err, &ProductNotFoundError{ProductID: l.product.ID})
	}
	return &InsufficientStockError{
		ProductID:   current.ID,
		ProductName: current.Name,
		Requested:   l.quantity,
		Available:   current.Stock,
	}
}

// Statuses an order can still leave. Customers may only cancel before shipping.
var (
	customerCancellable = []models.OrderStatus{models.OrderStatusPending, models.OrderStatusPaid}
	staffChangeable     = []models.OrderStatus{models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusShipped}
)

// CancelOrder cancels one of the user's orders and puts its units back in stock.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	var order *models.Order
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		o, err := r.Orders().GetForUser(ctx, userID, orderID)
		if err != nil {
			return mapNotFound(err, ErrOrderNotFound)
		}
		if err := cancelRejection(o.Status); err != nil {
			return err
		}
		if err := cancelInTx(ctx, r, o, customerCancellable); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.orderCancelled(ctx, order)
	return order, nil
}

func cancelRejection(status models.OrderStatus) error {
	switch status {
	case models.OrderStatusCancelled:
		return ErrAlreadyCancelled
	case models.OrderStatusShipped, models.OrderStatusDelivered:
		return ErrAlreadyCompleted
	}
	return nil
}

// cancelInTx flips the order to cancelled while it is still in one of from, then
// restores stock. Losing the flip to a concurrent change restores nothing.
func cancelInTx(ctx context.Context, r repositories.Repositories, o *models.Order, from []models.OrderStatus) error {
	ok, err := r.Orders().UpdateStatus(ctx, o.ID, models.OrderStatusCancelled, from...)
	if err != nil {
		return err
	}
	if !ok {
		current, err := currentStatus(ctx, r, o.ID)
		if err != nil {
			return err
		}
		if rejected := cancelRejection(current); rejected != nil {
			return rejected
		}
		return fmt.Errorf("%w: order is %s", ErrInvalidStatusTransition, current)
	}

	for _, item := range o.Items {
		// Removed and unlimited products report false here; there is nothing to restore.
		if _, err := r.Products().IncreaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	o.Status = models.OrderStatusCancelled
	return nil
}

// currentStatus rereads the status after a conditional update matched no row.
func currentStatus(ctx context.Context, r repositories.Repositories, orderID string) (models.OrderStatus, error) {
	o, err := r.Orders().GetByID(ctx, orderID)
	if err != nil {
		return "", mapNotFound(err, ErrOrderNotFound)
	}
	return o.Status, nil
}

// ListOrders returns the user's orders newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.Orders().ListByUserID(ctx, userID)
}

// GetOrder returns one of the user's orders with its items.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.store.Orders().GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, mapNotFound(err, ErrOrderNotFound)
	}
	return order, nil
}

// UpdateOrderStatus moves an order to status on behalf of staff. Cancelled and
// delivered orders are final; cancelling restores stock like CancelOrder.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalid("invalid order status: %s", status)
	}

	var order *models.Order
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		o, err := r.Orders().GetByID(ctx, orderID)
		if err != nil {
			return mapNotFound(err, ErrOrderNotFound)
		}
		if o.Status == models.OrderStatusCancelled || o.Status == models.OrderStatusDelivered {
			return fmt.Errorf("%w: order is %s", ErrInvalidStatusTransition, o.Status)
		}
		if status == models.OrderStatusCancelled {
			if err := cancelInTx(ctx, r, o, staffChangeable); err != nil {
				if errors.Is(err, ErrAlreadyCancelled) || errors.Is(err, ErrAlreadyCompleted) {
					return fmt.Errorf("%w: %v", ErrInvalidStatusTransition, err)
				}
				return err
			}
			order = o
			return nil
		}

		ok, err := r.Orders().UpdateStatus(ctx, o.ID, status, staffChangeable...)
		if err != nil {
			return err
		}
		if !ok {
			current, err := currentStatus(ctx, r, o.ID)
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: order is %s", ErrInvalidStatusTransition, current)
		}
		o.Status = status
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == models.OrderStatusCancelled {
		s.orderCancelled(ctx, order)
	}
	s.log.Info("order status updated", zap.String("order_id", orderID), zap.String("status", string(status)))
	return order, nil
}

func (s *OrderService) checkoutFailed(ctx context.Context, source, userID string, err error) error {
	reason := failureReason(err)
	s.metrics.RecordCheckoutFailure(ctx, source, reason)
	if reason == "internal" {
		s.log.Error("checkout failed", zap.String("source", source), zap.String("user_id", userID), zap.Error(err))
	} else {
		s.log.Info("checkout rejected", zap.String("source", source), zap.String("user_id", userID), zap.String("reason", reason))
	}
	return err
}

func (s *OrderService) orderPlaced(ctx context.Context, source, userID string, res *OrderResult) {
	s.metrics.RecordOrderPlaced(ctx, source, res.TotalAmount)
	s.log.Info("order placed",
		zap.String("order_id", res.OrderID),
		zap.String("user_id", userID),
		zap.String("source", source),
		zap.String("total", res.TotalAmount.StringFixed(2)))
	s.publish(ctx, OrderEvent{
		Event:       EventOrderPlaced,
		OrderID:     res.OrderID,
		UserID:      userID,
		Status:      res.Status,
		TotalAmount: res.TotalAmount,
	})
}

func (s *OrderService) orderCancelled(ctx context.Context, o *models.Order) {
	s.metrics.RecordOrderCancelled(ctx)
	s.log.Info("order cancelled", zap.String("order_id", o.ID), zap.String("user_id", o.UserID))
	s.publish(ctx, OrderEvent{
		Event:       EventOrderCancelled,
		OrderID:     o.ID,
		UserID:      o.UserID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
	})
}

// publish is best effort: the order is already committed, so failures are only logged.
func (s *OrderService) publish(ctx context.Context, ev OrderEvent) {
	if s.publisher == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	body, err := json.Marshal(ev)
	if err != nil {
		s.log.Warn("failed to marshal order event", zap.String("order_id", ev.OrderID), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, ev.Event, body); err != nil {
		s.log.Warn("failed to publish order event",
			zap.String("event", ev.Event),
			zap.String("order_id", ev.OrderID),
			zap.Error(err))
	}
}
