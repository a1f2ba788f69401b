package services

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/payments"
	"storefront/pkg/telemetry"

	"go.uber.org/zap"
)

// RecordPaymentInput records a processor result against an existing order.
type RecordPaymentInput struct {
	OrderID string
	PaymentConfirmation
}

// PaymentService records payments and asks the processor for payment intents.
type PaymentService struct {
	store    repositories.Store
	provider payments.Provider // nil when no processor is configured
	currency string
	log      *zap.Logger
}

// NewPaymentService creates a new PaymentService. provider may be nil.
func NewPaymentService(store repositories.Store, provider payments.Provider, currency string, log *zap.Logger) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{
		store:    store,
		provider: provider,
		currency: strings.ToLower(currency),
		log:      telemetry.OrNop(log),
	}
}

// RecordPayment stores a payment for one of the user's orders. A succeeded payment
// moves a pending order to paid in the same transaction.
func (s *PaymentService) RecordPayment(ctx context.Context, userID string, in RecordPaymentInput) (*models.Payment, error) {
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, invalid("order_id is required")
	}
	if strings.TrimSpace(in.Currency) == "" {
		in.Currency = s.currency
	}
	if err := in.PaymentConfirmation.validate(); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		order, err := r.Orders().GetForUser(ctx, userID, in.OrderID)
		if err != nil {
			return mapNotFound(err, ErrOrderNotFound)
		}
		if order.Status == models.OrderStatusCancelled {
			return fmt.Errorf("%w: order is cancelled", ErrInvalidStatusTransition)
		}

		payment = in.PaymentConfirmation.toModel(order.ID, order.TotalAmount)
		if err := r.Payments().Create(ctx, payment); err != nil {
			return err
		}

		if !strings.EqualFold(payment.Status, models.PaymentStatusSucceeded) || order.Status != models.OrderStatusPending {
			return nil
		}
		ok, err := r.Orders().UpdateStatus(ctx, order.ID, models.OrderStatusPaid, models.OrderStatusPending)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		// The order left pending after we read it; a cancellation wins over the payment.
		current, err := currentStatus(ctx, r, order.ID)
		if err != nil {
			return err
		}
		if current == models.OrderStatusCancelled {
			return fmt.Errorf("%w: order is cancelled", ErrInvalidStatusTransition)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payment recorded",
		zap.String("order_id", payment.OrderID),
		zap.String("payment_id", payment.ID),
		zap.String("status", payment.Status))
	return payment, nil
}

// ListPayments returns the payments of one of the user's orders, oldest first.
func (s *PaymentService) ListPayments(ctx context.Context, userID, orderID string) ([]models.Payment, error) {
	if _, err := s.store.Orders().GetForUser(ctx, userID, orderID); err != nil {
		return nil, mapNotFound(err, ErrOrderNotFound)
	}
	return s.store.Payments().ListByOrderID(ctx, orderID)
}

// CreatePaymentIntent asks the processor to prepare a charge for the stored order total.
// No database transaction is held while the processor is called.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID, orderID string) (*payments.Intent, error) {
	if s.provider == nil {
		return nil, ErrPaymentsDisabled
	}

	order, err := s.store.Orders().GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, mapNotFound(err, ErrOrderNotFound)
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidStatusTransition, order.Status)
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, payments.IntentRequest{
		OrderID:        order.ID,
		Amount:         order.TotalAmount,
		Currency:       s.currency,
		IdempotencyKey: "order-" + order.ID,
		Metadata:       map[string]string{"user_id": userID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent for order %s: %w", order.ID, err)
	}
	return &intent, nil
}
