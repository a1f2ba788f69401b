package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"
)

// IntentRequest asks the processor to prepare a charge for one order.
type IntentRequest struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
	// IdempotencyKey makes retries of the same request return the same intent.
	IdempotencyKey string
	Metadata       map[string]string
}

// Intent is the processor's answer; ClientSecret is handed to the browser to confirm the charge.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// Provider creates payment intents.
type Provider interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (Intent, error)
}

type stripePaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeConfig configures the StripeProvider.
type StripeConfig struct {
	APIKey   string
	Backends *stripe.Backends
	Logger   *zap.Logger

	intents stripePaymentIntentAPI
}

// StripeProvider implements Provider with the Stripe PaymentIntents API.
type StripeProvider struct {
	intents stripePaymentIntentAPI
	log     *zap.Logger
}

// NewStripeProvider constructs a StripeProvider using the given configuration.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	intents := cfg.intents
	if intents == nil {
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			return nil, errors.New("stripe: api key is required")
		}
		intents = client.New(apiKey, cfg.Backends).PaymentIntents
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &StripeProvider{intents: intents, log: log}, nil
}

// CreatePaymentIntent creates a Stripe payment intent for req.Amount.
func (p *StripeProvider) CreatePaymentIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	amount, err := ToMinorUnits(req.Amount)
	if err != nil {
		return Intent{}, err
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		return Intent{}, errors.New("stripe: currency is required")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		params.SetIdempotencyKey(key)
	}
	params.AddMetadata("order_id", req.OrderID)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.intents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	p.log.Info("payment intent created",
		zap.String("order_id", req.OrderID),
		zap.String("intent_id", pi.ID),
		zap.Int64("amount", pi.Amount))

	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// ToMinorUnits converts a two-decimal amount into cents. Amounts with sub-cent
// precision or a non-positive value are rejected.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("payments: amount must be positive, got %s", amount.String())
	}
	cents := amount.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("payments: amount %s has more than two decimal places", amount.String())
	}
	return cents.IntPart(), nil
}
