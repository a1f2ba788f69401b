package services

import (
	"errors"
	"strings"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// AddressSpec tells checkout where to ship: either a saved address of the caller
// (AddressByID) or a new one given inline (InlineAddress).
type AddressSpec interface {
	isAddressSpec()
}

// AddressByID selects one of the caller's saved addresses.
type AddressByID struct {
	ID string
}

// InlineAddress is saved to the caller's address book before the order is written.
type InlineAddress struct {
	Contact  ContactInfo
	Shipping ShippingInfo
}

func (AddressByID) isAddressSpec()   {}
func (InlineAddress) isAddressSpec() {}

// ContactInfo is who receives the order.
type ContactInfo struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// ShippingInfo is where the order is delivered.
type ShippingInfo struct {
	StreetAddress string
	City          string
	State         string
	Zip           string
	Country       string
}

func (a InlineAddress) missingFields() []string {
	fields := []struct{ name, value string }{
		{"first_name", a.Contact.FirstName},
		{"last_name", a.Contact.LastName},
		{"email", a.Contact.Email},
		{"phone", a.Contact.Phone},
		{"street_address", a.Shipping.StreetAddress},
		{"city", a.Shipping.City},
		{"state", a.Shipping.State},
		{"zip", a.Shipping.Zip},
		{"country", a.Shipping.Country},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (a InlineAddress) toModel(userID string) *models.Address {
	return &models.Address{
		UserID:        userID,
		FirstName:     strings.TrimSpace(a.Contact.FirstName),
		LastName:      strings.TrimSpace(a.Contact.LastName),
		Email:         strings.TrimSpace(a.Contact.Email),
		Phone:         strings.TrimSpace(a.Contact.Phone),
		StreetAddress: strings.TrimSpace(a.Shipping.StreetAddress),
		City:          strings.TrimSpace(a.Shipping.City),
		State:         strings.TrimSpace(a.Shipping.State),
		Zip:           strings.TrimSpace(a.Shipping.Zip),
		Country:       strings.TrimSpace(a.Shipping.Country),
	}
}

// PaymentConfirmation is a payment the client already completed with the processor,
// recorded together with the order.
type PaymentConfirmation struct {
	ExternalID string
	Method     string
	// Amount defaults to the order total when zero.
	Amount   decimal.Decimal
	Currency string
	Status   string
	Metadata string
}

func (p *PaymentConfirmation) validate() error {
	if strings.TrimSpace(p.ExternalID) == "" {
		return invalid("payment external id is required")
	}
	if strings.TrimSpace(p.Status) == "" {
		return invalid("payment status is required")
	}
	if strings.TrimSpace(p.Currency) == "" {
		return invalid("payment currency is required")
	}
	if p.Amount.IsNegative() {
		return invalid("payment amount must not be negative")
	}
	return wholeCents("payment amount", p.Amount)
}

func (p *PaymentConfirmation) toModel(orderID string, total decimal.Decimal) *models.Payment {
	amount := p.Amount
	if amount.IsZero() {
		amount = total
	}
	method := strings.TrimSpace(p.Method)
	if method == "" {
		method = "card"
	}
	return &models.Payment{
		OrderID:    orderID,
		ExternalID: strings.TrimSpace(p.ExternalID),
		Method:     method,
		Amount:     amount,
		Currency:   strings.ToLower(strings.TrimSpace(p.Currency)),
		Status:     strings.TrimSpace(p.Status),
		Metadata:   p.Metadata,
	}
}

// PlaceOrderInput is what checkout needs besides the cart itself.
type PlaceOrderInput struct {
	Address        AddressSpec
	ShippingMethod models.ShippingMethod
	ShippingCost   decimal.Decimal
	Payment        *PaymentConfirmation
}

// normalize applies defaults and validates the input. currency is used for a
// payment that does not name one.
func (in *PlaceOrderInput) normalize(currency string) error {
	if in.ShippingMethod == "" {
		in.ShippingMethod = models.ShippingStandard
	}
	if !in.ShippingMethod.Valid() {
		return invalid("unknown shipping method %q", in.ShippingMethod)
	}
	if in.ShippingCost.IsNegative() {
		return invalid("shipping cost must not be negative")
	}
	if err := wholeCents("shipping cost", in.ShippingCost); err != nil {
		return err
	}
	if in.Payment != nil {
		p := *in.Payment
		if strings.TrimSpace(p.Currency) == "" {
			p.Currency = currency
		}
		if err := p.validate(); err != nil {
			return err
		}
		in.Payment = &p
	}
	return nil
}

// wholeCents rejects amounts a decimal(10,2) column would round.
func wholeCents(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return invalid("%s must not have more than two decimal places", field)
	}
	return nil
}

// BuyNowInput orders a single product directly, bypassing the cart.
type BuyNowInput struct {
	ProductID string
	// Quantity defaults to 1 when zero.
	Quantity int
	PlaceOrderInput
}

// OrderResult is returned by a successful checkout.
type OrderResult struct {
	OrderID     string
	Status      models.OrderStatus
	TotalAmount decimal.Decimal
}

// checkoutLine is one product and quantity being bought.
type checkoutLine struct {
	product  *models.Product
	quantity int
}

func orderTotal(lines []checkoutLine, shipping decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.product.Price.Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	return total.Add(shipping)
}

func checkStock(lines []checkoutLine) error {
	for _, l := range lines {
		if !l.product.HasStockFor(l.quantity) {
			return &InsufficientStockError{
				ProductID:   l.product.ID,
				ProductName: l.product.Name,
				Requested:   l.quantity,
				Available:   l.product.Stock,
			}
		}
	}
	return nil
}

func snapshotOrder(userID string, addr *models.Address, in PlaceOrderInput, lines []checkoutLine, total decimal.Decimal) *models.Order {
	status := models.OrderStatusPending
	if in.Payment != nil && strings.EqualFold(strings.TrimSpace(in.Payment.Status), models.PaymentStatusSucceeded) {
		status = models.OrderStatusPaid
	}

	addressID := addr.ID
	order := &models.Order{
		UserID:         userID,
		AddressID:      &addressID,
		Status:         status,
		TotalAmount:    total,
		FirstName:      addr.FirstName,
		LastName:       addr.LastName,
		Email:          addr.Email,
		Phone:          addr.Phone,
		StreetAddress:  addr.StreetAddress,
		City:           addr.City,
		State:          addr.State,
		Zip:            addr.Zip,
		Country:        addr.Country,
		ShippingMethod: in.ShippingMethod,
		ShippingCost:   in.ShippingCost,
		Items:          make([]models.OrderItem, 0, len(lines)),
	}
	for _, l := range lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   l.product.ID,
			ProductName: l.product.Name,
			Quantity:    l.quantity,
			Price:       l.product.Price,
		})
	}
	return order
}

func failureReason(err error) string {
	var notFound *ProductNotFoundError
	var stock *InsufficientStockError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCartEmpty):
		return "cart_empty"
	case errors.As(err, &notFound):
		return "product_not_found"
	case errors.As(err, &stock):
		return "insufficient_stock"
	case errors.Is(err, ErrAddressNotFound):
		return "address_not_found"
	case errors.Is(err, ErrMissingShippingInfo):
		return "missing_shipping_info"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	}
	return "internal"
}
