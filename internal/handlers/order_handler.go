package handlers

import (
	"encoding/json"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the order routes. Every route needs an authenticated user.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/order", auth)
	orderRoutes.Post("/place", h.HandlePlaceOrder)
	orderRoutes.Post("/buy-now", h.HandleBuyNow)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/cancel/:id", h.HandleCancelOrder)
	orderRoutes.Patch("/:id/status",
		middleware.RequireRole(models.RoleSeller, models.RoleAdmin),
		h.HandleUpdateOrderStatus)
}

// ContactRequest is the contact half of an inline checkout address.
type ContactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
}

// ShippingRequest is the delivery half of an inline checkout address.
type ShippingRequest struct {
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
	Country       string `json:"country"`
}

// PaymentRequest is a payment the client completed with the processor.
type PaymentRequest struct {
	ExternalID string          `json:"external_id" validate:"required"`
	Method     string          `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency" validate:"omitempty,len=3"`
	Status     string          `json:"status" validate:"required"`
	Metadata   json.RawMessage `json:"metadata"`
}

func (p *PaymentRequest) toConfirmation() *services.PaymentConfirmation {
	if p == nil {
		return nil
	}
	var metadata string
	if len(p.Metadata) > 0 && string(p.Metadata) != "null" {
		metadata = string(p.Metadata)
	}
	return &services.PaymentConfirmation{
		ExternalID: p.ExternalID,
		Method:     p.Method,
		Amount:     p.Amount,
		Currency:   p.Currency,
		Status:     p.Status,
		Metadata:   metadata,
	}
}

// PlaceOrderRequest is the checkout body. Either address_id or both contact and
// shipping must be given; address_id wins when both are present.
type PlaceOrderRequest struct {
	AddressID      string           `json:"address_id"`
	Contact        *ContactRequest  `json:"contact"`
	Shipping       *ShippingRequest `json:"shipping"`
	ShippingMethod string           `json:"shipping_method" validate:"omitempty,oneof=standard express overnight"`
	ShippingCost   decimal.Decimal  `json:"shipping_cost"`
	Payment        *PaymentRequest  `json:"payment"`
}

func (r *PlaceOrderRequest) addressSpec() services.AddressSpec {
	if r.AddressID != "" {
		return services.AddressByID{ID: r.AddressID}
	}
	if r.Contact == nil && r.Shipping == nil {
		return nil
	}
	var spec services.InlineAddress
	if r.Contact != nil {
		spec.Contact = services.ContactInfo(*r.Contact)
	}
	if r.Shipping != nil {
		spec.Shipping = services.ShippingInfo(*r.Shipping)
	}
	return spec
}

func (r *PlaceOrderRequest) toInput() services.PlaceOrderInput {
	return services.PlaceOrderInput{
		Address:        r.addressSpec(),
		ShippingMethod: models.ShippingMethod(r.ShippingMethod),
		ShippingCost:   r.ShippingCost,
		Payment:        r.Payment.toConfirmation(),
	}
}

// BuyNowRequest orders one product without touching the cart.
type BuyNowRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	PlaceOrderRequest
}

func orderResultBody(res *services.OrderResult) fiber.Map {
	return fiber.Map{
		"message":      "Order placed successfully",
		"order_id":     res.OrderID,
		"status":       res.Status,
		"total_amount": res.TotalAmount.StringFixed(2),
	}
}

// HandlePlaceOrder turns the caller's cart into an order.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req PlaceOrderRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	res, err := h.service.PlaceOrder(c.UserContext(), middleware.CurrentUserID(c), req.toInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(orderResultBody(res))
}

// HandleBuyNow orders a single product directly.
func (h *OrderHandler) HandleBuyNow(c *fiber.Ctx) error {
	var req BuyNowRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	res, err := h.service.BuyNow(c.UserContext(), middleware.CurrentUserID(c), services.BuyNowInput{
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		PlaceOrderInput: req.toInput(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(orderResultBody(res))
}

// HandleGetOrders lists the caller's orders, newest first.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels one of the caller's orders and restocks its items.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

// UpdateStatusRequest is the body of a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), c.Params("id"), models.OrderStatus(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
		"order":   order,
	})
}
