package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles HTTP requests for order payments.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the payment routes.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	paymentRoutes := router.Group("/payments", auth)
	paymentRoutes.Post("/", h.HandleRecordPayment)
	paymentRoutes.Get("/order/:orderId", h.HandleListPayments)
	paymentRoutes.Post("/intent/:orderId", h.HandleCreateIntent)
}

// RecordPaymentRequest attaches a processor result to an order.
type RecordPaymentRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	PaymentRequest
}

// HandleRecordPayment stores a payment for one of the caller's orders.
func (h *PaymentHandler) HandleRecordPayment(c *fiber.Ctx) error {
	var req RecordPaymentRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	payment, err := h.service.RecordPayment(c.UserContext(), middleware.CurrentUserID(c), services.RecordPaymentInput{
		OrderID:             req.OrderID,
		PaymentConfirmation: *req.PaymentRequest.toConfirmation(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// HandleListPayments lists the payments recorded for an order.
func (h *PaymentHandler) HandleListPayments(c *fiber.Ctx) error {
	list, err := h.service.ListPayments(c.UserContext(), middleware.CurrentUserID(c), c.Params("orderId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// HandleCreateIntent asks the processor for a payment intent covering the order total.
func (h *PaymentHandler) HandleCreateIntent(c *fiber.Ctx) error {
	intent, err := h.service.CreatePaymentIntent(c.UserContext(), middleware.CurrentUserID(c), c.Params("orderId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(intent)
}
