package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's shopping cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Patch("/items/:productId/reduce", h.HandleReduceItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

// CartItemRequest adds units of a product to the cart.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// ReduceRequest lowers a cart line. Quantity defaults to 1.
type ReduceRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// HandleGetCart returns the cart with its subtotal.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cart)
}

// HandleAddItem adds a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req CartItemRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	item, err := h.service.AddToCart(c.UserContext(), middleware.CurrentUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleReduceItem lowers the quantity of a line, removing it at zero.
func (h *CartHandler) HandleReduceItem(c *fiber.Ctx) error {
	req := ReduceRequest{}
	if len(c.Body()) > 0 {
		if ok, err := bind(c, h.validate, &req); !ok {
			return err
		}
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.service.ReduceCartItem(c.UserContext(), middleware.CurrentUserID(c), c.Params("productId"), req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	if item == nil {
		return c.JSON(fiber.Map{"message": "Item removed from cart"})
	}
	return c.JSON(item)
}

// HandleRemoveItem deletes a product's line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.service.RemoveFromCart(c.UserContext(), middleware.CurrentUserID(c), c.Params("productId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	if err := h.service.ClearCart(c.UserContext(), middleware.CurrentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
