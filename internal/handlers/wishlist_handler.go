package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// WishlistHandler handles HTTP requests for the caller's wishlist.
type WishlistHandler struct {
	service  *services.WishlistService
	validate *validator.Validate
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(service *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the wishlist routes.
func (h *WishlistHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	wishlistRoutes := router.Group("/wishlist", auth)
	wishlistRoutes.Get("/", h.HandleGetWishlist)
	wishlistRoutes.Post("/items", h.HandleAddItem)
	wishlistRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	wishlistRoutes.Delete("/", h.HandleClear)
}

// WishlistItemRequest names the product to save.
type WishlistItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// HandleGetWishlist lists the saved products.
func (h *WishlistHandler) HandleGetWishlist(c *fiber.Ctx) error {
	items, err := h.service.GetWishlist(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// HandleAddItem saves a product to the wishlist.
func (h *WishlistHandler) HandleAddItem(c *fiber.Ctx) error {
	var req WishlistItemRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	item, err := h.service.AddToWishlist(c.UserContext(), middleware.CurrentUserID(c), req.ProductID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// HandleRemoveItem removes a product from the wishlist.
func (h *WishlistHandler) HandleRemoveItem(c *fiber.Ctx) error {
	if err := h.service.RemoveFromWishlist(c.UserContext(), middleware.CurrentUserID(c), c.Params("productId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleClear empties the wishlist.
func (h *WishlistHandler) HandleClear(c *fiber.Ctx) error {
	removed, err := h.service.ClearWishlist(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Wishlist cleared",
		"removed": removed,
	})
}
