package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for product reviews.
type ReviewHandler struct {
	service  *services.ReviewService
	validate *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the review routes. Listing is public.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	reviewRoutes := router.Group("/reviews")
	reviewRoutes.Get("/product/:productId", h.HandleListReviews)
	reviewRoutes.Get("/product/:productId/user", auth, h.HandleGetUserReview)
	reviewRoutes.Post("/", auth, h.HandleSaveReview)
	reviewRoutes.Delete("/product/:productId", auth, h.HandleDeleteReview)
}

// ReviewRequest creates or replaces the caller's review of a product.
type ReviewRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// HandleListReviews lists a product's reviews, newest first.
func (h *ReviewHandler) HandleListReviews(c *fiber.Ctx) error {
	reviews, err := h.service.ListReviews(c.UserContext(), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reviews)
}

// HandleSaveReview stores the caller's review.
func (h *ReviewHandler) HandleSaveReview(c *fiber.Ctx) error {
	var req ReviewRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	review, err := h.service.SaveReview(c.UserContext(), middleware.CurrentUserID(c), req.ProductID, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// HandleGetUserReview returns the caller's review of a product.
func (h *ReviewHandler) HandleGetUserReview(c *fiber.Ctx) error {
	review, err := h.service.GetUserReview(c.UserContext(), middleware.CurrentUserID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(review)
}

// HandleDeleteReview removes the caller's review of a product.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	if err := h.service.DeleteReview(c.UserContext(), middleware.CurrentUserID(c), c.Params("productId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
