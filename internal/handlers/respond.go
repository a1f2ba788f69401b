package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// bind parses the JSON body into dst and validates it. When it reports false the
// 400 response has already been written and the returned error must be returned as is.
func bind(c *fiber.Ctx, v *validator.Validate, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := v.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, err
		}
		errorMessages := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}

// respondError maps service errors to an HTTP status and writes the error body.
// Anything unrecognised is logged and hidden behind a 500.
func respondError(c *fiber.Ctx, err error) error {
	var notFound *services.ProductNotFoundError
	var stock *services.InsufficientStockError

	switch {
	case errors.As(err, &stock):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":    "Insufficient stock",
			"error":      err.Error(),
			"product_id": stock.ProductID,
			"requested":  stock.Requested,
			"available":  stock.Available,
		})
	case errors.As(err, &notFound):
		return errorBody(c, fiber.StatusNotFound, "Product not found", err)
	case errors.Is(err, services.ErrCartEmpty):
		return errorBody(c, fiber.StatusBadRequest, "Cart is empty", err)
	case errors.Is(err, services.ErrMissingShippingInfo), errors.Is(err, services.ErrInvalidInput):
		return errorBody(c, fiber.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, services.ErrAddressNotFound):
		return errorBody(c, fiber.StatusNotFound, "Address not found", err)
	case errors.Is(err, services.ErrOrderNotFound):
		return errorBody(c, fiber.StatusNotFound, "Order not found", err)
	case errors.Is(err, services.ErrCartItemNotFound), errors.Is(err, services.ErrNotFound):
		return errorBody(c, fiber.StatusNotFound, "Not found", err)
	case errors.Is(err, services.ErrAlreadyCancelled),
		errors.Is(err, services.ErrAlreadyCompleted),
		errors.Is(err, services.ErrInvalidStatusTransition):
		return errorBody(c, fiber.StatusConflict, "Order status does not allow this", err)
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrAlreadyInWishlist):
		return errorBody(c, fiber.StatusConflict, "Already exists", err)
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidRefreshToken):
		return errorBody(c, fiber.StatusUnauthorized, "Authentication failed", err)
	case errors.Is(err, services.ErrReviewNotAllowed), errors.Is(err, services.ErrForbidden):
		return errorBody(c, fiber.StatusForbidden, "Not allowed", err)
	case errors.Is(err, services.ErrPaymentsDisabled):
		return errorBody(c, fiber.StatusServiceUnavailable, "Payments unavailable", err)
	}

	middleware.Logger(c).Error("request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

func errorBody(c *fiber.Ctx, status int, message string, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
