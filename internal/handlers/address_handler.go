package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddressHandler handles HTTP requests for the caller's address book.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the address routes.
func (h *AddressHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	addressRoutes := router.Group("/addresses", auth)
	addressRoutes.Get("/", h.HandleListAddresses)
	addressRoutes.Get("/default", h.HandleGetDefault)
	addressRoutes.Post("/", h.HandleCreateAddress)
	addressRoutes.Put("/:id", h.HandleUpdateAddress)
	addressRoutes.Delete("/:id", h.HandleDeleteAddress)
	addressRoutes.Post("/:id/default", h.HandleSetDefault)
}

// AddressRequest is a full address.
type AddressRequest struct {
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,max=30"`
	StreetAddress string `json:"street_address" validate:"required"`
	City          string `json:"city" validate:"required"`
	State         string `json:"state" validate:"required"`
	Zip           string `json:"zip" validate:"required,max=20"`
	Country       string `json:"country" validate:"required"`
}

func (r *AddressRequest) toInput() services.AddressInput {
	return services.AddressInput{
		Contact: services.ContactInfo{
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Phone:     r.Phone,
		},
		Shipping: services.ShippingInfo{
			StreetAddress: r.StreetAddress,
			City:          r.City,
			State:         r.State,
			Zip:           r.Zip,
			Country:       r.Country,
		},
	}
}

// HandleListAddresses lists the caller's addresses, default first.
func (h *AddressHandler) HandleListAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.List(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(addresses)
}

// HandleCreateAddress saves a new address.
func (h *AddressHandler) HandleCreateAddress(c *fiber.Ctx) error {
	var req AddressRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	address, err := h.service.Create(c.UserContext(), middleware.CurrentUserID(c), req.toInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// HandleUpdateAddress replaces an address. Orders placed with it keep their copy.
func (h *AddressHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	var req AddressRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	address, err := h.service.Update(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"), req.toInput())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(address)
}

// HandleDeleteAddress removes an address.
func (h *AddressHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetDefault returns the caller's default address.
func (h *AddressHandler) HandleGetDefault(c *fiber.Ctx) error {
	address, err := h.service.GetDefault(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(address)
}

// HandleSetDefault makes an address the caller's default.
func (h *AddressHandler) HandleSetDefault(c *fiber.Ctx) error {
	address, err := h.service.SetDefault(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(address)
}
