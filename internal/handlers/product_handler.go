package handlers

import (
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ProductHandler handles HTTP requests for products and categories.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the catalog routes. Reads are public; writes need a
// seller or admin, categories an admin. Sellers may only change their own products.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)

	sellers := middleware.RequireRole(models.RoleSeller, models.RoleAdmin)
	productRoutes.Get("/mine/list", auth, sellers, h.HandleGetMyProducts)
	productRoutes.Post("/", auth, sellers, h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, sellers, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, sellers, h.HandleDeleteProduct)

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Post("/", auth, middleware.RequireRole(models.RoleAdmin), h.HandleCreateCategory)
}

// ProductRequest is the body for creating or replacing a product.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Unlimited   bool            `json:"unlimited"`
	CategoryID  *string         `json:"category_id"`
}

func (r *ProductRequest) toModel(id string) *models.Product {
	return &models.Product{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Unlimited:   r.Unlimited,
		CategoryID:  r.CategoryID,
	}
}

// HandleGetProducts lists products. Supported query parameters are keyword,
// category_id, min_price, max_price, min_stock and max_stock.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	filter := repositories.ProductFilter{
		Keyword:    c.Query("keyword"),
		CategoryID: c.Query("category_id"),
	}

	var err error
	if filter.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		return badQuery(c, "min_price", err)
	}
	if filter.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		return badQuery(c, "max_price", err)
	}
	if filter.MinStock, err = queryInt(c, "min_stock"); err != nil {
		return badQuery(c, "min_stock", err)
	}
	if filter.MaxStock, err = queryInt(c, "max_stock"); err != nil {
		return badQuery(c, "max_stock", err)
	}

	products, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleGetMyProducts lists the caller's own products. An admin may pass
// ?seller_id= to list another seller's.
func (h *ProductHandler) HandleGetMyProducts(c *fiber.Ctx) error {
	products, err := h.service.ListSellerProducts(c.UserContext(), actor(c), c.Query("seller_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleCreateProduct creates a new product owned by the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	product := req.toModel("")
	if err := h.service.CreateProduct(c.UserContext(), actor(c), product); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the editable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	product := req.toModel(c.Params("id"))
	if err := h.service.UpdateProduct(c.UserContext(), actor(c), product); err != nil {
		return respondError(c, err)
	}

	updated, err := h.service.GetProductByID(c.UserContext(), product.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

// HandleDeleteProduct removes a product from the catalog.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), actor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetCategories lists all categories.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// CategoryRequest is the body for creating a category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

// HandleCreateCategory creates a category.
func (h *ProductHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var req CategoryRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	category := &models.Category{Name: req.Name, Description: req.Description}
	if err := h.service.CreateCategory(c.UserContext(), category); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func actor(c *fiber.Ctx) services.Actor {
	return services.Actor{UserID: middleware.CurrentUserID(c), Role: middleware.CurrentRole(c)}
}

func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func queryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func badQuery(c *fiber.Ctx, key string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid query parameter " + key,
		"error":   err.Error(),
	})
}
