package services

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService handles business logic related to products and categories.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
	}
}

// ListProducts retrieves the products matching filter.
func (s *ProductService) ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, invalid("min_price is greater than max_price")
	}
	if filter.MinStock != nil && filter.MaxStock != nil && *filter.MinStock > *filter.MaxStock {
		return nil, invalid("min_stock is greater than max_stock")
	}
	return s.repo.List(ctx, filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, &ProductNotFoundError{ProductID: id})
	}
	return product, nil
}

// Actor is the authenticated caller of an operation that checks ownership.
type Actor struct {
	UserID string
	Role   models.Role
}

func (a Actor) owns(p *models.Product) bool {
	return a.Role == models.RoleAdmin || (p.SellerID != "" && p.SellerID == a.UserID)
}

// ListSellerProducts lists the products a seller listed. Admins may name another
// seller; everyone else always gets their own.
func (s *ProductService) ListSellerProducts(ctx context.Context, actor Actor, sellerID string) ([]models.Product, error) {
	if actor.Role != models.RoleAdmin || sellerID == "" {
		sellerID = actor.UserID
	}
	return s.repo.List(ctx, repositories.ProductFilter{SellerID: sellerID})
}

// CreateProduct lists a new product owned by actor.
func (s *ProductService) CreateProduct(ctx context.Context, actor Actor, product *models.Product) error {
	if err := s.validate(ctx, product); err != nil {
		return err
	}
	product.SellerID = actor.UserID
	return s.repo.Create(ctx, product)
}

// UpdateProduct updates an existing product the actor owns.
func (s *ProductService) UpdateProduct(ctx context.Context, actor Actor, product *models.Product) error {
	if err := s.authorize(ctx, actor, product.ID); err != nil {
		return err
	}
	if err := s.validate(ctx, product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return mapNotFound(err, &ProductNotFoundError{ProductID: product.ID})
	}
	return nil
}

// DeleteProduct removes a product the actor owns from the catalog. Past orders
// keep their snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, actor Actor, id string) error {
	if err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapNotFound(err, &ProductNotFoundError{ProductID: id})
	}
	return nil
}

func (s *ProductService) authorize(ctx context.Context, actor Actor, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err, &ProductNotFoundError{ProductID: id})
	}
	if !actor.owns(existing) {
		return ErrForbidden
	}
	return nil
}

func (s *ProductService) validate(ctx context.Context, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("name is required")
	}
	if p.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	if err := wholeCents("price", p.Price); err != nil {
		return err
	}
	if p.Stock < 0 {
		return invalid("stock must not be negative")
	}
	if p.CategoryID != nil {
		if *p.CategoryID == "" {
			p.CategoryID = nil
			return nil
		}
		if _, err := s.categories.GetByID(ctx, *p.CategoryID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return invalid("category %s does not exist", *p.CategoryID)
			}
			return err
		}
	}
	return nil
}

// ListCategories returns every category ordered by name.
func (s *ProductService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// CreateCategory adds a category.
func (s *ProductService) CreateCategory(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return invalid("name is required")
	}
	return s.categories.Create(ctx, category)
}
