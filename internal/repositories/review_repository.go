package repositories

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewRepository defines the interface for product review data access.
type ReviewRepository interface {
	// Upsert creates the user's review of a product or replaces its rating and comment.
	Upsert(ctx context.Context, review *models.Review) error
	GetForUser(ctx context.Context, userID, productID string) (*models.Review, error)
	ListByProductID(ctx context.Context, productID string) ([]models.Review, error)
	Delete(ctx context.Context, userID, productID string) error
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{db: db}
}

// Upsert creates the user's review of a product or overwrites the existing one.
func (r *GORMReviewRepository) Upsert(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).
		Create(review).Error; err != nil {
		return fmt.Errorf("failed to save review for product %s: %w", review.ProductID, err)
	}
	return nil
}

// GetForUser returns the user's review of a product.
func (r *GORMReviewRepository) GetForUser(ctx context.Context, userID, productID string) (*models.Review, error) {
	var rv models.Review
	if err := r.db.WithContext(ctx).
		First(&rv, "user_id = ? AND product_id = ?", userID, productID).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("review of product %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review of product %s: %w", productID, err)
	}
	return &rv, nil
}

// ListByProductID returns a product's reviews, newest first.
func (r *GORMReviewRepository) ListByProductID(ctx context.Context, productID string) ([]models.Review, error) {
	var list []models.Review
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews for product %s: %w", productID, err)
	}
	return list, nil
}

// Delete removes the user's review of a product.
func (r *GORMReviewRepository) Delete(ctx context.Context, userID, productID string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Review{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete review of product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("review of product %s: %w", productID, ErrNotFound)
	}
	return nil
}
