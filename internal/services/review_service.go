package services

import (
	"context"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ReviewService handles product reviews.
type ReviewService struct {
	store repositories.Store
}

// NewReviewService creates a new ReviewService.
func NewReviewService(store repositories.Store) *ReviewService {
	return &ReviewService{store: store}
}

// SaveReview adds the user's review of a product or updates the existing one.
// Only users with a non-cancelled order containing the product may review it.
func (s *ReviewService) SaveReview(ctx context.Context, userID, productID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, invalid("rating must be between 1 and 5")
	}

	if _, err := s.store.Products().GetByID(ctx, productID); err != nil {
		return nil, mapNotFound(err, &ProductNotFoundError{ProductID: productID})
	}
	bought, err := s.store.Orders().HasPurchased(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !bought {
		return nil, ErrReviewNotAllowed
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.store.Reviews().Upsert(ctx, review); err != nil {
		return nil, err
	}
	return s.store.Reviews().GetForUser(ctx, userID, productID)
}

// ListReviews returns a product's reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	return s.store.Reviews().ListByProductID(ctx, productID)
}

// GetUserReview returns the user's own review of a product.
func (s *ReviewService) GetUserReview(ctx context.Context, userID, productID string) (*models.Review, error) {
	review, err := s.store.Reviews().GetForUser(ctx, userID, productID)
	if err != nil {
		return nil, mapNotFound(err, ErrNotFound)
	}
	return review, nil
}

// DeleteReview removes the user's own review of a product.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, productID string) error {
	if err := s.store.Reviews().Delete(ctx, userID, productID); err != nil {
		return mapNotFound(err, ErrNotFound)
	}
	return nil
}
