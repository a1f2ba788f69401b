package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

// Create saves a new address, assigning an ID when it has none.
func (r *GORMAddressRepository) Create(ctx context.Context, address *models.Address) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

// ListByUserID returns the default address first, then the rest oldest first.
func (r *GORMAddressRepository) ListByUserID(ctx context.Context, userID string) ([]models.Address, error) {
	var list []models.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default desc, created_at asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list addresses for user %s: %w", userID, err)
	}
	return list, nil
}

// CountByUserID returns how many addresses the user has saved.
func (r *GORMAddressRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count addresses for user %s: %w", userID, err)
	}
	return count, nil
}

// GetForUser returns the address only when it belongs to userID.
func (r *GORMAddressRepository) GetForUser(ctx context.Context, userID, addressID string) (*models.Address, error) {
	var a models.Address
	if err := r.db.WithContext(ctx).
		First(&a, "id = ? AND user_id = ?", addressID, userID).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("address %s: %w", addressID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get address %s: %w", addressID, err)
	}
	return &a, nil
}

// GetDefault returns the user's default address.
func (r *GORMAddressRepository) GetDefault(ctx context.Context, userID string) (*models.Address, error) {
	var a models.Address
	if err := r.db.WithContext(ctx).First(&a, "user_id = ? AND is_default = ?", userID, true).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("default address of user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get default address of user %s: %w", userID, err)
	}
	return &a, nil
}

// Update writes the contact and shipping columns. IsDefault is only changed by SetDefault.
func (r *GORMAddressRepository) Update(ctx context.Context, address *models.Address) error {
	res := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ? AND user_id = ?", address.ID, address.UserID).
		Select(
			"first_name",
			"last_name",
			"email",
			"phone",
			"street_address",
			"city",
			"state",
			"zip",
			"country",
		).
		Updates(address)
	if res.Error != nil {
		return fmt.Errorf("failed to update address %s: %w", address.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address %s: %w", address.ID, ErrNotFound)
	}
	return nil
}

// Delete removes one of the user's addresses.
func (r *GORMAddressRepository) Delete(ctx context.Context, userID, addressID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete address %s: %w", addressID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address %s: %w", addressID, ErrNotFound)
	}
	return nil
}

// SetDefault makes addressID the user's only default address.
func (r *GORMAddressRepository) SetDefault(ctx context.Context, userID, addressID string) error {
	if _, err := r.GetForUser(ctx, userID, addressID); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error; err != nil {
		return fmt.Errorf("failed to clear default address for user %s: %w", userID, err)
	}

	res := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Update("is_default", true)
	if res.Error != nil {
		return fmt.Errorf("failed to set default address %s: %w", addressID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address %s: %w", addressID, ErrNotFound)
	}
	return nil
}
