package services

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// AddressInput carries the editable fields of a saved address.
type AddressInput struct {
	Contact  ContactInfo
	Shipping ShippingInfo
}

// AddressService manages the user's address book.
type AddressService struct {
	store repositories.Store
}

// NewAddressService creates a new AddressService.
func NewAddressService(store repositories.Store) *AddressService {
	return &AddressService{store: store}
}

// Create saves a new address. The user's first address becomes the default.
func (s *AddressService) Create(ctx context.Context, userID string, in AddressInput) (*models.Address, error) {
	spec := InlineAddress(in)
	if missing := spec.missingFields(); len(missing) > 0 {
		return nil, invalid("missing %v", missing)
	}

	addr := spec.toModel(userID)
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		count, err := r.Addresses().CountByUserID(ctx, userID)
		if err != nil {
			return err
		}
		addr.IsDefault = count == 0
		return r.Addresses().Create(ctx, addr)
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

// List returns the user's addresses, default first.
func (s *AddressService) List(ctx context.Context, userID string) ([]models.Address, error) {
	return s.store.Addresses().ListByUserID(ctx, userID)
}

// GetDefault returns the user's default address.
func (s *AddressService) GetDefault(ctx context.Context, userID string) (*models.Address, error) {
	addr, err := s.store.Addresses().GetDefault(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err, ErrAddressNotFound)
	}
	return addr, nil
}

// Update replaces the contact and shipping fields of one of the user's addresses.
func (s *AddressService) Update(ctx context.Context, userID, addressID string, in AddressInput) (*models.Address, error) {
	spec := InlineAddress(in)
	if missing := spec.missingFields(); len(missing) > 0 {
		return nil, invalid("missing %v", missing)
	}

	var updated *models.Address
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		current, err := r.Addresses().GetForUser(ctx, userID, addressID)
		if err != nil {
			return mapNotFound(err, ErrAddressNotFound)
		}
		next := spec.toModel(userID)
		next.ID = current.ID
		if err := r.Addresses().Update(ctx, next); err != nil {
			return mapNotFound(err, ErrAddressNotFound)
		}
		updated, err = r.Addresses().GetForUser(ctx, userID, addressID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes one of the user's addresses. Orders keep their own copy of it.
func (s *AddressService) Delete(ctx context.Context, userID, addressID string) error {
	if err := s.store.Addresses().Delete(ctx, userID, addressID); err != nil {
		return mapNotFound(err, ErrAddressNotFound)
	}
	return nil
}

// SetDefault makes addressID the user's only default address.
func (s *AddressService) SetDefault(ctx context.Context, userID, addressID string) (*models.Address, error) {
	var addr *models.Address
	err := s.store.WithinTx(ctx, func(r repositories.Repositories) error {
		if err := r.Addresses().SetDefault(ctx, userID, addressID); err != nil {
			return mapNotFound(err, ErrAddressNotFound)
		}
		var err error
		addr, err = r.Addresses().GetForUser(ctx, userID, addressID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("set default address: %w", err)
	}
	return addr, nil
}
