package services

import (
	"strings"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"
)

// AddressInput is the saved-address request body.
type AddressInput struct {
	Label           string `json:"label" validate:"omitempty,max=50"`
	FullName        string `json:"fullName" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty"`
	ShippingAddress string `json:"shippingAddress" validate:"required,min=5"`
	ShippingCity    string `json:"shippingCity" validate:"required,min=2"`
}

// AddressService manages a user's saved shipping addresses.
type AddressService struct {
	repo repositories.AddressRepository
}

// NewAddressService creates a new AddressService.
func NewAddressService(repo repositories.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

// List returns the user's saved addresses.
func (s *AddressService) List(userID string) ([]models.UserAddress, error) {
	return s.repo.ListByUser(userID)
}

// Create saves a new address for the user.
func (s *AddressService) Create(userID string, input AddressInput) (*models.UserAddress, error) {
	address := &models.UserAddress{
		UserID:          userID,
		FullName:        strings.TrimSpace(input.FullName),
		Email:           strings.TrimSpace(input.Email),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		ShippingCity:    strings.TrimSpace(input.ShippingCity),
	}
	if label := strings.TrimSpace(input.Label); label != "" {
		address.Label = &label
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		address.Phone = &phone
	}

	if err := s.repo.Create(address); err != nil {
		return nil, err
	}
	return address, nil
}

// Delete removes one of the user's addresses. Deleting another user's
// address reports not-found rather than revealing it exists.
func (s *AddressService) Delete(userID, addressID string) error {
	address, err := s.repo.GetByID(addressID)
	if err != nil {
		if isNotFound(err) {
			return ErrAddressNotFound
		}
		return err
	}
	if address.UserID != userID {
		return ErrAddressNotFound
	}
	return s.repo.Delete(addressID)
}
