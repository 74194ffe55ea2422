package repositories

import (
	"fmt"

	"goldlegacy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AddressRepository defines the interface for saved-address data access.
type AddressRepository interface {
	ListByUser(userID string) ([]models.UserAddress, error)
	GetByID(id string) (*models.UserAddress, error)
	Create(address *models.UserAddress) error
	Delete(id string) error
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

// ListByUser returns a user's saved addresses, newest first.
func (r *GORMAddressRepository) ListByUser(userID string) ([]models.UserAddress, error) {
	var addresses []models.UserAddress
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses for user %s: %w", userID, err)
	}
	return addresses, nil
}

// GetByID retrieves a saved address by its ID.
func (r *GORMAddressRepository) GetByID(id string) (*models.UserAddress, error) {
	var address models.UserAddress
	if err := r.db.First(&address, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("address with ID %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get address by ID %s: %w", id, err)
	}
	return &address, nil
}

// Create creates a new saved address, generating an ID when absent.
func (r *GORMAddressRepository) Create(address *models.UserAddress) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	if err := r.db.Create(address).Error; err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

// Delete deletes a saved address by its ID.
func (r *GORMAddressRepository) Delete(id string) error {
	res := r.db.Delete(&models.UserAddress{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("address with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
