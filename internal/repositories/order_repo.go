package repositories

import (
	"fmt"

	"goldlegacy/internal/models"

	"gorm.io/gorm"
)

// OrderFilter scopes order listings. A non-nil UserID restricts results to
// that customer's orders.
type OrderFilter struct {
	UserID   *string
	Page     int
	PageSize int
}

// OrderRepository defines the interface for order data access. Order rows are
// created inside the placement transaction, not through this interface.
type OrderRepository interface {
	GetByID(id string) (*models.Order, error)
	List(filter OrderFilter) ([]models.Order, int64, error)
	All() ([]models.Order, error)
	UpdateStatus(id string, status models.OrderStatus) (*models.Order, error)
}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// GetByID retrieves an order with its items and their products.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items.Product").First(&order, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// List returns a page of orders, newest first, plus the total count.
func (r *GORMOrderRepository) List(filter OrderFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize, 20)

	var orders []models.Order
	err := query.
		Preload("Items.Product").
		Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// All returns every order with items and products, newest first. Used by the
// spreadsheet export.
func (r *GORMOrderRepository) All() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets an order's status and returns the updated order.
func (r *GORMOrderRepository) UpdateStatus(id string, status models.OrderStatus) (*models.Order, error) {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order with ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	return r.GetByID(id)
}
