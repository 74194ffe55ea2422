package services

import (
	"errors"
	"fmt"
	"log"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"
	"goldlegacy/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItemInput is one (product, quantity) pair of a checkout request.
type CartItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CheckoutInput carries the contact/shipping fields and the cart. The total
// is always computed server-side, never taken from the caller.
type CheckoutInput struct {
	CustomerName    string          `json:"customerName" validate:"required,min=2"`
	CustomerEmail   string          `json:"customerEmail" validate:"required,email"`
	CustomerPhone   string          `json:"customerPhone" validate:"omitempty"`
	ShippingAddress string          `json:"shippingAddress" validate:"required,min=5"`
	ShippingCity    string          `json:"shippingCity" validate:"required,min=2"`
	Items           []CartItemInput `json:"items" validate:"required,min=1,dive"`
}

// cartLine pairs a requested quantity with the live product row.
type cartLine struct {
	product  models.Product
	quantity int
}

// OrderService handles order placement and lifecycle. The placement
// transaction runs directly on the gorm handle so stock decrement and order
// creation commit or roll back together.
type OrderService struct {
	db        *gorm.DB
	orderRepo repositories.OrderRepository
	audit     *AuditService
	publisher *events.Publisher
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(db *gorm.DB, orderRepo repositories.OrderRepository, audit *AuditService, publisher *events.Publisher) *OrderService {
	return &OrderService{
		db:        db,
		orderRepo: orderRepo,
		audit:     audit,
		publisher: publisher,
	}
}

// resolveCart fetches the referenced products and validates the cart against
// live stock, returning the lines in input order and the computed total.
// Shared by direct checkout and gateway preference creation; neither trusts a
// client-supplied total.
func resolveCart(tx *gorm.DB, items []CartItemInput) ([]cartLine, float64, error) {
	if len(items) == 0 {
		return nil, 0, ErrEmptyItems
	}

	distinct := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, 0, ErrQuantityInvalid
		}
		if !distinct[item.ProductID] {
			distinct[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to load cart products: %w", err)
	}
	if len(products) != len(ids) {
		return nil, 0, ErrProductNotFound
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var total float64
	lines := make([]cartLine, 0, len(items))
	for _, item := range items {
		product := byID[item.ProductID]
		if product.Stock < item.Quantity {
			return nil, 0, ErrInsufficientStock
		}
		total += product.Price * float64(item.Quantity)
		lines = append(lines, cartLine{product: product, quantity: item.Quantity})
	}
	return lines, total, nil
}

// decrementStock takes qty units off a product, guarded so stock never goes
// negative even under concurrent placements: the WHERE clause makes the
// read-check-decrement a single atomic statement.
func decrementStock(tx *gorm.DB, productID string, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// CreateOrder places an order atomically: validates the cart, decrements
// stock, and persists the order with snapshotted unit prices. userID is nil
// for guest checkouts.
func (s *OrderService) CreateOrder(input CheckoutInput, userID *string) (*models.Order, error) {
	var order *models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lines, total, err := resolveCart(tx, input.Items)
		if err != nil {
			return err
		}

		for _, line := range lines {
			if err := decrementStock(tx, line.product.ID, line.quantity); err != nil {
				return err
			}
		}

		order = buildOrder(input, userID, total, lines)
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		pubErr := s.publisher.PublishOrderEvent(events.OrderCreated, map[string]interface{}{
			"orderId": order.ID,
			"status":  string(order.Status),
			"total":   order.Total,
		})
		if pubErr != nil {
			log.Printf("Warning: failed to publish order created event for order %s: %v", order.ID, pubErr)
		}
	}

	return s.orderRepo.GetByID(order.ID)
}

// buildOrder assembles a PENDING order with one item per cart line, unit
// price snapshotted from the product's current price.
func buildOrder(input CheckoutInput, userID *string, total float64, lines []cartLine) *models.Order {
	orderID := uuid.New().String()

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: line.product.ID,
			Quantity:  line.quantity,
			UnitPrice: line.product.Price,
		})
	}

	var phone *string
	if input.CustomerPhone != "" {
		phone = &input.CustomerPhone
	}

	return &models.Order{
		ID:              orderID,
		Status:          models.OrderStatusPending,
		Total:           total,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   phone,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		UserID:          userID,
		Items:           items,
	}
}

// GetOrder retrieves a single order with its items.
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// ListOrders returns orders visible to the caller: admins see everything,
// customers only their own.
func (s *OrderService) ListOrders(user *models.User, page, pageSize int) ([]models.Order, int64, error) {
	filter := repositories.OrderFilter{Page: page, PageSize: pageSize}
	if user == nil {
		return nil, 0, ErrUnauthorized
	}
	if user.Role != models.RoleAdmin {
		filter.UserID = &user.ID
	}
	return s.orderRepo.List(filter)
}

// UpdateStatus sets an order's status on behalf of an admin and records the
// action in the audit log.
func (s *OrderService) UpdateStatus(adminID, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatuses[status] {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderRepo.UpdateStatus(orderID, status)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	s.audit.Record("ORDER_STATUS_UPDATE", &adminID, "order", &order.ID, map[string]any{
		"orderId": order.ID,
		"status":  string(order.Status),
	})

	if s.publisher != nil {
		pubErr := s.publisher.PublishOrderEvent(events.OrderStatusUpdated, map[string]interface{}{
			"orderId": order.ID,
			"status":  string(order.Status),
		})
		if pubErr != nil {
			log.Printf("Warning: failed to publish status event for order %s: %v", order.ID, pubErr)
		}
	}

	return order, nil
}

// isNotFound reports whether a repository error wraps gorm's record-not-found.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
