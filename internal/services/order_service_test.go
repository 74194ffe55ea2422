package services_test

import (
	"fmt"
	"testing"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"
	"goldlegacy/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema. Each
// test gets its own database so tests never see each other's rows.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.UserAddress{},
		&models.AuditLog{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Slug:        fmt.Sprintf("%s-%s", name, uuid.New().String()[:8]),
		Description: "A handcrafted piece from the test workshop",
		Price:       price,
		Material:    "Oro 18k",
		Type:        models.ProductTypeRing,
		Images:      []string{"https://cdn.example.com/p.jpg"},
		Stock:       stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func newOrderService(db *gorm.DB) *services.OrderService {
	orderRepo := repositories.NewGORMOrderRepository(db)
	audit := services.NewAuditService(repositories.NewGORMAuditLogRepository(db))
	return services.NewOrderService(db, orderRepo, audit, nil)
}

func checkoutInput(items ...services.CartItemInput) services.CheckoutInput {
	return services.CheckoutInput{
		CustomerName:    "Ana López",
		CustomerEmail:   "ana@example.com",
		ShippingAddress: "Calle 10 # 5-23",
		ShippingCity:    "Bogotá",
		Items:           items,
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	ring := seedProduct(t, db, "Anillo", 250000, 5)
	chain := seedProduct(t, db, "Cadena", 480000, 3)

	order, err := svc.CreateOrder(checkoutInput(
		services.CartItemInput{ProductID: ring.ID, Quantity: 2},
		services.CartItemInput{ProductID: chain.ID, Quantity: 1},
	), nil)
	require.NoError(t, err)

	// Total is computed server-side from current prices.
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 250000*2+480000*1, int(order.Total))
	assert.Len(t, order.Items, 2)
	assert.Nil(t, order.UserID)

	// Stock came down by the ordered quantities.
	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", ring.ID).Error)
	assert.Equal(t, 3, got.Stock)
	require.NoError(t, db.First(&got, "id = ?", chain.ID).Error)
	assert.Equal(t, 2, got.Stock)
}

func TestOrderService_CreateOrder_InsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	ring := seedProduct(t, db, "Anillo", 250000, 5)
	chain := seedProduct(t, db, "Cadena", 480000, 1)

	_, err := svc.CreateOrder(checkoutInput(
		services.CartItemInput{ProductID: ring.ID, Quantity: 1},
		services.CartItemInput{ProductID: chain.ID, Quantity: 2},
	), nil)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	// Placement is all-or-nothing: the first product's stock stays put and
	// no order row was written.
	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", ring.ID).Error)
	assert.Equal(t, 5, got.Stock)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderService_CreateOrder_UnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	_, err := svc.CreateOrder(checkoutInput(
		services.CartItemInput{ProductID: uuid.New().String(), Quantity: 1},
	), nil)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestOrderService_CreateOrder_RepeatedLinesShareStock(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	ring := seedProduct(t, db, "Anillo", 250000, 1)

	// Two lines for the same product together exceed stock even though each
	// line alone would fit.
	_, err := svc.CreateOrder(checkoutInput(
		services.CartItemInput{ProductID: ring.ID, Quantity: 1},
		services.CartItemInput{ProductID: ring.ID, Quantity: 1},
	), nil)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", ring.ID).Error)
	assert.Equal(t, 1, got.Stock)
}

func TestOrderService_UnitPriceSnapshot(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	ring := seedProduct(t, db, "Anillo", 250000, 5)

	order, err := svc.CreateOrder(checkoutInput(
		services.CartItemInput{ProductID: ring.ID, Quantity: 1},
	), nil)
	require.NoError(t, err)

	// A later price change must not touch the recorded line.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", ring.ID).Update("price", 999999).Error)

	got, err := svc.GetOrder(order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 250000, int(got.Items[0].UnitPrice))
	assert.Equal(t, 250000, int(got.Total))
}

func TestOrderService_ListOrders_Scoping(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	ring := seedProduct(t, db, "Anillo", 250000, 10)

	customer := &models.User{ID: uuid.New().String(), Email: "cliente@example.com", Role: models.RoleUser}
	require.NoError(t, db.Create(customer).Error)
	admin := &models.User{ID: uuid.New().String(), Email: "admin@example.com", Role: models.RoleAdmin}
	require.NoError(t, db.Create(admin).Error)

	_, err := svc.CreateOrder(checkoutInput(services.CartItemInput{ProductID: ring.ID, Quantity: 1}), &customer.ID)
	require.NoError(t, err)
	_, err = svc.CreateOrder(checkoutInput(services.CartItemInput{ProductID: ring.ID, Quantity: 1}), nil)
	require.NoError(t, err)

	// The customer only sees their own order; the admin sees both, guest
	// order included.
	mine, total, err := svc.ListOrders(customer, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, customer.ID, *mine[0].UserID)

	all, total, err := svc.ListOrders(admin, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	_, _, err = svc.ListOrders(nil, 1, 20)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	db := newTestDB(t)
	svc := newOrderService(db)

	ring := seedProduct(t, db, "Anillo", 250000, 5)
	order, err := svc.CreateOrder(checkoutInput(services.CartItemInput{ProductID: ring.ID, Quantity: 1}), nil)
	require.NoError(t, err)

	adminID := uuid.New().String()

	updated, err := svc.UpdateStatus(adminID, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	_, err = svc.UpdateStatus(adminID, order.ID, models.OrderStatus("LOST"))
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	_, err = svc.UpdateStatus(adminID, uuid.New().String(), models.OrderStatusPaid)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	// The status change left an audit trail.
	var logs int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", "ORDER_STATUS_UPDATE").Count(&logs).Error)
	assert.EqualValues(t, 1, logs)
}
