package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ValidOrderStatuses lists every accepted OrderStatus value.
var ValidOrderStatuses = map[OrderStatus]bool{
	OrderStatusPending:   true,
	OrderStatusPaid:      true,
	OrderStatusShipped:   true,
	OrderStatusCancelled: true,
}

// OrderItem is a single line of an order. UnitPrice is snapshotted at order
// time and never follows later product price changes.
type OrderItem struct {
	ID        string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string   `json:"orderId" gorm:"index;type:varchar(36)"`
	ProductID string   `json:"productId" gorm:"type:varchar(36)"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unitPrice"`
}

// Order is a customer order. UserID is nil for guest checkouts, which are
// identified only by the submitted contact fields.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);default:PENDING"`
	Total           float64     `json:"total"`
	CustomerName    string      `json:"customerName" gorm:"type:varchar(200)"`
	CustomerEmail   string      `json:"customerEmail" gorm:"type:varchar(255)"`
	CustomerPhone   *string     `json:"customerPhone" gorm:"type:varchar(50)"`
	ShippingAddress string      `json:"shippingAddress"`
	ShippingCity    string      `json:"shippingCity" gorm:"type:varchar(120)"`
	UserID          *string     `json:"userId" gorm:"type:varchar(36)"`
	User            *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
