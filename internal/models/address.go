package models

import "time"

// UserAddress is a saved shipping address belonging to a user.
type UserAddress struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string    `json:"userId" gorm:"index;type:varchar(36)"`
	Label           *string   `json:"label" gorm:"type:varchar(50)"`
	FullName        string    `json:"fullName" gorm:"type:varchar(200)"`
	Email           string    `json:"email" gorm:"type:varchar(255)"`
	Phone           *string   `json:"phone" gorm:"type:varchar(50)"`
	ShippingAddress string    `json:"shippingAddress"`
	ShippingCity    string    `json:"shippingCity" gorm:"type:varchar(120)"`
	CreatedAt       time.Time `json:"createdAt"`
}
