package models

import "time"

// Category groups products. Inactive categories stay resolvable by slug but
// are hidden from the public storefront listing.
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string    `json:"name" gorm:"type:varchar(120)" validate:"required,min=1"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;type:varchar(120)" validate:"required,min=1"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
