package models

import "time"

// ProductType classifies a jewelry piece.
type ProductType string

const (
	ProductTypeChain    ProductType = "CHAIN"
	ProductTypeRing     ProductType = "RING"
	ProductTypeBracelet ProductType = "BRACELET"
	ProductTypeEarring  ProductType = "EARRING"
	ProductTypePendant  ProductType = "PENDANT"
)

// ValidProductTypes lists every accepted ProductType value.
var ValidProductTypes = map[ProductType]bool{
	ProductTypeChain:    true,
	ProductTypeRing:     true,
	ProductTypeBracelet: true,
	ProductTypeEarring:  true,
	ProductTypePendant:  true,
}

// Product represents a jewelry piece in the catalog.
type Product struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string      `json:"name" gorm:"type:varchar(200)" validate:"required,min=2,max=200"`
	Slug        string      `json:"slug" gorm:"uniqueIndex;type:varchar(200)" validate:"required,min=2"`
	Description string      `json:"description" validate:"required,min=10"`
	Price       float64     `json:"price" validate:"required,gt=0"`
	Material    string      `json:"material" gorm:"type:varchar(100)" validate:"required,min=2"`
	Type        ProductType `json:"type" gorm:"type:varchar(20)" validate:"required"`
	Images      []string    `json:"images" gorm:"serializer:json" validate:"required,min=1,dive,url"`
	Stock       int         `json:"stock" validate:"gte=0"`
	IsFeatured  bool        `json:"isFeatured"`
	CategoryID  *string     `json:"categoryId" gorm:"type:varchar(36)"`
	Category    *Category   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
