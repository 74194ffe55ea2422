package models

import "time"

// UserRole distinguishes customers from back-office administrators.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User represents an account. PasswordHash has no json tag so it never leaks
// into responses.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255)"`
	Name         *string   `json:"name" gorm:"type:varchar(120)"`
	Role         UserRole  `json:"role" gorm:"type:varchar(10);default:USER"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
