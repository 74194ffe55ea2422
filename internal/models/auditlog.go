package models

import "time"

// AuditLog is an append-only record of an administrative action. Rows are
// never updated or deleted.
type AuditLog struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Action    string         `json:"action" gorm:"index;type:varchar(60)"`
	UserID    *string        `json:"userId" gorm:"type:varchar(36)"`
	User      *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Entity    *string        `json:"entity" gorm:"type:varchar(60)"`
	EntityID  *string        `json:"entityId" gorm:"type:varchar(36)"`
	Details   map[string]any `json:"details" gorm:"serializer:json"`
	CreatedAt time.Time      `json:"createdAt"`
}
