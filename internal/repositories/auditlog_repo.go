package repositories

import (
	"fmt"

	"goldlegacy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLogRepository defines the interface for audit log access. Logs are
// append-only; there is deliberately no update or delete.
type AuditLogRepository interface {
	Create(entry *models.AuditLog) error
	List(page, pageSize int) ([]models.AuditLog, int64, error)
}

// GORMAuditLogRepository is a GORM implementation of AuditLogRepository.
type GORMAuditLogRepository struct {
	db *gorm.DB
}

// NewGORMAuditLogRepository creates a new instance of GORMAuditLogRepository.
func NewGORMAuditLogRepository(db *gorm.DB) *GORMAuditLogRepository {
	return &GORMAuditLogRepository{db: db}
}

// Create appends an audit entry, generating an ID when absent.
func (r *GORMAuditLogRepository) Create(entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

// List returns a page of audit entries, newest first, plus the total count.
func (r *GORMAuditLogRepository) List(page, pageSize int) ([]models.AuditLog, int64, error) {
	var total int64
	if err := r.db.Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit log entries: %w", err)
	}

	page, pageSize = normalizePage(page, pageSize, 20)

	var entries []models.AuditLog
	err := r.db.
		Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit log entries: %w", err)
	}
	return entries, total, nil
}
