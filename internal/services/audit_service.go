package services

import (
	"log"

	"goldlegacy/internal/models"
	"goldlegacy/internal/repositories"
)

// AuditService records administrative actions. Recording is fire-and-forget:
// a failed write is logged and swallowed so audit logging can never fail a
// business operation.
type AuditService struct {
	repo repositories.AuditLogRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repositories.AuditLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record appends an audit entry. Safe to call on a nil service.
func (s *AuditService) Record(action string, userID *string, entity string, entityID *string, details map[string]any) {
	if s == nil || s.repo == nil {
		return
	}

	entry := &models.AuditLog{
		Action:   action,
		UserID:   userID,
		EntityID: entityID,
		Details:  details,
	}
	if entity != "" {
		entry.Entity = &entity
	}

	if err := s.repo.Create(entry); err != nil {
		log.Printf("[audit] failed to record %s: %v", action, err)
	}
}

// List returns a page of audit entries for the admin back-office.
func (s *AuditService) List(page, pageSize int) ([]models.AuditLog, int64, error) {
	return s.repo.List(page, pageSize)
}
