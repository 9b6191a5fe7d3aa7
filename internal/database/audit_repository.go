package database

import (
	"context"
	"fmt"

	"github.com/ehotel/hotel-backend/internal/models"
)

// AuditRepository writes audit trail entries
type AuditRepository struct {
	db DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert appends an entry to audit_logs
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			user_id, action, entity_type, entity_id,
			ip_address, user_agent, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.UserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.IPAddress,
		entry.UserAgent,
		entry.Details,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// ListByEntity returns the audit trail for one entity, newest first
func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	entries := []models.AuditLog{}
	query := `
		SELECT id, user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
	`
	if err := r.db.SelectContext(ctx, &entries, query, entityType, entityID); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, nil
}
