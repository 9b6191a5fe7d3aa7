package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ehotel/hotel-backend/internal/models"
)

const complaintColumns = `
	id, user_id, booking_id, room_id, room_number, title, description,
	status, created_at, resolved_at, updated_at`

// ComplaintRepository handles complaint database operations
type ComplaintRepository struct {
	db DB
}

// NewComplaintRepository creates a new complaint repository
func NewComplaintRepository(db DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a new complaint
func (r *ComplaintRepository) Create(ctx context.Context, c *models.Complaint) error {
	query := `
		INSERT INTO complaints (
			id, user_id, booking_id, room_id, room_number, title, description,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.UserID,
		c.BookingID,
		c.RoomID,
		c.RoomNumber,
		c.Title,
		c.Description,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

// GetByID retrieves a complaint by ID
func (r *ComplaintRepository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// ListByUser returns a user's complaints, newest first
func (r *ComplaintRepository) ListByUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	complaints := []models.Complaint{}
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &complaints, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list complaints for user: %w", err)
	}
	return complaints, nil
}

// ListAll returns every complaint, newest first
func (r *ComplaintRepository) ListAll(ctx context.Context) ([]models.Complaint, error) {
	complaints := []models.Complaint{}
	query := `SELECT ` + complaintColumns + ` FROM complaints ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &complaints, query); err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

// UpdateStatus sets a complaint's status and resolution timestamp (nil clears it)
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus, resolvedAt *time.Time) error {
	query := `UPDATE complaints SET status = $2, resolved_at = $3, updated_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, resolvedAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update complaint status: %w", err)
	}
	return rowsAffectedOrNotFound(result)
}
