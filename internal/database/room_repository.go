package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ehotel/hotel-backend/internal/models"
)

const roomColumns = `id, number, type, status, price_per_night, features, description, created_at, updated_at`

// RoomRepository handles room database operations
type RoomRepository struct {
	db DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create inserts a new room
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (
			id, number, type, status, price_per_night,
			features, description, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		room.ID,
		room.Number,
		room.Type,
		room.Status,
		room.PricePerNight,
		room.Features,
		room.Description,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

// List returns rooms ordered by number, optionally filtered by status
func (r *RoomRepository) List(ctx context.Context, status *models.RoomStatus) ([]models.Room, error) {
	rooms := []models.Room{}
	var err error
	if status != nil {
		query := `SELECT ` + roomColumns + ` FROM rooms WHERE status = $1 ORDER BY number ASC, id ASC`
		err = r.db.SelectContext(ctx, &rooms, query, *status)
	} else {
		query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY number ASC, id ASC`
		err = r.db.SelectContext(ctx, &rooms, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// SetStatus unconditionally overwrites a room's status
func (r *RoomRepository) SetStatus(ctx context.Context, id string, status models.RoomStatus) error {
	query := `UPDATE rooms SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	return rowsAffectedOrNotFound(result)
}

// TryOccupy marks a room OCCUPIED only if it is currently AVAILABLE.
// Returns false when the room was not AVAILABLE (or no longer exists).
func (r *RoomRepository) TryOccupy(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE rooms SET status = $2, updated_at = $4
		WHERE id = $1 AND status = $3
	`
	result, err := r.db.ExecContext(ctx, query, id, models.RoomStatusOccupied, models.RoomStatusAvailable, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to occupy room: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// Delete removes a room. Bookings referencing it are left untouched.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return rowsAffectedOrNotFound(result)
}

// orphanedRoomCondition matches OCCUPIED rooms that no PENDING, CONFIRMED or
// PAID booking holds and that have not been written since a booking on them
// was cancelled. A room claimed by a booking still being inserted, or set
// OCCUPIED by staff, was written after any such cancellation and never matches.
const orphanedRoomCondition = `
	r.status = $1
	AND NOT EXISTS (
		SELECT 1 FROM bookings b
		WHERE b.room_id = r.id AND b.status IN ($2, $3, $4)
	)
	AND EXISTS (
		SELECT 1 FROM bookings c
		WHERE c.room_id = r.id AND c.status = $5 AND c.cancelled_at >= r.updated_at
	)
`

func orphanedRoomArgs() []interface{} {
	return []interface{}{
		models.RoomStatusOccupied,
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
		models.BookingStatusPaid,
		models.BookingStatusCancelled,
	}
}

// ListOrphanedOccupied returns rooms left OCCUPIED by a cancellation whose room release failed
func (r *RoomRepository) ListOrphanedOccupied(ctx context.Context) ([]models.Room, error) {
	rooms := []models.Room{}
	query := `SELECT ` + roomColumns + ` FROM rooms r WHERE ` + orphanedRoomCondition + ` ORDER BY r.number ASC`
	if err := r.db.SelectContext(ctx, &rooms, query, orphanedRoomArgs()...); err != nil {
		return nil, fmt.Errorf("failed to list orphaned rooms: %w", err)
	}
	return rooms, nil
}

// ReleaseIfOrphaned sets an orphaned room back to AVAILABLE. The condition is
// re-checked in the update, so a room claimed or overridden since it was
// reported is left alone.
func (r *RoomRepository) ReleaseIfOrphaned(ctx context.Context, id string) (bool, error) {
	query := `UPDATE rooms AS r SET status = $6, updated_at = $7 WHERE r.id = $8 AND ` + orphanedRoomCondition
	args := append(orphanedRoomArgs(), models.RoomStatusAvailable, time.Now(), id)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to release room: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}
