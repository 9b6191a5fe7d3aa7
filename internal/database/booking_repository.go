package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ehotel/hotel-backend/internal/models"
)

const bookingColumns = `
	id, user_id, room_id, room_number, room_type,
	check_in_date, check_out_date, nights, total_price, status, guest_name,
	payment_id, paid_amount, paid_at, cancelled_at, created_at, updated_at`

// BookingRepository handles booking database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, room_id, room_number, room_type,
			check_in_date, check_out_date, nights, total_price, status, guest_name,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.UserID,
		b.RoomID,
		b.RoomNumber,
		b.RoomType,
		b.CheckInDate,
		b.CheckOutDate,
		b.Nights,
		b.TotalPrice,
		b.Status,
		b.GuestName,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// ListByUser returns a user's bookings, newest first
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list bookings for user: %w", err)
	}
	return bookings, nil
}

// ListAll returns every booking, newest first
func (r *BookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateStatus overwrites a booking's status. Moving to CANCELLED stamps cancelled_at.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	now := time.Now()
	query := `
		UPDATE bookings
		SET status = $2,
			cancelled_at = CASE WHEN $2 = 'CANCELLED' THEN $3 ELSE cancelled_at END,
			updated_at = $3
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, status, now)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return rowsAffectedOrNotFound(result)
}

// RecordPayment marks a booking PAID and stores the payment fields
func (r *BookingRepository) RecordPayment(ctx context.Context, id string, payment models.PaymentRecord) error {
	query := `
		UPDATE bookings
		SET status = $2,
			paid_amount = $3,
			payment_id = COALESCE($4, payment_id),
			paid_at = $5,
			updated_at = $5
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id,
		models.BookingStatusPaid,
		payment.Amount,
		payment.PaymentID,
		payment.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return rowsAffectedOrNotFound(result)
}

// ListHoldingOnFreeRooms returns PENDING, CONFIRMED or PAID bookings whose room is not OCCUPIED
func (r *BookingRepository) ListHoldingOnFreeRooms(ctx context.Context) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `
		SELECT ` + bookingColumns + ` FROM bookings b
		WHERE b.status IN ($1, $2, $3)
		  AND NOT EXISTS (
			SELECT 1 FROM rooms r WHERE r.id = b.room_id AND r.status = $4
		  )
		ORDER BY b.created_at DESC, b.id DESC
	`
	err := r.db.SelectContext(ctx, &bookings, query,
		models.BookingStatusPending,
		models.BookingStatusConfirmed,
		models.BookingStatusPaid,
		models.RoomStatusOccupied,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unheld bookings: %w", err)
	}
	return bookings, nil
}
