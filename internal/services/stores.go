package services

import (
	"context"
	"errors"
	"time"

	"github.com/ehotel/hotel-backend/internal/database"
	"github.com/ehotel/hotel-backend/internal/models"
)

// RoomStore is the persistence surface RoomService and BookingService need
type RoomStore interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id string) (*models.Room, error)
	List(ctx context.Context, status *models.RoomStatus) ([]models.Room, error)
	SetStatus(ctx context.Context, id string, status models.RoomStatus) error
	TryOccupy(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// BookingStore is the persistence surface for bookings
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
	RecordPayment(ctx context.Context, id string, payment models.PaymentRecord) error
}

// ComplaintStore is the persistence surface for complaints
type ComplaintStore interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	ListByUser(ctx context.Context, userID string) ([]models.Complaint, error)
	ListAll(ctx context.Context) ([]models.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus, resolvedAt *time.Time) error
}

// UserStore is the persistence surface for user records
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	CreateIfAbsent(ctx context.Context, user *models.User) (bool, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuditStore persists audit trail entries
type AuditStore interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error)
}

// ReconciliationStore exposes the consistency queries used by the sweep
type ReconciliationStore interface {
	ListOrphanedOccupied(ctx context.Context) ([]models.Room, error)
	ReleaseIfOrphaned(ctx context.Context, id string) (bool, error)
}

// UnheldBookingStore lists bookings whose room is not marked OCCUPIED
type UnheldBookingStore interface {
	ListHoldingOnFreeRooms(ctx context.Context) ([]models.Booking, error)
}

// LoginAttemptStore persists failed login attempts
type LoginAttemptStore interface {
	CountSince(ctx context.Context, identifier, identifierType string, since time.Time) (int, time.Time, error)
	Record(ctx context.Context, identifier, identifierType string) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

var (
	_ RoomStore           = (*database.RoomRepository)(nil)
	_ ReconciliationStore = (*database.RoomRepository)(nil)
	_ BookingStore        = (*database.BookingRepository)(nil)
	_ UnheldBookingStore  = (*database.BookingRepository)(nil)
	_ ComplaintStore      = (*database.ComplaintRepository)(nil)
	_ UserStore           = (*database.UserRepository)(nil)
	_ AuditStore          = (*database.AuditRepository)(nil)
	_ LoginAttemptStore   = (*database.LoginAttemptRepository)(nil)
)

// storeError translates a repository failure into the service error taxonomy
func storeError(op, entity, id string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return &PersistenceError{Op: op, Err: err}
}
