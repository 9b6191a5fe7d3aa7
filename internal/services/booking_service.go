package services

import (
	"context"
	"strings"
	"time"

	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BookingConfig holds booking lifecycle policy
type BookingConfig struct {
	// RequireAvailableRoom rejects a booking unless its room can be moved
	// AVAILABLE -> OCCUPIED atomically. When false the room is overwritten
	// to OCCUPIED whatever its status (last write wins).
	RequireAvailableRoom bool
	CountNights          NightCounter
}

// DefaultBookingConfig returns the guarded, elapsed-time policy
func DefaultBookingConfig() BookingConfig {
	return BookingConfig{
		RequireAvailableRoom: true,
		CountNights:          ElapsedNights,
	}
}

// BookingService owns booking creation, cancellation and status changes, and
// keeps the booked room's status in step with the booking.
type BookingService struct {
	bookings BookingStore
	rooms    *RoomService
	config   BookingConfig
	logger   *logrus.Logger
}

// NewBookingService creates a booking service
func NewBookingService(bookings BookingStore, rooms *RoomService, config BookingConfig, logger *logrus.Logger) *BookingService {
	if config.CountNights == nil {
		config.CountNights = ElapsedNights
	}
	return &BookingService{
		bookings: bookings,
		rooms:    rooms,
		config:   config,
		logger:   logger,
	}
}

// Create books a room for the caller.
//
// The room is claimed first and the booking inserted second. If the insert
// fails the room claim is undone; if that also fails a reconciliation
// warning is logged for the sweep to pick up.
func (s *BookingService) Create(ctx context.Context, session Session, req models.CreateBookingRequest) (*models.Booking, error) {
	if err := session.requireBooker(); err != nil {
		return nil, err
	}

	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		return nil, invalid("room_id", "room is required")
	}
	if req.CheckInDate.IsZero() {
		return nil, invalid("check_in_date", "check-in date is required")
	}
	if req.CheckOutDate.IsZero() {
		return nil, invalid("check_out_date", "check-out date is required")
	}
	if !req.CheckOutDate.After(req.CheckInDate) {
		return nil, invalid("check_out_date", "check-out must be after check-in")
	}

	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	guestName := strings.TrimSpace(req.GuestName)
	if guestName == "" {
		guestName = session.DisplayName
	}

	// Step 1: claim the room
	restoreStatus := room.Status
	if s.config.RequireAvailableRoom {
		if err := s.rooms.tryOccupy(ctx, room.ID); err != nil {
			return nil, err
		}
		restoreStatus = models.RoomStatusAvailable
	} else if err := s.rooms.setStatus(ctx, room.ID, models.RoomStatusOccupied); err != nil {
		return nil, err
	}

	nights := s.config.CountNights(req.CheckInDate, req.CheckOutDate)
	now := time.Now()
	booking := &models.Booking{
		ID:           uuid.New().String(),
		UserID:       session.UserID,
		RoomID:       room.ID,
		RoomNumber:   room.Number,
		RoomType:     room.Type,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
		Nights:       nights,
		TotalPrice:   models.TotalPrice(nights, room.PricePerNight),
		Status:       models.BookingStatusPending,
		GuestName:    guestName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Step 2: persist the booking, compensating step 1 on failure
	if err := s.bookings.Create(ctx, booking); err != nil {
		if cerr := s.rooms.setStatus(context.WithoutCancel(ctx), room.ID, restoreStatus); cerr != nil {
			s.reconciliationWarning(booking.ID, room.ID, "create.release_room", cerr)
		}
		return nil, &PersistenceError{Op: "create booking", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"user_id":     booking.UserID,
		"room_id":     booking.RoomID,
		"nights":      booking.Nights,
		"total_price": booking.TotalPrice,
	}).Info("Booking created")

	return booking, nil
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED and frees its room.
// A failure to free the room does not undo the cancellation; it is logged for
// reconciliation instead.
func (s *BookingService) Cancel(ctx context.Context, session Session, bookingID string) (*models.Booking, error) {
	booking, err := s.Get(ctx, session, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransitionTo(models.BookingStatusCancelled) {
		return nil, &InvalidTransitionError{From: booking.Status, To: models.BookingStatusCancelled}
	}

	// Step 1: cancel the booking
	if err := s.bookings.UpdateStatus(ctx, booking.ID, models.BookingStatusCancelled); err != nil {
		return nil, storeError("cancel booking", "booking", booking.ID, err)
	}
	now := time.Now()
	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.UpdatedAt = now

	// Step 2: free the room
	if err := s.rooms.setStatus(context.WithoutCancel(ctx), booking.RoomID, models.RoomStatusAvailable); err != nil {
		s.reconciliationWarning(booking.ID, booking.RoomID, "cancel.release_room", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"room_id":    booking.RoomID,
		"user_id":    session.UserID,
	}).Info("Booking cancelled")

	return booking, nil
}

// Get returns a booking the caller owns, or any booking for staff
func (s *BookingService) Get(ctx context.Context, session Session, bookingID string) (*models.Booking, error) {
	if err := session.requireUser(); err != nil {
		return nil, err
	}
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !session.canAccess(booking.UserID) {
		return nil, ErrAuthorization
	}
	return booking, nil
}

// ListForUser returns a user's bookings, newest first. Customers may only list their own.
func (s *BookingService) ListForUser(ctx context.Context, session Session, userID string) ([]models.Booking, error) {
	if err := session.requireUser(); err != nil {
		return nil, err
	}
	if !session.canAccess(userID) {
		return nil, ErrAuthorization
	}
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Op: "list bookings", Err: err}
	}
	return bookings, nil
}

// ListAll returns every booking, newest first. Staff only.
func (s *BookingService) ListAll(ctx context.Context, session Session) ([]models.Booking, error) {
	if err := session.requireStaff(); err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list bookings", Err: err}
	}
	return bookings, nil
}

// List returns all bookings for staff and the caller's own bookings otherwise
func (s *BookingService) List(ctx context.Context, session Session) ([]models.Booking, error) {
	if session.IsStaff() {
		return s.ListAll(ctx, session)
	}
	return s.ListForUser(ctx, session, session.UserID)
}

// UpdateStatus overwrites a booking's status without consulting the state
// machine or touching the room. Staff only.
func (s *BookingService) UpdateStatus(ctx context.Context, session Session, bookingID string, status models.BookingStatus) (*models.Booking, error) {
	if err := session.requireStaff(); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalid("status", "unknown booking status "+string(status))
	}
	if err := s.bookings.UpdateStatus(ctx, bookingID, status); err != nil {
		return nil, storeError("update booking status", "booking", bookingID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"status":     status,
		"staff_id":   session.UserID,
	}).Info("Booking status overwritten")

	return s.load(ctx, bookingID)
}

func (s *BookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeError("get booking", "booking", bookingID, err)
	}
	return booking, nil
}

func (s *BookingService) reconciliationWarning(bookingID, roomID, step string, err error) {
	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"room_id":    roomID,
		"step":       step,
	}).WithError(err).Warn("Room and booking out of step; reconciliation required")
}
