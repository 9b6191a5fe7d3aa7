package services

import (
	"errors"
	"fmt"

	"github.com/ehotel/hotel-backend/internal/models"
)

var (
	// ErrAuthentication is returned when an operation needs a signed-in user and has none
	ErrAuthentication = errors.New("authentication required")

	// ErrAuthorization is returned when the caller's role or ownership does not permit the action
	ErrAuthorization = errors.New("not authorized to perform this action")

	// ErrIneligibleBooking is returned when a complaint targets a booking that is not PAID or CONFIRMED
	ErrIneligibleBooking = errors.New("Only users with confirmed or paid bookings can submit complaints")

	// ErrRoomUnavailable is returned when a booking cannot claim its room
	ErrRoomUnavailable = errors.New("room is not available")

	// ErrInvalidCredentials is returned by local login; it is an authentication failure
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrAuthentication)

	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("email is already registered")
)

// ValidationError reports bad input shape or range
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a referenced entity that does not exist
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// PersistenceError wraps a storage failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// InvalidTransitionError reports a booking status change the state machine forbids
type InvalidTransitionError struct {
	From models.BookingStatus
	To   models.BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move booking from %s to %s", e.From, e.To)
}
