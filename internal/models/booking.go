package models

import (
	"math"
	"time"
)

// BookingStatus represents the lifecycle state of a reservation
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusPaid       BookingStatus = "PAID"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
	BookingStatusCheckedIn  BookingStatus = "CHECKED_IN"
	BookingStatusCheckedOut BookingStatus = "CHECKED_OUT"
)

// bookingTransitions is the booking state machine. Terminal states map to an empty slice.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusPaid, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusPaid, BookingStatusCancelled},
	BookingStatusPaid:       {BookingStatusPaid},
	BookingStatusCancelled:  {},
	BookingStatusCheckedIn:  {},
	BookingStatusCheckedOut: {},
}

// IsValid returns true if the status is a recognized booking status
func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo returns true if the state machine allows s -> target
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// HoldsRoom reports whether a booking in this status keeps its room OCCUPIED
func (s BookingStatus) HoldsRoom() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusPaid:
		return true
	}
	return false
}

// AllowsComplaint reports whether a complaint may be filed against a booking in this status
func (s BookingStatus) AllowsComplaint() bool {
	return s == BookingStatusPaid || s == BookingStatusConfirmed
}

// Booking represents a room reservation (bookings table)
type Booking struct {
	ID           string        `json:"id" db:"id"`
	UserID       string        `json:"user_id" db:"user_id"`
	RoomID       string        `json:"room_id" db:"room_id"`
	RoomNumber   string        `json:"room_number" db:"room_number"`
	RoomType     RoomType      `json:"room_type" db:"room_type"`
	CheckInDate  time.Time     `json:"check_in_date" db:"check_in_date"`
	CheckOutDate time.Time     `json:"check_out_date" db:"check_out_date"`
	Nights       int           `json:"nights" db:"nights"`
	TotalPrice   float64       `json:"total_price" db:"total_price"`
	Status       BookingStatus `json:"status" db:"status"`
	GuestName    string        `json:"guest_name" db:"guest_name"`
	PaymentID    *string       `json:"payment_id,omitempty" db:"payment_id"`
	PaidAmount   *float64      `json:"paid_amount,omitempty" db:"paid_amount"`
	PaidAt       *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// CreateBookingRequest represents a customer's request to book a room
type CreateBookingRequest struct {
	RoomID       string    `json:"room_id" binding:"required"`
	CheckInDate  time.Time `json:"check_in_date"`
	CheckOutDate time.Time `json:"check_out_date"`
	GuestName    string    `json:"guest_name,omitempty"`
}

// RecordPaymentRequest represents a payment outcome reported by the client.
// Amount defaults to the booking's total price when omitted.
type RecordPaymentRequest struct {
	Amount    *float64 `json:"amount,omitempty"`
	PaymentID *string  `json:"payment_id,omitempty"`
}

// UpdateBookingStatusRequest represents a staff status overwrite
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
}

// PaymentRecord is the set of fields written when a payment is recorded
type PaymentRecord struct {
	Amount    float64
	PaymentID *string
	PaidAt    time.Time
}

// RoundMoney rounds an amount to two decimal places
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// TotalPrice returns nights x pricePerNight, rounded to cents
func TotalPrice(nights int, pricePerNight float64) float64 {
	return RoundMoney(float64(nights) * pricePerNight)
}
