package models

import "time"

// ComplaintStatus represents the handling state of a complaint
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "OPEN"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
	ComplaintStatusClosed     ComplaintStatus = "CLOSED"
)

// IsValid reports whether s is a known complaint status
func (s ComplaintStatus) IsValid() bool {
	switch s {
	case ComplaintStatusOpen, ComplaintStatusInProgress, ComplaintStatusResolved, ComplaintStatusClosed:
		return true
	}
	return false
}

// Complaint represents a guest complaint tied to a booking (complaints table)
type Complaint struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"user_id" db:"user_id"`
	BookingID   string          `json:"booking_id" db:"booking_id"`
	RoomID      string          `json:"room_id" db:"room_id"`
	RoomNumber  string          `json:"room_number" db:"room_number"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Status      ComplaintStatus `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// SubmitComplaintRequest represents a complaint filed by a guest.
// RoomID and RoomNumber default to the booking's room when omitted.
type SubmitComplaintRequest struct {
	BookingID   string `json:"booking_id" binding:"required"`
	RoomID      string `json:"room_id,omitempty"`
	RoomNumber  string `json:"room_number,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateComplaintStatusRequest represents a staff status change
type UpdateComplaintStatusRequest struct {
	Status ComplaintStatus `json:"status" binding:"required"`
}

// ComplaintEligibility is the answer to "may this booking receive a complaint"
type ComplaintEligibility struct {
	BookingID string        `json:"booking_id"`
	Status    BookingStatus `json:"status"`
	Eligible  bool          `json:"eligible"`
}
