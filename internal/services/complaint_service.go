package services

import (
	"context"
	"strings"
	"time"

	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ComplaintService gates complaint creation on booking status and manages complaint handling
type ComplaintService struct {
	complaints ComplaintStore
	bookings   *BookingService
	logger     *logrus.Logger
}

// NewComplaintService creates a complaint service
func NewComplaintService(complaints ComplaintStore, bookings *BookingService, logger *logrus.Logger) *ComplaintService {
	return &ComplaintService{
		complaints: complaints,
		bookings:   bookings,
		logger:     logger,
	}
}

// CanFile reports whether a complaint may be filed against the booking:
// true only when the booking is PAID or CONFIRMED.
func (s *ComplaintService) CanFile(ctx context.Context, session Session, bookingID string) (*models.ComplaintEligibility, error) {
	booking, err := s.bookings.Get(ctx, session, bookingID)
	if err != nil {
		return nil, err
	}
	return &models.ComplaintEligibility{
		BookingID: booking.ID,
		Status:    booking.Status,
		Eligible:  booking.Status.AllowsComplaint(),
	}, nil
}

// Submit files a complaint. Eligibility is re-checked here whatever the client showed.
func (s *ComplaintService) Submit(ctx context.Context, session Session, req models.SubmitComplaintRequest) (*models.Complaint, error) {
	if err := session.requireBooker(); err != nil {
		return nil, err
	}

	bookingID := strings.TrimSpace(req.BookingID)
	if bookingID == "" {
		return nil, invalid("booking_id", "booking is required")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "title is required")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, invalid("description", "description is required")
	}

	booking, err := s.bookings.Get(ctx, session, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Status.AllowsComplaint() {
		return nil, ErrIneligibleBooking
	}

	roomID := strings.TrimSpace(req.RoomID)
	if roomID == "" {
		roomID = booking.RoomID
	}
	roomNumber := strings.TrimSpace(req.RoomNumber)
	if roomNumber == "" {
		roomNumber = booking.RoomNumber
	}

	now := time.Now()
	complaint := &models.Complaint{
		ID:          uuid.New().String(),
		UserID:      session.UserID,
		BookingID:   booking.ID,
		RoomID:      roomID,
		RoomNumber:  roomNumber,
		Title:       title,
		Description: description,
		Status:      models.ComplaintStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, &PersistenceError{Op: "create complaint", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"complaint_id": complaint.ID,
		"booking_id":   complaint.BookingID,
		"user_id":      complaint.UserID,
	}).Info("Complaint submitted")

	return complaint, nil
}

// UpdateStatus sets a complaint's status. RESOLVED stamps resolved_at; any
// other status clears it. Staff only.
func (s *ComplaintService) UpdateStatus(ctx context.Context, session Session, complaintID string, status models.ComplaintStatus) (*models.Complaint, error) {
	if err := session.requireStaff(); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, invalid("status", "unknown complaint status "+string(status))
	}

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, storeError("get complaint", "complaint", complaintID, err)
	}

	now := time.Now()
	var resolvedAt *time.Time
	if status == models.ComplaintStatusResolved {
		resolvedAt = &now
	}
	if err := s.complaints.UpdateStatus(ctx, complaint.ID, status, resolvedAt); err != nil {
		return nil, storeError("update complaint status", "complaint", complaint.ID, err)
	}

	complaint.Status = status
	complaint.ResolvedAt = resolvedAt
	complaint.UpdatedAt = now

	s.logger.WithFields(logrus.Fields{
		"complaint_id": complaint.ID,
		"status":       status,
		"staff_id":     session.UserID,
	}).Info("Complaint status updated")

	return complaint, nil
}

// List returns every complaint for staff and the caller's own complaints otherwise
func (s *ComplaintService) List(ctx context.Context, session Session) ([]models.Complaint, error) {
	if err := session.requireUser(); err != nil {
		return nil, err
	}

	var (
		complaints []models.Complaint
		err        error
	)
	if session.IsStaff() {
		complaints, err = s.complaints.ListAll(ctx)
	} else {
		complaints, err = s.complaints.ListByUser(ctx, session.UserID)
	}
	if err != nil {
		return nil, &PersistenceError{Op: "list complaints", Err: err}
	}
	return complaints, nil
}
