package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ehotel/hotel-backend/internal/middleware"
	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// BookingAPI is the booking operations the HTTP layer needs
type BookingAPI interface {
	Create(ctx context.Context, session services.Session, req models.CreateBookingRequest) (*models.Booking, error)
	Cancel(ctx context.Context, session services.Session, bookingID string) (*models.Booking, error)
	Get(ctx context.Context, session services.Session, bookingID string) (*models.Booking, error)
	List(ctx context.Context, session services.Session) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, session services.Session, bookingID string, status models.BookingStatus) (*models.Booking, error)
}

// PaymentAPI records payment outcomes
type PaymentAPI interface {
	Record(ctx context.Context, session services.Session, bookingID string, req models.RecordPaymentRequest) (*models.Booking, error)
}

// EligibilityAPI answers whether a booking may receive a complaint
type EligibilityAPI interface {
	CanFile(ctx context.Context, session services.Session, bookingID string) (*models.ComplaintEligibility, error)
}

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookings    BookingAPI
	payments    PaymentAPI
	eligibility EligibilityAPI
	audit       AuditRecorder
	location    *time.Location
	logger      *logrus.Logger
}

// NewBookingHandler creates a new booking handler. Date-only check-in and
// check-out values are interpreted in loc.
func NewBookingHandler(
	bookings BookingAPI,
	payments PaymentAPI,
	eligibility EligibilityAPI,
	audit AuditRecorder,
	loc *time.Location,
	logger *logrus.Logger,
) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{
		bookings:    bookings,
		payments:    payments,
		eligibility: eligibility,
		audit:       audit,
		location:    loc,
		logger:      logger,
	}
}

// createBookingBody accepts either RFC 3339 timestamps or YYYY-MM-DD dates
type createBookingBody struct {
	RoomID       string `json:"room_id" binding:"required"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	GuestName    string `json:"guest_name,omitempty"`
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var body createBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	checkIn, err := h.parseDate("check_in_date", body.CheckInDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	checkOut, err := h.parseDate("check_out_date", body.CheckOutDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), middleware.SessionOrAnonymous(c), models.CreateBookingRequest{
		RoomID:       body.RoomID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		GuestName:    body.GuestName,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordAudit(c, h.audit, services.AuditActionBookingCreated, services.AuditEntityBooking, booking.ID, map[string]interface{}{
		"room_id":     booking.RoomID,
		"nights":      booking.Nights,
		"total_price": booking.TotalPrice,
	})
	c.JSON(http.StatusCreated, booking)
}

// ListBookings handles GET /api/v1/bookings (customers see their own, staff see all)
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookings.List(c.Request.Context(), middleware.SessionOrAnonymous(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    len(bookings),
	})
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookings.Get(c.Request.Context(), middleware.SessionOrAnonymous(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, err := h.bookings.Cancel(c.Request.Context(), middleware.SessionOrAnonymous(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordAudit(c, h.audit, services.AuditActionBookingCancelled, services.AuditEntityBooking, booking.ID, map[string]interface{}{
		"room_id": booking.RoomID,
	})
	c.JSON(http.StatusOK, booking)
}

// RecordPayment handles POST /api/v1/bookings/:id/pay. An empty body records
// the booking's total price.
func (h *BookingHandler) RecordPayment(c *gin.Context) {
	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	booking, err := h.payments.Record(c.Request.Context(), middleware.SessionOrAnonymous(c), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	details := map[string]interface{}{}
	if booking.PaidAmount != nil {
		details["amount"] = *booking.PaidAmount
	}
	if booking.PaymentID != nil {
		details["payment_id"] = *booking.PaymentID
	}
	recordAudit(c, h.audit, services.AuditActionPaymentRecorded, services.AuditEntityBooking, booking.ID, details)
	c.JSON(http.StatusOK, booking)
}

// ComplaintEligibility handles GET /api/v1/bookings/:id/complaint-eligibility
func (h *BookingHandler) ComplaintEligibility(c *gin.Context) {
	eligibility, err := h.eligibility.CanFile(c.Request.Context(), middleware.SessionOrAnonymous(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, eligibility)
}

// UpdateBookingStatus handles PATCH /api/v1/bookings/:id/status (staff)
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), middleware.SessionOrAnonymous(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recordAudit(c, h.audit, services.AuditActionBookingStatusChanged, services.AuditEntityBooking, booking.ID, map[string]interface{}{
		"status": booking.Status,
	})
	c.JSON(http.StatusOK, booking)
}

// parseDate reads an RFC 3339 timestamp or a YYYY-MM-DD date in the hotel's
// location. An empty value yields the zero time.
func (h *BookingHandler) parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, h.location); err == nil {
		return t, nil
	}
	return time.Time{}, &services.ValidationError{
		Field:   field,
		Message: "must be an RFC 3339 timestamp or a YYYY-MM-DD date",
	}
}
