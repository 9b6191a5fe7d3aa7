package services

import (
	"context"
	"strings"
	"time"

	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// PaymentService records payment outcomes against bookings. No payment
// processor is consulted; the client reports the result.
type PaymentService struct {
	bookings *BookingService
	store    BookingStore
	logger   *logrus.Logger
}

// NewPaymentService creates a payment service
func NewPaymentService(bookings *BookingService, store BookingStore, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		bookings: bookings,
		store:    store,
		logger:   logger,
	}
}

// Record marks a booking PAID with the given amount (the booking total when
// omitted). There is no duplicate-payment detection: recording twice leaves
// the same end state.
func (s *PaymentService) Record(ctx context.Context, session Session, bookingID string, req models.RecordPaymentRequest) (*models.Booking, error) {
	booking, err := s.bookings.Get(ctx, session, bookingID)
	if err != nil {
		return nil, err
	}

	amount := booking.TotalPrice
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount < 0 {
		return nil, invalid("amount", "amount cannot be negative")
	}

	var paymentID *string
	if req.PaymentID != nil {
		if trimmed := strings.TrimSpace(*req.PaymentID); trimmed != "" {
			paymentID = &trimmed
		}
	}

	record := models.PaymentRecord{
		Amount:    models.RoundMoney(amount),
		PaymentID: paymentID,
		PaidAt:    time.Now(),
	}
	if err := s.store.RecordPayment(ctx, booking.ID, record); err != nil {
		return nil, storeError("record payment", "booking", booking.ID, err)
	}

	booking.Status = models.BookingStatusPaid
	booking.PaidAmount = &record.Amount
	booking.PaidAt = &record.PaidAt
	booking.UpdatedAt = record.PaidAt
	if paymentID != nil {
		booking.PaymentID = paymentID
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"amount":     record.Amount,
		"user_id":    session.UserID,
	}).Info("Payment recorded")

	return booking, nil
}
