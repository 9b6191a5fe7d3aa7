package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ehotel/hotel-backend/internal/middleware"
	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var (
	staffUser    = &models.User{ID: "staff-1", Email: "desk@example.com", Name: "Front Desk", Role: models.RoleStaff}
	customerUser = &models.User{ID: "user-1", Email: "ada@example.com", Name: "Ada", Role: models.RoleCustomer}
)

// fakeAuth stands in for AuthMiddleware: the X-Test-User header picks the caller
func fakeAuth() gin.HandlerFunc {
	users := map[string]*models.User{
		staffUser.ID:    staffUser,
		customerUser.ID: customerUser,
	}
	return func(c *gin.Context) {
		user, ok := users[c.GetHeader("X-Test-User")]
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "MISSING_AUTH_HEADER"})
			return
		}
		c.Set(middleware.UserContextKey, user)
		c.Set(middleware.SessionContextKey, services.SessionFromUser(user))
		c.Next()
	}
}

type recordedAudit struct {
	events []services.AuditEvent
}

func (r *recordedAudit) Log(_ context.Context, event services.AuditEvent) {
	r.events = append(r.events, event)
}

func (r *recordedAudit) actions() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type stubRooms struct {
	rooms      map[string]*models.Room
	err        error
	lastFilter *models.RoomStatus
	created    *models.CreateRoomRequest
}

func (s *stubRooms) Create(_ context.Context, session services.Session, req models.CreateRoomRequest) (*models.Room, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = &req
	room := &models.Room{ID: "room-new", Number: req.Number, Type: req.Type, Status: models.RoomStatusAvailable}
	s.rooms[room.ID] = room
	return room, nil
}

func (s *stubRooms) SetStatus(_ context.Context, _ services.Session, roomID string, status models.RoomStatus) error {
	if s.err != nil {
		return s.err
	}
	room, ok := s.rooms[roomID]
	if !ok {
		return &services.NotFoundError{Entity: "room", ID: roomID}
	}
	room.Status = status
	return nil
}

func (s *stubRooms) Delete(_ context.Context, _ services.Session, roomID string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.rooms, roomID)
	return nil
}

func (s *stubRooms) List(_ context.Context, status *models.RoomStatus) ([]models.Room, error) {
	s.lastFilter = status
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Room
	for _, r := range s.rooms {
		if status == nil || r.Status == *status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubRooms) Get(_ context.Context, roomID string) (*models.Room, error) {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, &services.NotFoundError{Entity: "room", ID: roomID}
	}
	return room, nil
}

type stubBookings struct {
	booking     *models.Booking
	err         error
	lastCreate  *models.CreateBookingRequest
	lastSession services.Session
	lastPayment *models.RecordPaymentRequest
	eligible    bool
}

func (s *stubBookings) Create(_ context.Context, session services.Session, req models.CreateBookingRequest) (*models.Booking, error) {
	s.lastSession = session
	s.lastCreate = &req
	if s.err != nil {
		return nil, s.err
	}
	return s.booking, nil
}

func (s *stubBookings) Cancel(_ context.Context, session services.Session, _ string) (*models.Booking, error) {
	s.lastSession = session
	if s.err != nil {
		return nil, s.err
	}
	cancelled := *s.booking
	cancelled.Status = models.BookingStatusCancelled
	return &cancelled, nil
}

func (s *stubBookings) Get(_ context.Context, session services.Session, _ string) (*models.Booking, error) {
	s.lastSession = session
	if s.err != nil {
		return nil, s.err
	}
	return s.booking, nil
}

func (s *stubBookings) List(_ context.Context, session services.Session) ([]models.Booking, error) {
	s.lastSession = session
	if s.err != nil {
		return nil, s.err
	}
	return []models.Booking{*s.booking}, nil
}

func (s *stubBookings) UpdateStatus(_ context.Context, _ services.Session, _ string, status models.BookingStatus) (*models.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	updated := *s.booking
	updated.Status = status
	return &updated, nil
}

func (s *stubBookings) Record(_ context.Context, _ services.Session, _ string, req models.RecordPaymentRequest) (*models.Booking, error) {
	s.lastPayment = &req
	if s.err != nil {
		return nil, s.err
	}
	paid := *s.booking
	amount := paid.TotalPrice
	if req.Amount != nil {
		amount = *req.Amount
	}
	paid.Status = models.BookingStatusPaid
	paid.PaidAmount = &amount
	paid.PaymentID = req.PaymentID
	return &paid, nil
}

func (s *stubBookings) CanFile(_ context.Context, _ services.Session, bookingID string) (*models.ComplaintEligibility, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ComplaintEligibility{BookingID: bookingID, Status: s.booking.Status, Eligible: s.eligible}, nil
}

func testBooking() *models.Booking {
	checkIn := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:           "booking-1",
		UserID:       customerUser.ID,
		RoomID:       "room-1",
		RoomNumber:   "101",
		RoomType:     models.RoomTypeStandard,
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 0, 2),
		Nights:       2,
		TotalPrice:   240,
		Status:       models.BookingStatusPending,
		GuestName:    "Ada",
	}
}

func newTestLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	_ = router.SetTrustedProxies(nil)
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
