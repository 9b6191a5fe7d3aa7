package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubComplaints struct {
	err  error
	last *models.SubmitComplaintRequest
}

func (s *stubComplaints) Submit(_ context.Context, session services.Session, req models.SubmitComplaintRequest) (*models.Complaint, error) {
	s.last = &req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Complaint{ID: "complaint-1", UserID: session.UserID, BookingID: req.BookingID, Title: req.Title, Status: models.ComplaintStatusOpen}, nil
}

func (s *stubComplaints) UpdateStatus(_ context.Context, _ services.Session, id string, status models.ComplaintStatus) (*models.Complaint, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Complaint{ID: id, Status: status}, nil
}

func (s *stubComplaints) List(_ context.Context, session services.Session) ([]models.Complaint, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Complaint{{ID: "complaint-1", UserID: session.UserID}}, nil
}

type stubAccounts struct {
	err error
}

func (s *stubAccounts) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AuthResponse{AccessToken: "token", User: &models.User{ID: "new-user", Email: req.Email, Role: models.RoleCustomer}}, nil
}

func (s *stubAccounts) Login(_ context.Context, _ models.LoginRequest) (*models.AuthResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AuthResponse{AccessToken: "token", User: customerUser}, nil
}

type stubHistory struct{}

func (stubHistory) History(_ context.Context, session services.Session, entityType, entityID string) ([]models.AuditLog, error) {
	if !session.IsStaff() {
		return nil, services.ErrAuthorization
	}
	return []models.AuditLog{{Action: services.AuditActionBookingCreated, EntityType: entityType}}, nil
}

type testAPI struct {
	router     *gin.Engine
	rooms      *stubRooms
	bookings   *stubBookings
	complaints *stubComplaints
	accounts   *stubAccounts
	audit      *recordedAudit
}

func newTestAPI() *testAPI {
	logger := newTestLogger()
	api := &testAPI{
		router: newTestRouter(),
		rooms: &stubRooms{rooms: map[string]*models.Room{
			"room-1": {ID: "room-1", Number: "101", Type: models.RoomTypeStandard, Status: models.RoomStatusAvailable},
			"room-2": {ID: "room-2", Number: "102", Type: models.RoomTypeSuite, Status: models.RoomStatusOccupied},
		}},
		bookings:   &stubBookings{booking: testBooking()},
		complaints: &stubComplaints{},
		accounts:   &stubAccounts{},
		audit:      &recordedAudit{},
	}

	Routes{
		Auth:          fakeAuth(),
		Accounts:      NewAuthHandler(api.accounts, api.audit, logger),
		LocalAccounts: true,
		Rooms:         NewRoomHandler(api.rooms, api.audit, logger),
		Bookings:      NewBookingHandler(api.bookings, api.bookings, api.bookings, api.audit, time.UTC, logger),
		Complaints:    NewComplaintHandler(api.complaints, api.audit, logger),
		Audit:         NewAuditHandler(stubHistory{}, logger),
	}.Register(api.router)

	return api
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", &services.ValidationError{Field: "title", Message: "title is required"}, http.StatusBadRequest, "validation_error"},
		{"authentication", services.ErrAuthentication, http.StatusUnauthorized, "unauthorized"},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"authorization", services.ErrAuthorization, http.StatusForbidden, "forbidden"},
		{"not found", &services.NotFoundError{Entity: "booking", ID: "x"}, http.StatusNotFound, "not_found"},
		{"room unavailable", services.ErrRoomUnavailable, http.StatusConflict, "room_unavailable"},
		{"invalid transition", &services.InvalidTransitionError{From: models.BookingStatusPaid, To: models.BookingStatusCancelled}, http.StatusConflict, "invalid_transition"},
		{"email taken", services.ErrEmailTaken, http.StatusConflict, "email_taken"},
		{"ineligible booking", services.ErrIneligibleBooking, http.StatusUnprocessableEntity, "ineligible_booking"},
		{"persistence", &services.PersistenceError{Op: "create booking", Err: errors.New("connection reset")}, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			router.GET("/fail", func(c *gin.Context) { respondError(c, newTestLogger(), tt.err) })

			w := doRequest(t, router, http.MethodGet, "/fail", "", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeJSON(t, w)
			assert.Equal(t, tt.wantError, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}

	t.Run("persistence detail is not leaked", func(t *testing.T) {
		router := newTestRouter()
		router.GET("/fail", func(c *gin.Context) {
			respondError(c, newTestLogger(), &services.PersistenceError{Op: "insert", Err: errors.New("password=hunter2")})
		})

		w := doRequest(t, router, http.MethodGet, "/fail", "", nil)
		assert.NotContains(t, w.Body.String(), "hunter2")
	})
}

func TestRoomHandler(t *testing.T) {
	t.Run("public list filters by status", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodGet, "/api/v1/rooms?status=available", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, api.rooms.lastFilter)
		assert.Equal(t, models.RoomStatusAvailable, *api.rooms.lastFilter)
		assert.EqualValues(t, 1, decodeJSON(t, w)["total"])
	})

	t.Run("unknown status filter", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodGet, "/api/v1/rooms?status=BROKEN", "", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "status", decodeJSON(t, w)["field"])
	})

	t.Run("room types", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodGet, "/api/v1/room-types", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		types, ok := decodeJSON(t, w)["room_types"].([]interface{})
		require.True(t, ok)
		assert.Len(t, types, 3)
	})

	t.Run("customer cannot create rooms", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/rooms", customerUser.ID, map[string]interface{}{"number": "201", "price_per_night": 99})

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Nil(t, api.rooms.created)
	})

	t.Run("staff creates room", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/rooms", staffUser.ID, map[string]interface{}{"number": "201", "type": "DELUXE", "price_per_night": 149.99})

		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, api.rooms.created)
		require.NotNil(t, api.rooms.created.PricePerNight)
		assert.Equal(t, 149.99, *api.rooms.created.PricePerNight)
		assert.Equal(t, []string{services.AuditActionRoomCreated}, api.audit.actions())
	})

	t.Run("staff sets status and gets the room back", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPatch, "/api/v1/rooms/room-1/status", staffUser.ID, map[string]string{"status": "CLEANING"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "CLEANING", decodeJSON(t, w)["status"])
		assert.Equal(t, []string{services.AuditActionRoomStatusChanged}, api.audit.actions())
		assert.Equal(t, staffUser.ID, api.audit.events[0].UserID)
	})

	t.Run("status on missing room", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPatch, "/api/v1/rooms/nope/status", staffUser.ID, map[string]string{"status": "CLEANING"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, api.audit.events)
	})

	t.Run("staff deletes room", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodDelete, "/api/v1/rooms/room-2", staffUser.ID, nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.NotContains(t, api.rooms.rooms, "room-2")
	})
}

func TestBookingHandler_Create(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/bookings", "", map[string]string{"room_id": "room-1"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Nil(t, api.bookings.lastCreate)
	})

	t.Run("date-only values are parsed in the hotel location", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/bookings", customerUser.ID, map[string]string{
			"room_id":        "room-1",
			"check_in_date":  "2026-05-01",
			"check_out_date": "2026-05-03",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, api.bookings.lastCreate)
		assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), api.bookings.lastCreate.CheckInDate)
		assert.Equal(t, time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC), api.bookings.lastCreate.CheckOutDate)
		assert.Equal(t, customerUser.ID, api.bookings.lastSession.UserID)
		assert.Equal(t, []string{services.AuditActionBookingCreated}, api.audit.actions())
	})

	t.Run("RFC 3339 timestamps", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/bookings", customerUser.ID, map[string]string{
			"room_id":        "room-1",
			"check_in_date":  "2026-05-01T14:00:00Z",
			"check_out_date": "2026-05-03T11:00:00Z",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 14, api.bookings.lastCreate.CheckInDate.Hour())
	})

	t.Run("unparseable date", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/bookings", customerUser.ID, map[string]string{
			"room_id":       "room-1",
			"check_in_date": "01/05/2026",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "check_in_date", decodeJSON(t, w)["field"])
		assert.Nil(t, api.bookings.lastCreate)
	})

	t.Run("missing room id fails binding", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/bookings", customerUser.ID, map[string]string{"check_in_date": "2026-05-01"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_request", decodeJSON(t, w)["error"])
	})

	t.Run("room taken", func(t *testing.T) {
		api := newTestAPI()
		api.bookings.err = services.ErrRoomUnavailable

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/bookings", customerUser.ID, map[string]string{
			"room_id":        "room-1",
			"check_in_date":  "2026-05-01",
			"check_out_date": "2026-05-03",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Empty(t, api.audit.events)
	})
}

func TestBookingHandler_Lifecycle(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodGet, "/api/v1/bookings", customerUser.ID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, decodeJSON(t, w)["total"])
	})

	t.Run("get forbidden for another user", func(t *testing.T) {
		api := newTestAPI()
		api.bookings.err = services.ErrAuthorization

		w := doRequest(t, api.router, http.MethodGet, "/api/v1/bookings/booking-1", customerUser.ID, nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("cancel", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/bookings/booking-1/cancel", customerUser.ID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "CANCELLED", decodeJSON(t, w)["status"])
		assert.Equal(t, []string{services.AuditActionBookingCancelled}, api.audit.actions())
	})

	t.Run("cancel from a terminal status", func(t *testing.T) {
		api := newTestAPI()
		api.bookings.err = &services.InvalidTransitionError{From: models.BookingStatusPaid, To: models.BookingStatusCancelled}

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/bookings/booking-1/cancel", customerUser.ID, nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "invalid_transition", decodeJSON(t, w)["error"])
	})

	t.Run("pay with empty body records the total", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/bookings/booking-1/pay", customerUser.ID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, api.bookings.lastPayment)
		assert.Nil(t, api.bookings.lastPayment.Amount)
		body := decodeJSON(t, w)
		assert.Equal(t, "PAID", body["status"])
		assert.EqualValues(t, 240, body["paid_amount"])
		require.Len(t, api.audit.events, 1)
		assert.EqualValues(t, 240, api.audit.events[0].Details["amount"])
	})

	t.Run("pay with empty chunked body records the total", func(t *testing.T) {
		api := newTestAPI()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/booking-1/pay", bytes.NewReader(nil))
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", customerUser.ID)
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, api.bookings.lastPayment)
		assert.Nil(t, api.bookings.lastPayment.Amount)
	})

	t.Run("pay with malformed body", func(t *testing.T) {
		api := newTestAPI()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/booking-1/pay", bytes.NewReader([]byte(`{"amount":`)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", customerUser.ID)
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_request", decodeJSON(t, w)["error"])
	})

	t.Run("pay with explicit amount and payment id", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/bookings/booking-1/pay", customerUser.ID, map[string]interface{}{
			"amount":     100.5,
			"payment_id": "pi_123",
		})

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, api.bookings.lastPayment.PaymentID)
		assert.Equal(t, "pi_123", *api.bookings.lastPayment.PaymentID)
	})

	t.Run("complaint eligibility", func(t *testing.T) {
		api := newTestAPI()
		api.bookings.eligible = true

		w := doRequest(t, api.router, http.MethodGet, "/api/v1/bookings/booking-1/complaint-eligibility", customerUser.ID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeJSON(t, w)["eligible"])
	})

	t.Run("status overwrite is staff only", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPatch, "/api/v1/bookings/booking-1/status", customerUser.ID, map[string]string{"status": "CHECKED_IN"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doRequest(t, api.router, http.MethodPatch, "/api/v1/bookings/booking-1/status", staffUser.ID, map[string]string{"status": "CHECKED_IN"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "CHECKED_IN", decodeJSON(t, w)["status"])
	})
}

func TestComplaintHandler(t *testing.T) {
	t.Run("submit", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/complaints", customerUser.ID, map[string]string{
			"booking_id":  "booking-1",
			"title":       "Noisy",
			"description": "Construction at 6am",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "OPEN", decodeJSON(t, w)["status"])
		assert.Equal(t, []string{services.AuditActionComplaintSubmitted}, api.audit.actions())
	})

	t.Run("ineligible booking", func(t *testing.T) {
		api := newTestAPI()
		api.complaints.err = services.ErrIneligibleBooking

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/complaints", customerUser.ID, map[string]string{
			"booking_id":  "booking-1",
			"title":       "Noisy",
			"description": "Construction at 6am",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Only users with confirmed or paid bookings can submit complaints", decodeJSON(t, w)["message"])
	})

	t.Run("list", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodGet, "/api/v1/complaints", customerUser.ID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, decodeJSON(t, w)["total"])
	})

	t.Run("staff resolves", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPatch, "/api/v1/complaints/complaint-1/status", staffUser.ID, map[string]string{"status": "RESOLVED"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "RESOLVED", decodeJSON(t, w)["status"])
		assert.Equal(t, []string{services.AuditActionComplaintStatusChange}, api.audit.actions())
	})
}

func TestAuthHandler(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":    "new@example.com",
			"password": "secret1",
			"name":     "New Guest",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "token", decodeJSON(t, w)["access_token"])
		require.Len(t, api.audit.events, 1)
		assert.Equal(t, services.AuditActionRegister, api.audit.events[0].Action)
		assert.Equal(t, "new-user", api.audit.events[0].UserID)
	})

	t.Run("register with taken email", func(t *testing.T) {
		api := newTestAPI()
		api.accounts.err = services.ErrEmailTaken

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":    "ada@example.com",
			"password": "secret1",
			"name":     "Ada",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("login with bad credentials", func(t *testing.T) {
		api := newTestAPI()
		api.accounts.err = services.ErrInvalidCredentials

		w := doRequest(t, api.router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "wrong1",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_credentials", decodeJSON(t, w)["error"])
	})

	t.Run("me", func(t *testing.T) {
		api := newTestAPI()

		w := doRequest(t, api.router, http.MethodGet, "/api/v1/me", customerUser.ID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeJSON(t, w)
		assert.Equal(t, customerUser.ID, body["id"])
		assert.Equal(t, "CUSTOMER", body["role"])
	})

	t.Run("local accounts disabled", func(t *testing.T) {
		router := newTestRouter()
		logger := newTestLogger()
		Routes{
			Auth:       fakeAuth(),
			Accounts:   NewAuthHandler(&stubAccounts{}, nil, logger),
			Rooms:      NewRoomHandler(&stubRooms{rooms: map[string]*models.Room{}}, nil, logger),
			Bookings:   NewBookingHandler(&stubBookings{}, &stubBookings{}, &stubBookings{}, nil, nil, logger),
			Complaints: NewComplaintHandler(&stubComplaints{}, nil, logger),
			Audit:      NewAuditHandler(stubHistory{}, logger),
		}.Register(router)

		w := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "a@b.c", "password": "x"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAuditHandler(t *testing.T) {
	api := newTestAPI()

	w := doRequest(t, api.router, http.MethodGet, "/api/v1/audit/booking/booking-1", customerUser.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, api.router, http.MethodGet, "/api/v1/audit/booking/booking-1", staffUser.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeJSON(t, w)
	assert.Equal(t, "booking", body["entity_type"])
	assert.EqualValues(t, 1, body["total"])
}

type stubThrottle struct {
	checkErr   error
	checkedIPs []string
	failures   []string
	failedIPs  []string
}

func (s *stubThrottle) CheckLogin(_ context.Context, _, ip string) error {
	s.checkedIPs = append(s.checkedIPs, ip)
	return s.checkErr
}

func (s *stubThrottle) RecordFailure(_ context.Context, email, ip string) {
	s.failures = append(s.failures, email)
	s.failedIPs = append(s.failedIPs, ip)
}

func TestAuthHandler_LoginThrottle(t *testing.T) {
	newRouter := func(accounts *stubAccounts, throttle *stubThrottle) *gin.Engine {
		router := newTestRouter()
		handler := NewAuthHandler(accounts, nil, newTestLogger()).WithLoginThrottle(throttle)
		router.POST("/login", handler.Login)
		return router
	}
	creds := map[string]string{"email": "ada@example.com", "password": "wrong1"}

	t.Run("limited", func(t *testing.T) {
		throttle := &stubThrottle{checkErr: &services.RateLimitError{
			Message:    "Too many failed login attempts for this account",
			RetryAfter: time.Now().Add(10 * time.Minute),
			Type:       "email",
		}}

		w := doRequest(t, newRouter(&stubAccounts{}, throttle), http.MethodPost, "/login", "", creds)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Equal(t, "rate_limited", decodeJSON(t, w)["error"])
	})

	t.Run("failed login is recorded", func(t *testing.T) {
		throttle := &stubThrottle{}

		w := doRequest(t, newRouter(&stubAccounts{err: services.ErrInvalidCredentials}, throttle), http.MethodPost, "/login", "", creds)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, []string{"ada@example.com"}, throttle.failures)
	})

	t.Run("check failure does not block login", func(t *testing.T) {
		throttle := &stubThrottle{checkErr: &services.PersistenceError{Op: "check", Err: errors.New("db down")}}

		w := doRequest(t, newRouter(&stubAccounts{}, throttle), http.MethodPost, "/login", "", creds)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, throttle.failures)
	})

	t.Run("forwarding headers from clients do not change the throttled IP", func(t *testing.T) {
		throttle := &stubThrottle{}
		router := newRouter(&stubAccounts{err: services.ErrInvalidCredentials}, throttle)

		for _, spoofed := range []string{"8.8.4.4", "8.8.8.8", "1.1.1.1"} {
			raw, err := json.Marshal(creds)
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Real-IP", spoofed)
			req.Header.Set("X-Forwarded-For", spoofed)
			req.RemoteAddr = "203.0.113.7:5555"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		}

		assert.Equal(t, []string{"203.0.113.7", "203.0.113.7", "203.0.113.7"}, throttle.checkedIPs)
		assert.Equal(t, []string{"203.0.113.7", "203.0.113.7", "203.0.113.7"}, throttle.failedIPs)
	})
}
