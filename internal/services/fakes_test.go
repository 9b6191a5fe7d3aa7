package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ehotel/hotel-backend/internal/database"
	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var errStoreDown = errors.New("store unavailable")

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

var (
	staffSession    = Session{UserID: "staff-1", Role: models.RoleStaff, DisplayName: "Sam Staff"}
	customerSession = Session{UserID: "cust-1", Role: models.RoleCustomer, DisplayName: "Ann Guest"}
	otherCustomer   = Session{UserID: "cust-2", Role: models.RoleCustomer, DisplayName: "Bob Other"}
	guestSession    = Session{UserID: "guest-1", Role: models.RoleGuest, DisplayName: "Gus"}
)

// fakeRoomStore is an in-memory RoomStore with per-method failure injection
type fakeRoomStore struct {
	mu            sync.Mutex
	rooms         map[string]models.Room
	failSetStatus map[models.RoomStatus]error
	failCreate    error
	failList      error
	listCalls     int
	afterList     func()
}

func newFakeRoomStore(rooms ...models.Room) *fakeRoomStore {
	s := &fakeRoomStore{rooms: map[string]models.Room{}, failSetStatus: map[models.RoomStatus]error{}}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

func (s *fakeRoomStore) Create(ctx context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return s.failCreate
	}
	s.rooms[room.ID] = *room
	return nil
}

func (s *fakeRoomStore) GetByID(ctx context.Context, id string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &r, nil
}

func (s *fakeRoomStore) List(ctx context.Context, status *models.RoomStatus) ([]models.Room, error) {
	s.mu.Lock()
	s.listCalls++
	if s.failList != nil {
		s.mu.Unlock()
		return nil, s.failList
	}
	out := []models.Room{}
	for _, r := range s.rooms {
		if status == nil || r.Status == *status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	after := s.afterList
	s.afterList = nil
	s.mu.Unlock()

	// Runs once, between the read and the caller's use of it
	if after != nil {
		after()
	}
	return out, nil
}

func (s *fakeRoomStore) SetStatus(ctx context.Context, id string, status models.RoomStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failSetStatus[status]; err != nil {
		return err
	}
	r, ok := s.rooms[id]
	if !ok {
		return database.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	s.rooms[id] = r
	return nil
}

func (s *fakeRoomStore) TryOccupy(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok || r.Status != models.RoomStatusAvailable {
		return false, nil
	}
	r.Status = models.RoomStatusOccupied
	r.UpdatedAt = time.Now()
	s.rooms[id] = r
	return true, nil
}

func (s *fakeRoomStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.rooms, id)
	return nil
}

func (s *fakeRoomStore) status(id string) models.RoomStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[id].Status
}

// fakeBookingStore is an in-memory BookingStore
type fakeBookingStore struct {
	mu           sync.Mutex
	bookings     map[string]models.Booking
	failCreate   error
	failUpdate   error
	failPayment  error
	createDelay  time.Duration
	createCalled int
}

func newFakeBookingStore(bookings ...models.Booking) *fakeBookingStore {
	s := &fakeBookingStore{bookings: map[string]models.Booking{}}
	for _, b := range bookings {
		s.bookings[b.ID] = b
	}
	return s
}

func (s *fakeBookingStore) Create(ctx context.Context, b *models.Booking) error {
	if s.createDelay > 0 {
		time.Sleep(s.createDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalled++
	if s.failCreate != nil {
		return s.failCreate
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *fakeBookingStore) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &b, nil
}

func (s *fakeBookingStore) sorted(filter func(models.Booking) bool) []models.Booking {
	out := []models.Booking{}
	for _, b := range s.bookings {
		if filter(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *fakeBookingStore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(b models.Booking) bool { return b.UserID == userID }), nil
}

func (s *fakeBookingStore) ListAll(ctx context.Context) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(models.Booking) bool { return true }), nil
}

func (s *fakeBookingStore) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	b, ok := s.bookings[id]
	if !ok {
		return database.ErrNotFound
	}
	b.Status = status
	if status == models.BookingStatusCancelled {
		now := time.Now()
		b.CancelledAt = &now
	}
	s.bookings[id] = b
	return nil
}

func (s *fakeBookingStore) RecordPayment(ctx context.Context, id string, p models.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPayment != nil {
		return s.failPayment
	}
	b, ok := s.bookings[id]
	if !ok {
		return database.ErrNotFound
	}
	amount := p.Amount
	paidAt := p.PaidAt
	b.Status = models.BookingStatusPaid
	b.PaidAmount = &amount
	b.PaidAt = &paidAt
	if p.PaymentID != nil {
		b.PaymentID = p.PaymentID
	}
	s.bookings[id] = b
	return nil
}

func (s *fakeBookingStore) get(id string) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *fakeBookingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// fakeComplaintStore is an in-memory ComplaintStore
type fakeComplaintStore struct {
	mu         sync.Mutex
	complaints map[string]models.Complaint
	failCreate error
}

func newFakeComplaintStore(complaints ...models.Complaint) *fakeComplaintStore {
	s := &fakeComplaintStore{complaints: map[string]models.Complaint{}}
	for _, c := range complaints {
		s.complaints[c.ID] = c
	}
	return s
}

func (s *fakeComplaintStore) Create(ctx context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return s.failCreate
	}
	s.complaints[c.ID] = *c
	return nil
}

func (s *fakeComplaintStore) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &c, nil
}

func (s *fakeComplaintStore) list(filter func(models.Complaint) bool) []models.Complaint {
	out := []models.Complaint{}
	for _, c := range s.complaints {
		if filter(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *fakeComplaintStore) ListByUser(ctx context.Context, userID string) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(c models.Complaint) bool { return c.UserID == userID }), nil
}

func (s *fakeComplaintStore) ListAll(ctx context.Context) ([]models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(models.Complaint) bool { return true }), nil
}

func (s *fakeComplaintStore) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus, resolvedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return database.ErrNotFound
	}
	c.Status = status
	c.ResolvedAt = resolvedAt
	s.complaints[id] = c
	return nil
}

// fakeUserStore is an in-memory UserStore
type fakeUserStore struct {
	mu      sync.Mutex
	users   map[string]models.User
	failGet error
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	return nil
}

// CreateIfAbsent skips the insert when the id or a non-empty email is taken
func (s *fakeUserStore) CreateIfAbsent(ctx context.Context, u *models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return false, nil
	}
	if u.Email != "" {
		for _, existing := range s.users {
			if existing.Email == u.Email {
				return false, nil
			}
		}
	}
	s.users[u.ID] = *u
	return true, nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet != nil {
		return nil, s.failGet
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

// fakeAuditStore records inserted entries
type fakeAuditStore struct {
	mu      sync.Mutex
	entries []models.AuditLog
	fail    error
}

func (s *fakeAuditStore) Insert(ctx context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeAuditStore) ListByEntity(ctx context.Context, entityType, entityID string) ([]models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.AuditLog{}
	for _, e := range s.entries {
		if e.EntityType == entityType && e.EntityID != nil && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeRoomCache is an in-memory RoomCache
type fakeRoomCache struct {
	mu          sync.Mutex
	entries     map[string][]models.Room
	generation  int64
	invalidated int
}

func newFakeRoomCache() *fakeRoomCache {
	return &fakeRoomCache{entries: map[string][]models.Room{}}
}

func (c *fakeRoomCache) Get(ctx context.Context, status *models.RoomStatus) ([]models.Room, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms, ok := c.entries[roomCacheKey(c.generation, status)]
	return rooms, c.generation, ok, nil
}

func (c *fakeRoomCache) Set(ctx context.Context, status *models.RoomStatus, generation int64, rooms []models.Room) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[roomCacheKey(generation, status)] = rooms
	return nil
}

func (c *fakeRoomCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.invalidated++
	return nil
}

func testRoom(id, number string, price float64, status models.RoomStatus) models.Room {
	now := time.Now()
	return models.Room{
		ID:            id,
		Number:        number,
		Type:          models.RoomTypeStandard,
		Status:        status,
		PricePerNight: price,
		Features:      []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func testBooking(id, userID, roomID string, status models.BookingStatus) models.Booking {
	now := time.Now()
	return models.Booking{
		ID:           id,
		UserID:       userID,
		RoomID:       roomID,
		RoomNumber:   "R101",
		RoomType:     models.RoomTypeStandard,
		CheckInDate:  now,
		CheckOutDate: now.Add(72 * time.Hour),
		Nights:       3,
		TotalPrice:   300,
		Status:       status,
		GuestName:    "Ann Guest",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
