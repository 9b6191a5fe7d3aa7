package services

import (
	"context"
	"strings"
	"time"

	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RoomService owns room records and their status
type RoomService struct {
	rooms  RoomStore
	cache  RoomCache
	logger *logrus.Logger
}

// NewRoomService creates a room service. cache may be nil.
func NewRoomService(rooms RoomStore, cache RoomCache, logger *logrus.Logger) *RoomService {
	return &RoomService{
		rooms:  rooms,
		cache:  cache,
		logger: logger,
	}
}

// Create adds a room. Status defaults to AVAILABLE and type to STANDARD.
func (s *RoomService) Create(ctx context.Context, session Session, req models.CreateRoomRequest) (*models.Room, error) {
	if err := session.requireStaff(); err != nil {
		return nil, err
	}

	number := strings.TrimSpace(req.Number)
	if number == "" {
		return nil, invalid("number", "room number is required")
	}
	if req.PricePerNight == nil {
		return nil, invalid("price_per_night", "price per night is required")
	}
	if *req.PricePerNight < 0 {
		return nil, invalid("price_per_night", "price per night cannot be negative")
	}

	roomType := req.Type
	if roomType == "" {
		roomType = models.RoomTypeStandard
	}
	if !roomType.IsValid() {
		return nil, invalid("type", "unknown room type "+string(roomType))
	}

	status := req.Status
	if status == "" {
		status = models.RoomStatusAvailable
	}
	if !status.IsValid() {
		return nil, invalid("status", "unknown room status "+string(status))
	}

	features := make([]string, 0, len(req.Features))
	for _, f := range req.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}

	now := time.Now()
	room := &models.Room{
		ID:            uuid.New().String(),
		Number:        number,
		Type:          roomType,
		Status:        status,
		PricePerNight: models.RoundMoney(*req.PricePerNight),
		Features:      features,
		Description:   strings.TrimSpace(req.Description),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, &PersistenceError{Op: "create room", Err: err}
	}
	s.invalidate(ctx)

	s.logger.WithFields(logrus.Fields{
		"room_id": room.ID,
		"number":  room.Number,
		"type":    room.Type,
	}).Info("Room created")

	return room, nil
}

// SetStatus overwrites a room's status. Any status may follow any other.
func (s *RoomService) SetStatus(ctx context.Context, session Session, roomID string, status models.RoomStatus) error {
	if err := session.requireStaff(); err != nil {
		return err
	}
	if !status.IsValid() {
		return invalid("status", "unknown room status "+string(status))
	}
	return s.setStatus(ctx, roomID, status)
}

// Delete removes a room without checking for bookings that reference it
func (s *RoomService) Delete(ctx context.Context, session Session, roomID string) error {
	if err := session.requireStaff(); err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, roomID); err != nil {
		return storeError("delete room", "room", roomID, err)
	}
	s.invalidate(ctx)

	s.logger.WithField("room_id", roomID).Info("Room deleted")
	return nil
}

// List returns all rooms ordered by number, optionally filtered by status
func (s *RoomService) List(ctx context.Context, status *models.RoomStatus) ([]models.Room, error) {
	if status != nil && !status.IsValid() {
		return nil, invalid("status", "unknown room status "+string(*status))
	}

	cacheable := false
	var generation int64
	if s.cache != nil {
		rooms, gen, ok, err := s.cache.Get(ctx, status)
		switch {
		case err != nil:
			s.logger.WithError(err).Warn("Room cache read failed")
		case ok:
			return rooms, nil
		default:
			cacheable, generation = true, gen
		}
	}

	rooms, err := s.rooms.List(ctx, status)
	if err != nil {
		return nil, &PersistenceError{Op: "list rooms", Err: err}
	}

	if cacheable {
		if err := s.cache.Set(ctx, status, generation, rooms); err != nil {
			s.logger.WithError(err).Warn("Room cache write failed")
		}
	}
	return rooms, nil
}

// ListAvailable returns the customer view: AVAILABLE rooms only
func (s *RoomService) ListAvailable(ctx context.Context) ([]models.Room, error) {
	status := models.RoomStatusAvailable
	return s.List(ctx, &status)
}

// Get returns one room
func (s *RoomService) Get(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, storeError("get room", "room", roomID, err)
	}
	return room, nil
}

func (s *RoomService) setStatus(ctx context.Context, roomID string, status models.RoomStatus) error {
	if err := s.rooms.SetStatus(ctx, roomID, status); err != nil {
		return storeError("set room status", "room", roomID, err)
	}
	s.invalidate(ctx)

	s.logger.WithFields(logrus.Fields{
		"room_id": roomID,
		"status":  status,
	}).Info("Room status updated")
	return nil
}

// tryOccupy claims an AVAILABLE room for a booking
func (s *RoomService) tryOccupy(ctx context.Context, roomID string) error {
	ok, err := s.rooms.TryOccupy(ctx, roomID)
	if err != nil {
		return &PersistenceError{Op: "occupy room", Err: err}
	}
	if !ok {
		return ErrRoomUnavailable
	}
	s.invalidate(ctx)
	return nil
}

func (s *RoomService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		s.logger.WithError(err).Warn("Room cache invalidation failed")
	}
}
