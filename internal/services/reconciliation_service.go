package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ReconciliationReport summarises one sweep
type ReconciliationReport struct {
	OrphanedRooms  []string  `json:"orphaned_rooms"`
	ReleasedRooms  []string  `json:"released_rooms"`
	UnheldBookings []string  `json:"unheld_bookings"`
	StartedAt      time.Time `json:"started_at"`
	Duration       string    `json:"duration"`
}

// ReconciliationService finds rooms and bookings left out of step by a
// failed second step of create or cancel.
type ReconciliationService struct {
	rooms    ReconciliationStore
	bookings UnheldBookingStore
	cache    RoomCache
	apply    bool
	logger   *logrus.Logger
}

// NewReconciliationService creates a reconciliation service. With apply set,
// orphaned OCCUPIED rooms are released; otherwise they are only reported.
func NewReconciliationService(rooms ReconciliationStore, bookings UnheldBookingStore, cache RoomCache, apply bool, logger *logrus.Logger) *ReconciliationService {
	return &ReconciliationService{
		rooms:    rooms,
		bookings: bookings,
		cache:    cache,
		apply:    apply,
		logger:   logger,
	}
}

// Run performs one sweep.
//
// Orphaned rooms are released when apply is set. A room is orphaned when it
// is OCCUPIED, no PENDING, CONFIRMED or PAID booking holds it, and a booking
// on it was cancelled after the room was last written. Rooms claimed by a
// booking that is still being inserted, or set OCCUPIED by staff, are not.
//
// Bookings that hold a room which is not OCCUPIED are reported only:
// re-occupying could collide with a newer claim.
func (s *ReconciliationService) Run(ctx context.Context) (*ReconciliationReport, error) {
	started := time.Now()
	report := &ReconciliationReport{
		OrphanedRooms:  []string{},
		ReleasedRooms:  []string{},
		UnheldBookings: []string{},
		StartedAt:      started,
	}

	orphans, err := s.rooms.ListOrphanedOccupied(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list orphaned rooms", Err: err}
	}
	for _, room := range orphans {
		report.OrphanedRooms = append(report.OrphanedRooms, room.ID)
		entry := s.logger.WithFields(logrus.Fields{
			"room_id": room.ID,
			"number":  room.Number,
			"step":    "reconcile.orphaned_room",
		})

		if !s.apply {
			entry.Warn("Room OCCUPIED without an active booking")
			continue
		}

		released, err := s.rooms.ReleaseIfOrphaned(ctx, room.ID)
		if err != nil {
			entry.WithError(err).Error("Failed to release orphaned room")
			continue
		}
		if released {
			report.ReleasedRooms = append(report.ReleasedRooms, room.ID)
			entry.Info("Released orphaned room")
		}
	}

	unheld, err := s.bookings.ListHoldingOnFreeRooms(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list unheld bookings", Err: err}
	}
	for _, booking := range unheld {
		report.UnheldBookings = append(report.UnheldBookings, booking.ID)
		s.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"room_id":    booking.RoomID,
			"status":     booking.Status,
			"step":       "reconcile.unheld_booking",
		}).Warn("Active booking on a room that is not OCCUPIED")
	}

	if len(report.ReleasedRooms) > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WithError(err).Warn("Room cache invalidation failed")
		}
	}

	report.Duration = time.Since(started).String()
	s.logger.WithFields(logrus.Fields{
		"orphaned_rooms":  len(report.OrphanedRooms),
		"released_rooms":  len(report.ReleasedRooms),
		"unheld_bookings": len(report.UnheldBookings),
		"duration":        report.Duration,
	}).Info("Reconciliation sweep complete")

	return report, nil
}
