package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/ehotel/hotel-backend/internal/config"
	"github.com/ehotel/hotel-backend/internal/database"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// reconcile runs one room/booking consistency sweep and exits non-zero when
// inconsistencies remain.
func main() {
	apply := flag.Bool("apply", false, "Release orphaned OCCUPIED rooms (overrides RECONCILE_APPLY)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	var cache services.RoomCache
	if cfg.Redis.URL != "" {
		if opt, err := redis.ParseURL(cfg.Redis.URL); err != nil {
			logger.WithError(err).Warn("Invalid REDIS_URL, cache will not be invalidated")
		} else {
			client := redis.NewClient(opt)
			defer client.Close()
			cache = services.NewRedisRoomCache(client, cfg.Redis.RoomTTL)
		}
	}

	rooms := database.NewRoomRepository(db)
	bookings := database.NewBookingRepository(db)
	reconciler := services.NewReconciliationService(rooms, bookings, cache, *apply || cfg.Reconciliation.Apply, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := reconciler.Run(ctx)
	if err != nil {
		logger.Fatalf("Reconciliation failed: %v", err)
	}

	outstanding := len(report.OrphanedRooms) - len(report.ReleasedRooms) + len(report.UnheldBookings)
	if outstanding > 0 {
		logger.WithField("outstanding", outstanding).Warn("Inconsistencies remain")
		os.Exit(1)
	}
}
