package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// RoomCache caches room listings keyed by status filter.
//
// Listings live under a generation that Invalidate advances. Get reports the
// generation it looked in and Set writes back under that generation, so a
// listing read from the store before a write can never be served after it.
type RoomCache interface {
	Get(ctx context.Context, status *models.RoomStatus) (rooms []models.Room, generation int64, hit bool, err error)
	Set(ctx context.Context, status *models.RoomStatus, generation int64, rooms []models.Room) error
	Invalidate(ctx context.Context) error
}

const (
	roomCachePrefix        = "rooms:list:"
	roomCacheGenerationKey = roomCachePrefix + "generation"
)

func roomCacheKey(generation int64, status *models.RoomStatus) string {
	filter := "all"
	if status != nil {
		filter = string(*status)
	}
	return fmt.Sprintf("%sv%d:%s", roomCachePrefix, generation, filter)
}

// RedisRoomCache stores room listings as JSON in Redis
type RedisRoomCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRoomCache creates a Redis-backed room cache
func NewRedisRoomCache(client *redis.Client, ttl time.Duration) *RedisRoomCache {
	return &RedisRoomCache{client: client, ttl: ttl}
}

// Get returns the cached listing for the current generation, reporting false on a miss
func (c *RedisRoomCache) Get(ctx context.Context, status *models.RoomStatus) ([]models.Room, int64, bool, error) {
	generation, err := c.client.Get(ctx, roomCacheGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		generation = 0
	} else if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read room cache generation: %w", err)
	}

	raw, err := c.client.Get(ctx, roomCacheKey(generation, status)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read room cache: %w", err)
	}

	var rooms []models.Room
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, 0, false, fmt.Errorf("failed to decode room cache: %w", err)
	}
	return rooms, generation, true, nil
}

// Set stores a listing under the given generation with the configured TTL
func (c *RedisRoomCache) Set(ctx context.Context, status *models.RoomStatus, generation int64, rooms []models.Room) error {
	raw, err := json.Marshal(rooms)
	if err != nil {
		return fmt.Errorf("failed to encode room cache: %w", err)
	}
	if err := c.client.Set(ctx, roomCacheKey(generation, status), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write room cache: %w", err)
	}
	return nil
}

// Invalidate advances the generation; older listings expire with their TTL
func (c *RedisRoomCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, roomCacheGenerationKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate room cache: %w", err)
	}
	return nil
}
