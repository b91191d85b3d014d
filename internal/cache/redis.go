// Package cache keeps the most recent reading in Redis so dashboard
// queries do not have to touch the in-memory buffer's lock on every
// poll. The cache is optional; the buffer remains authoritative.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/claude/vitalsync/internal/models"
)

const latestKey = "vitalsync:latest"

// LatestCache stores the latest decoded reading with a TTL.
type LatestCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(addr, password string, db int, ttl time.Duration) (*LatestCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   password,
		DB:         db,
		MaxRetries: 3,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LatestCache{client: client, ttl: ttl}, nil
}

// SetLatest stores a reading as the current snapshot.
func (c *LatestCache) SetLatest(ctx context.Context, r models.SensorReading) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling reading: %w", err)
	}
	return c.client.Set(ctx, latestKey, data, c.ttl).Err()
}

// Latest returns the cached reading, or false when none is cached.
func (c *LatestCache) Latest(ctx context.Context) (models.SensorReading, bool, error) {
	data, err := c.client.Get(ctx, latestKey).Bytes()
	if err == redis.Nil {
		return models.SensorReading{}, false, nil
	}
	if err != nil {
		return models.SensorReading{}, false, fmt.Errorf("reading cache: %w", err)
	}

	var r models.SensorReading
	if err := json.Unmarshal(data, &r); err != nil {
		return models.SensorReading{}, false, fmt.Errorf("unmarshaling cached reading: %w", err)
	}
	return r, true, nil
}

// Close closes the Redis connection.
func (c *LatestCache) Close() error {
	return c.client.Close()
}
