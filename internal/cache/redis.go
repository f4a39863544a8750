// Package cache provides an optional Redis cache for computed profiles,
// so chart consumers re-rendering the same symbol-date do not hit the
// calculator or the database again.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nse-profiler/internal/errors"
	"nse-profiler/internal/models"
)

// ProfileCache caches computed volume profiles keyed by symbol and date.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache connects to Redis and returns a cache. A failed ping
// is returned as an error; callers treat the cache as optional and fall
// through to the store.
func NewProfileCache(addr, password string, db int, ttl time.Duration) (*ProfileCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %s", addr)
	}

	return &ProfileCache{client: client, ttl: ttl}, nil
}

func profileKey(symbol string, date time.Time) string {
	return fmt.Sprintf("profile:%s:%s", symbol, date.Format("2006-01-02"))
}

// Put stores a profile under its symbol:date key.
func (c *ProfileCache) Put(ctx context.Context, profile *models.VolumeProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "marshaling profile")
	}
	return c.client.Set(ctx, profileKey(profile.Symbol, profile.Date), data, c.ttl).Err()
}

// Get returns the cached profile for symbol:date, or ErrCacheMiss.
func (c *ProfileCache) Get(ctx context.Context, symbol string, date time.Time) (*models.VolumeProfile, error) {
	data, err := c.client.Get(ctx, profileKey(symbol, date)).Bytes()
	if err == redis.Nil {
		return nil, errors.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading cache")
	}

	var profile models.VolumeProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, errors.Wrap(err, "unmarshaling cached profile")
	}
	return &profile, nil
}

// Invalidate removes a cached profile.
func (c *ProfileCache) Invalidate(ctx context.Context, symbol string, date time.Time) error {
	return c.client.Del(ctx, profileKey(symbol, date)).Err()
}

// Close closes the Redis connection.
func (c *ProfileCache) Close() error {
	return c.client.Close()
}
