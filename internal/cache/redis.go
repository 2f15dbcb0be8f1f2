package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"kanabus/internal/domain"
)

// RedisCache mirrors the artifacts into Redis so other processes can read
// them without access to the output directory.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(addr, password string, db int, ttl time.Duration, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{
		client: client,
		prefix: "kanabus:",
		ttl:    ttl,
		logger: logger.With("component", "redis_cache"),
	}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

// Publish stores both artifacts and the publication time in one
// transaction.
func (c *RedisCache) Publish(ctx context.Context, bundle domain.TimetableBundle, holidays domain.HolidayMap) error {
	start := time.Now()

	tt, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("json marshal timetable: %w", err)
	}
	ho, err := json.Marshal(holidays)
	if err != nil {
		return fmt.Errorf("json marshal holidays: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key(KeyTimetable), tt, c.ttl)
		pipe.Set(ctx, c.key(KeyHolidays), ho, c.ttl)
		pipe.Set(ctx, c.key(KeyUpdatedAt), time.Now().UTC().Format(time.RFC3339), c.ttl)
		return nil
	})
	if err != nil {
		c.logger.Error("cache publish failed", "error", err)
		return fmt.Errorf("redis publish: %w", err)
	}

	c.logger.Debug("cache published",
		"timetable_bytes", len(tt),
		"holidays_bytes", len(ho),
		"ttl", c.ttl,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Timetable returns the mirrored bundle; ok is false on a cache miss.
func (c *RedisCache) Timetable(ctx context.Context) (domain.TimetableBundle, bool, error) {
	var bundle domain.TimetableBundle
	ok, err := c.getJSON(ctx, KeyTimetable, &bundle)
	return bundle, ok, err
}

// Holidays returns the mirrored holiday map; ok is false on a cache miss.
func (c *RedisCache) Holidays(ctx context.Context) (domain.HolidayMap, bool, error) {
	var holidays domain.HolidayMap
	ok, err := c.getJSON(ctx, KeyHolidays, &holidays)
	return holidays, ok, err
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("cache miss", "key", key)
		return false, nil
	}
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("json unmarshal: %w", err)
	}
	c.logger.Debug("cache hit", "key", key, "size_bytes", len(data))
	return true, nil
}
