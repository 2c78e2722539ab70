// internal/datasource/cache.go
package datasource

import (
	"context"
	"errors"
	"time"

	"kiosk-dialog/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// CachedDirectory is a read-through redis cache in front of a Directory.
// Misses are not cached.
type CachedDirectory struct {
	next   Directory
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedDirectory(next Directory, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedDirectory {
	return &CachedDirectory{next: next, redis: rdb, ttl: ttl, logger: log}
}

func (c *CachedDirectory) Phone(ctx context.Context, key string) (string, error) {
	return readThrough(ctx, c.redis, c.ttl, c.logger, "dir:"+key, func() (string, error) {
		return c.next.Phone(ctx, key)
	})
}

// CachedSchedule is a read-through redis cache in front of a Schedule.
type CachedSchedule struct {
	next   Schedule
	name   string
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSchedule(next Schedule, name string, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedSchedule {
	return &CachedSchedule{next: next, name: name, redis: rdb, ttl: ttl, logger: log}
}

func (c *CachedSchedule) Slot(ctx context.Context, day, key string) (string, error) {
	return readThrough(ctx, c.redis, c.ttl, c.logger, "sched:"+c.name+":"+day+":"+key, func() (string, error) {
		return c.next.Slot(ctx, day, key)
	})
}

// readThrough serves cacheKey from redis and falls back to load. A failing
// cache is logged and bypassed.
func readThrough(ctx context.Context, rdb *redis.Client, ttl time.Duration, log logger.Logger, cacheKey string, load func() (string, error)) (string, error) {
	val, err := rdb.Get(ctx, cacheKey).Result()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Warn("cache read failed", map[string]interface{}{
			"key":   cacheKey,
			"error": err.Error(),
		})
	}

	val, err = load()
	if err != nil {
		return "", err
	}

	if err := rdb.Set(ctx, cacheKey, val, ttl).Err(); err != nil {
		log.Warn("cache write failed", map[string]interface{}{
			"key":   cacheKey,
			"error": err.Error(),
		})
	}
	return val, nil
}
