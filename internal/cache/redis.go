package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/campusmatch/campusmatch/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	likeCountTTL = time.Hour
	presenceTTL  = 2 * time.Minute
)

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.Client.Incr(ctx, key).Result()
}

func (c *RedisCache) Decr(ctx context.Context, key string) (int64, error) {
	return c.Client.Decr(ctx, key).Result()
}

// --- like counters ---

// KeyForLikeCount generates Redis key for a user's incoming-like count.
func (c *RedisCache) KeyForLikeCount(userID string) string {
	return fmt.Sprintf("likes:count:%s", userID)
}

func (c *RedisCache) UpdateLikeCount(ctx context.Context, userID string, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, c.KeyForLikeCount(userID), count, likeCountTTL).Err()
}

func (c *RedisCache) GetLikeCount(ctx context.Context, userID string) (int64, bool, error) {
	key := c.KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, likeCountTTL).Err()
	// unsigned parse: a negative counter (Decr on a missing key) or garbage
	// is treated as a miss so the DB repopulates the real count
	n, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return int64(n), true, nil
}

// --- presence ---

// Presence keys mirror the in-process connection registry so HTTP surfaces
// (matches list) can report online status without touching the hub.

func (c *RedisCache) KeyForPresence(userID string) string {
	return fmt.Sprintf("presence:%s", userID)
}

func (c *RedisCache) SetOnline(ctx context.Context, userID string) error {
	return c.Client.Set(ctx, c.KeyForPresence(userID), "1", presenceTTL).Err()
}

func (c *RedisCache) RefreshOnline(ctx context.Context, userID string) error {
	return c.Client.Expire(ctx, c.KeyForPresence(userID), presenceTTL).Err()
}

func (c *RedisCache) SetOffline(ctx context.Context, userID string) error {
	return c.Client.Del(ctx, c.KeyForPresence(userID)).Err()
}

func (c *RedisCache) IsOnline(ctx context.Context, userID string) (bool, error) {
	_, err := c.Client.Get(ctx, c.KeyForPresence(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
