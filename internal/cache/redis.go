package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Saifkhan77806/LoveTown/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCountTTL = time.Hour
	milestoneTTL    = 30 * 24 * time.Hour
)

type RedisCache struct {
	Client   *redis.Client
	CountTTL time.Duration
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
	return &RedisCache{Client: redis.NewClient(opts), CountTTL: cfg.Chat.CountTTL}
}

// NewFromClient wraps an existing client (tests point it at miniredis).
func NewFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, CountTTL: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

func (c *RedisCache) ttl() time.Duration {
	if c.CountTTL <= 0 {
		return defaultCountTTL
	}
	return c.CountTTL
}

// KeyForMessageCount generates Redis key for a room's message count
func (c *RedisCache) KeyForMessageCount(roomID string) string {
	return fmt.Sprintf("chat:count:%s", roomID)
}

// KeyForMilestone generates Redis key for a pairing's milestone flag
func (c *RedisCache) KeyForMilestone(pairingRef string) string {
	return fmt.Sprintf("chat:milestone:%s", pairingRef)
}

// SetMessageCount stores the authoritative count read back from the database.
func (c *RedisCache) SetMessageCount(ctx context.Context, roomID string, count int64) error {
	// Always refresh TTL when updating
	return c.Client.Set(ctx, c.KeyForMessageCount(roomID), count, c.ttl()).Err()
}

// GetMessageCount returns the cached count. ok is false on a cache miss.
func (c *RedisCache) GetMessageCount(ctx context.Context, roomID string) (int64, bool, error) {
	key := c.KeyForMessageCount(roomID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, c.ttl()).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// DropMessageCount invalidates the cached count (e.g. after a delete).
func (c *RedisCache) DropMessageCount(ctx context.Context, roomID string) error {
	return c.Client.Del(ctx, c.KeyForMessageCount(roomID)).Err()
}

// MarkMilestone sets the pairing's milestone flag and reports whether this
// call was the one that set it. The flag outlives the pairing by at most
// milestoneTTL.
func (c *RedisCache) MarkMilestone(ctx context.Context, pairingRef string) (bool, error) {
	return c.Client.SetNX(ctx, c.KeyForMilestone(pairingRef), time.Now().UnixMilli(), milestoneTTL).Result()
}

// ClearMilestone removes the flags of the given pairings.
func (c *RedisCache) ClearMilestone(ctx context.Context, pairingRefs ...string) error {
	if len(pairingRefs) == 0 {
		return nil
	}
	keys := make([]string, len(pairingRefs))
	for i, ref := range pairingRefs {
		keys[i] = c.KeyForMilestone(ref)
	}
	return c.Client.Del(ctx, keys...).Err()
}
