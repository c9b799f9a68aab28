package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/crediflow/los-backend/internal/pkg/logger"
)

// ConfigCache is a read-through cache for resolved ACTIVE config bodies.
// Keys are kind|logicalKey|scope; activation invalidates by prefix so a
// newly activated version is visible immediately.
type ConfigCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	InvalidatePrefix(ctx context.Context, prefix string)
	Close() error
}

type configCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewConfigCache connects using REDIS_ADDR. Callers treat a nil cache as
// "caching disabled"; resolution works identically without it.
func NewConfigCache(log *logger.Logger) (ConfigCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttl := 5 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("CONFIG_CACHE_TTL_SECONDS")); raw != "" {
		if seconds, err := time.ParseDuration(raw + "s"); err == nil && seconds > 0 {
			ttl = seconds
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &configCache{
		log: log.With("service", "RedisConfigCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

const keyPrefix = "losconfig:"

func (c *configCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return raw, true
}

func (c *configCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.rdb.Set(ctx, keyPrefix+key, value, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *configCache) InvalidatePrefix(ctx context.Context, prefix string) {
	var cursor uint64
	pattern := keyPrefix + prefix + "*"
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.log.Warn("cache scan failed", "pattern", pattern, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				c.log.Warn("cache delete failed", "pattern", pattern, "error", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

func (c *configCache) Close() error { return c.rdb.Close() }
