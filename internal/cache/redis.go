package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"MarketScreener/internal/model"
)

// DefaultRedisPrefix namespaces screener keys.
const DefaultRedisPrefix = "screener:series:"

// RedisCache stores entries as JSON strings; redis expiry enforces freshness.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	now func() time.Time
	log zerolog.Logger
}

// NewRedisCache connects to addr and pings it.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return newRedisCache(client, ttl, logger), nil
}

func newRedisCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: DefaultRedisPrefix,
		ttl:    ttl,
		now:    time.Now,
		log:    logger.With().Str("component", "redis_cache").Logger(),
	}
}

func (c *RedisCache) key(k Key) string { return c.prefix + k.String() }

func (c *RedisCache) Get(ctx context.Context, key Key) (model.Series, bool, error) {
	full := c.key(key)
	data, err := c.client.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Series{}, false, nil
	}
	if err != nil {
		return model.Series{}, false, fmt.Errorf("redis get %s: %w", full, err)
	}
	e, err := decode(data)
	if err != nil {
		c.log.Warn().Err(err).Str("key", full).Msg("discarding corrupt cache entry")
		if delErr := c.client.Del(ctx, full).Err(); delErr != nil {
			c.log.Warn().Err(delErr).Str("key", full).Msg("delete corrupt cache entry")
		}
		return model.Series{}, false, nil
	}
	return e.Series, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key Key, series model.Series) error {
	data, err := encode(series, c.now())
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key(key), err)
	}
	return nil
}

// Close releases the redis connection pool.
func (c *RedisCache) Close() error { return c.client.Close() }
