package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"taberna/internal/events"
	"taberna/internal/metrics"
)

// Key prefixes for cached public responses.
const (
	PrefixMenu     = "menu:"
	PrefixSchedule = "schedule:"
	PrefixEvents   = "events:"
	PrefixConfig   = "config:"
)

// Cache is an optional Redis-backed JSON cache. A nil *Cache, or one
// without a client, misses every lookup.
type Cache struct {
	client    *redis.Client
	ttl       time.Duration
	namespace string
	logger    zerolog.Logger
}

func New(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	return &Cache{
		client:    client,
		ttl:       ttl,
		namespace: "taberna:",
		logger:    logger.With().Str("component", "cache").Logger(),
	}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get decodes the cached value for key into out and reports a hit.
func (c *Cache) Get(ctx context.Context, key string, out any) bool {
	if !c.enabled() {
		return false
	}
	val, err := c.client.Get(ctx, c.namespace+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		metrics.IncCacheLookup(false)
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		metrics.IncCacheLookup(false)
		return false
	}
	metrics.IncCacheLookup(true)
	return true
}

// Set stores val under key for the configured TTL. Failures are logged only.
func (c *Cache) Set(ctx context.Context, key string, val any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.namespace+key, data, c.ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// InvalidatePrefix deletes every key starting with prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if !c.enabled() {
		return nil
	}
	iter := c.client.Scan(ctx, 0, c.namespace+prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Ping checks the Redis connection; a disabled cache is always healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// InvalidateOn drops the matching prefix whenever bus reports a change.
func (c *Cache) InvalidateOn(bus *events.Bus) {
	prefixes := map[string]string{
		events.MenuChanged:     PrefixMenu,
		events.ScheduleChanged: PrefixSchedule,
		events.EventsChanged:   PrefixEvents,
		events.ConfigChanged:   PrefixConfig,
	}
	bus.Subscribe(func(e events.Event) error {
		prefix, ok := prefixes[e.Type]
		if !ok {
			return fmt.Errorf("no cache prefix for %s", e.Type)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return c.InvalidatePrefix(ctx, prefix)
	}, events.Types...)
}
