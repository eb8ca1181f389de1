// Package cache wraps a directory.Client with a Redis read-through cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
	"github.com/sentiric/sentiric-contact-resolver/internal/logger"
)

const keyPrefix = "contact-resolver:directory:"

// Store is the slice of the go-redis API the cache needs.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedDirectory serves repeated filters from Redis. Only non-empty
// successful results are stored; failures and misses always reach next.
type CachedDirectory struct {
	next  directory.Client
	store Store
	ttl   time.Duration
	log   zerolog.Logger
}

func New(next directory.Client, store Store, ttl time.Duration, log zerolog.Logger) *CachedDirectory {
	return &CachedDirectory{next: next, store: store, ttl: ttl, log: log}
}

// Connect parses url and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func Key(f directory.Filter) string {
	return keyPrefix + string(f.Field) + ":" + string(f.Operator) + ":" + f.Value
}

func (c *CachedDirectory) Query(ctx context.Context, filter directory.Filter) ([]*directory.Record, error) {
	key := Key(filter)

	raw, err := c.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var records []*directory.Record
		jsonErr := json.Unmarshal(raw, &records)
		if jsonErr == nil {
			return records, nil
		}
		c.warn(ctx, jsonErr, key, "decode")
	case !errors.Is(err, redis.Nil):
		c.warn(ctx, err, key, "get")
	}

	records, err := c.next.Query(ctx, filter)
	if err != nil || len(records) == 0 {
		return records, err
	}

	payload, err := json.Marshal(records)
	if err != nil {
		c.warn(ctx, err, key, "encode")
		return records, nil
	}
	if err := c.store.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.warn(ctx, err, key, "set")
	}
	return records, nil
}

func (c *CachedDirectory) warn(ctx context.Context, err error, key, op string) {
	l := logger.ContextLogger(ctx, c.log)
	l.Warn().
		Str("event", logger.EventCacheFailure).
		Err(err).
		Dict("attributes", zerolog.Dict().
			Str("key", key).
			Str("op", op)).
		Msg("Directory cache bypassed")
}
