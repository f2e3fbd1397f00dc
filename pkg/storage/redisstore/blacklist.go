// Package redisstore implements the token blacklist on Redis. Each revoked
// token hash is one key whose TTL is the token's remaining lifetime, so
// entries disappear on their own once the token could no longer verify.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/platinummonkey/shopadmin/pkg/observability"
	"github.com/platinummonkey/shopadmin/pkg/storage"
)

const (
	backendName = "redis"
	keyPrefix   = "blacklist:"
	minTTL      = time.Second
)

// NewClient creates a Redis client from storage config and verifies it with a ping
func NewClient(ctx context.Context, config storage.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if config.RedisPassword != "" {
		opts.Password = config.RedisPassword
	}
	if config.RedisDB > 0 {
		opts.DB = config.RedisDB
	}
	if config.RedisMaxRetries > 0 {
		opts.MaxRetries = config.RedisMaxRetries
	}
	if config.RedisPoolSize > 0 {
		opts.PoolSize = config.RedisPoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// BlacklistStore keeps revoked token hashes as expiring Redis keys
type BlacklistStore struct {
	client  *redis.Client
	metrics *observability.Metrics
	now     func() time.Time
}

// NewBlacklistStore wraps client. metrics may be nil.
func NewBlacklistStore(client *redis.Client, metrics *observability.Metrics) *BlacklistStore {
	return &BlacklistStore{client: client, metrics: metrics, now: time.Now}
}

func blacklistKey(tokenHash string) string {
	return keyPrefix + tokenHash
}

// Add sets the key with SETNX so only the first of concurrent logouts wins
func (s *BlacklistStore) Add(ctx context.Context, tokenHash string, expiresAt time.Time) (added bool, err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("blacklist_add", backendName, start, err) }(time.Now())

	ttl := expiresAt.Sub(s.now())
	if ttl < minTTL {
		ttl = minTTL
	}

	added, err = s.client.SetNX(ctx, blacklistKey(tokenHash), s.now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return added, nil
}

func (s *BlacklistStore) Contains(ctx context.Context, tokenHash string) (listed bool, err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("blacklist_contains", backendName, start, err) }(time.Now())

	n, err := s.client.Exists(ctx, blacklistKey(tokenHash)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

// TTL returns the remaining lifetime of an entry, zero when absent
func (s *BlacklistStore) TTL(ctx context.Context, tokenHash string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, blacklistKey(tokenHash)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl failed: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
