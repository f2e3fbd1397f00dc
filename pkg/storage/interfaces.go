package storage

import (
	"context"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/auth"
)

// Backend names accepted in Config
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Stores bundles the persistence used by the auth service
type Stores struct {
	Users     auth.UserStore
	Blacklist auth.BlacklistStore

	// Purger is set when the blacklist backend needs periodic cleanup
	Purger Purger

	// Close releases backend connections
	Close func() error
}

// Purger removes blacklist entries whose token has expired
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Config for storage backends
type Config struct {
	Type             string // "memory" or "postgres"
	BlacklistBackend string // "memory", "postgres" or "redis"

	// PostgreSQL config
	PostgresURL         string
	PostgresMaxConns    int
	PostgresMinConns    int
	PostgresTimeout     time.Duration
	PostgresMaxLifetime time.Duration
	PostgresMaxIdleTime time.Duration
	RunMigrations       bool

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Blacklist config
	BlacklistCacheSize int
	BlacklistCacheTTL  time.Duration
	PurgeSchedule      string

	// SeedFile lists accounts created at startup when absent
	SeedFile string
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:                BackendMemory,
		BlacklistBackend:    "",
		PostgresMaxConns:    20,
		PostgresMinConns:    2,
		PostgresTimeout:     10 * time.Second,
		PostgresMaxLifetime: 30 * time.Minute,
		PostgresMaxIdleTime: 5 * time.Minute,
		RunMigrations:       true,
		RedisDB:             0,
		RedisMaxRetries:     3,
		RedisPoolSize:       10,
		BlacklistCacheSize:  10000,
		BlacklistCacheTTL:   10 * time.Minute,
		PurgeSchedule:       "@hourly",
	}
}

// EffectiveBlacklistBackend returns the blacklist backend, defaulting to the
// user store type when unset
func (c Config) EffectiveBlacklistBackend() string {
	if c.BlacklistBackend != "" {
		return c.BlacklistBackend
	}
	return c.Type
}
