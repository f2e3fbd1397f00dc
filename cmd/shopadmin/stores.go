package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/observability"
	"github.com/platinummonkey/shopadmin/pkg/storage"
	"github.com/platinummonkey/shopadmin/pkg/storage/cache"
	"github.com/platinummonkey/shopadmin/pkg/storage/memory"
	"github.com/platinummonkey/shopadmin/pkg/storage/postgres"
	"github.com/platinummonkey/shopadmin/pkg/storage/redisstore"
)

// backends holds the stores plus the raw connections needed for health checks
type backends struct {
	storage.Stores
	DB    *sql.DB
	Redis *redis.Client
}

// openBackends connects the configured user and blacklist stores. The
// postgres pool is shared when both live there. A redis client is opened
// whenever a URL is configured so the login limiter can use it.
func openBackends(ctx context.Context, cfg storage.Config, metrics *observability.Metrics, logger *observability.Logger) (*backends, error) {
	b := &backends{}
	b.Close = b.close

	needsPostgres := cfg.Type == storage.BackendPostgres || cfg.EffectiveBlacklistBackend() == storage.BackendPostgres
	if needsPostgres {
		db, err := postgres.Connect(ctx, postgres.ConnectionConfigFrom(cfg))
		if err != nil {
			return nil, err
		}
		b.DB = db

		if cfg.RunMigrations {
			if err := postgres.RunMigrations(ctx, db); err != nil {
				_ = b.close()
				return nil, err
			}
			logger.Info("Database migrations applied")
		}
	}

	if cfg.RedisURL != "" {
		client, err := redisstore.NewClient(ctx, cfg)
		if err != nil {
			_ = b.close()
			return nil, err
		}
		b.Redis = client
	}

	switch cfg.Type {
	case storage.BackendPostgres:
		b.Users = postgres.NewUserStore(b.DB, metrics)
	default:
		b.Users = memory.NewUserStore()
	}

	var blacklist auth.BlacklistStore
	switch cfg.EffectiveBlacklistBackend() {
	case storage.BackendPostgres:
		pg := postgres.NewBlacklistStore(b.DB, metrics)
		blacklist, b.Purger = pg, pg
	case storage.BackendRedis:
		// entries expire through key TTLs, nothing to purge
		blacklist = redisstore.NewBlacklistStore(b.Redis, metrics)
	default:
		mem := memory.NewBlacklistStore()
		blacklist, b.Purger = mem, mem
	}

	if cfg.BlacklistCacheSize > 0 {
		blacklist = cache.NewBlacklistCache(blacklist, cfg.BlacklistCacheSize, cfg.BlacklistCacheTTL, metrics)
	}
	b.Blacklist = blacklist

	logger.WithFields(map[string]interface{}{
		"users":     cfg.Type,
		"blacklist": cfg.EffectiveBlacklistBackend(),
		"cache":     cfg.BlacklistCacheSize,
	}).Info("Storage initialized")

	return b, nil
}

func (b *backends) close() error {
	var errs []error
	if b.DB != nil {
		if err := b.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
