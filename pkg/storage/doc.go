// Package storage holds the configuration and composition types shared by the
// persistence backends of the admin panel.
//
// # Backends
//
//   - memory: in-process maps (pkg/storage/memory), for development and tests
//   - postgres: users and blacklist tables with unique indexes (pkg/storage/postgres)
//   - redis: blacklist only, one key per token hash with a TTL equal to the
//     token's remaining lifetime (pkg/storage/redisstore)
//
// The user store and the blacklist can use different backends, e.g. users in
// PostgreSQL and the blacklist in Redis. A Postgres-backed blacklist is
// fronted by an LRU of known-revoked tokens (pkg/storage/cache) and purged on
// a cron schedule.
//
// # Related Packages
//
//   - pkg/auth: UserStore and BlacklistStore interfaces
//   - pkg/config: environment configuration producing storage.Config
package storage
