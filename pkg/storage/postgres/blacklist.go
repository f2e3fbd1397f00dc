package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/observability"
)

// BlacklistStore persists revoked token hashes in the token_blacklist table
type BlacklistStore struct {
	db      *sql.DB
	metrics *observability.Metrics
	now     func() time.Time
}

// NewBlacklistStore creates a blacklist store. metrics may be nil.
func NewBlacklistStore(db *sql.DB, metrics *observability.Metrics) *BlacklistStore {
	return &BlacklistStore{db: db, metrics: metrics, now: time.Now}
}

// Add inserts the hash unless present. The primary key makes concurrent
// logouts of the same token report exactly one insert.
func (s *BlacklistStore) Add(ctx context.Context, tokenHash string, expiresAt time.Time) (added bool, err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("blacklist_add", backendName, start, err) }(time.Now())

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO token_blacklist (token_hash, created_at, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (token_hash) DO NOTHING`,
		tokenHash, s.now().UTC(), expiresAt.UTC())
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}

func (s *BlacklistStore) Contains(ctx context.Context, tokenHash string) (listed bool, err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("blacklist_contains", backendName, start, err) }(time.Now())

	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE token_hash = $1 AND expires_at > $2)`,
		tokenHash, s.now().UTC()).Scan(&listed)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return listed, nil
}

// PurgeExpired deletes entries whose token has expired
func (s *BlacklistStore) PurgeExpired(ctx context.Context) (removed int64, err error) {
	defer func(start time.Time) { s.metrics.ObserveStorage("blacklist_purge", backendName, start, err) }(time.Now())

	result, err := s.db.ExecContext(ctx, `DELETE FROM token_blacklist WHERE expires_at <= $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	removed, err = result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return removed, nil
}
