package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/observability"
	"github.com/robfig/cron/v3"
)

// PurgeScheduler periodically removes expired blacklist entries
type PurgeScheduler struct {
	cron    *cron.Cron
	purger  Purger
	logger  *observability.Logger
	metrics *observability.Metrics
	timeout time.Duration
}

// NewPurgeScheduler registers the purge job on schedule (standard cron syntax
// or descriptors such as "@hourly"). It does not start the scheduler.
func NewPurgeScheduler(purger Purger, schedule string, logger *observability.Logger, metrics *observability.Metrics) (*PurgeScheduler, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	s := &PurgeScheduler{
		cron:    cron.New(),
		purger:  purger,
		logger:  logger.WithField("job", "blacklist_purge"),
		metrics: metrics,
		timeout: time.Minute,
	}

	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}

	return s, nil
}

// RunOnce purges expired entries immediately
func (s *PurgeScheduler) RunOnce() {
	defer observability.RecoverPanic(s.logger, "blacklist purge")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	removed, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Blacklist purge failed")
		return
	}

	s.metrics.RecordPurged(removed)
	if removed > 0 {
		s.logger.Infof("Purged %d expired blacklist entries", removed)
	}
}

// Start runs the scheduler in the background
func (s *PurgeScheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running purge to finish or ctx to end
func (s *PurgeScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
