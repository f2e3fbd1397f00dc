package audit

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/async"
	"github.com/platinummonkey/shopadmin/pkg/observability"
)

// AsyncLogger hands events to a worker pool so request handling never waits
// on the audit backend. Events are dropped, with a warning, when the queue is full.
type AsyncLogger struct {
	next         Logger
	pool         *async.WorkerPool
	logger       *observability.Logger
	drainTimeout time.Duration
}

// NewAsyncLogger wraps next with a pool of workers and a queue of queueSize events
func NewAsyncLogger(next Logger, workers, queueSize int, logger *observability.Logger) *AsyncLogger {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &AsyncLogger{
		next:         next,
		pool:         async.NewWorkerPool(context.Background(), workers, queueSize, "audit", 5*time.Second, logger),
		logger:       logger,
		drainTimeout: 10 * time.Second,
	}
}

// Log queues the event. The request context is not used for the write since
// it ends with the response.
func (a *AsyncLogger) Log(ctx context.Context, event *Event) error {
	err := a.pool.Submit(func(ctx context.Context) error {
		return a.next.Log(ctx, event)
	})
	if errors.Is(err, async.ErrQueueFull) {
		a.logger.WithField("event_type", string(event.EventType)).Warn("Audit queue full, dropping event")
	}
	return err
}

// Close drains queued events and then closes the wrapped logger
func (a *AsyncLogger) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.drainTimeout)
	defer cancel()

	return errors.Join(a.pool.Shutdown(ctx), a.next.Close())
}
