package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/observability"
)

var (
	// ErrPoolClosed is returned by Submit after Shutdown
	ErrPoolClosed = errors.New("worker pool shut down")
	// ErrQueueFull is returned by Submit when the queue has no room
	ErrQueueFull = errors.New("worker pool queue full")
)

// Task is a unit of work. The context carries the per-task timeout.
type Task func(context.Context) error

// WorkerPool runs tasks on a fixed number of goroutines with panic recovery,
// a per-task timeout and a bounded queue. Submit never blocks.
type WorkerPool struct {
	name    string
	timeout time.Duration
	logger  *observability.Logger

	workCh chan Task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool starts workers goroutines draining a queue of the given size
//
//	pool := NewWorkerPool(ctx, 4, 1024, "audit", 5*time.Second, logger)
//	defer pool.Shutdown(shutdownCtx)
//
//	_ = pool.Submit(func(ctx context.Context) error {
//	    return store.Write(ctx, event)
//	})
func NewWorkerPool(ctx context.Context, workers, queue int, name string, timeout time.Duration, logger *observability.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &WorkerPool{
		name:    name,
		timeout: timeout,
		logger:  logger.WithField("pool", name),
		workCh:  make(chan Task, queue),
		ctx:     ctx,
		cancel:  cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			p.worker()
		}()
	}

	return p
}

// Submit queues fn. It fails fast with ErrQueueFull rather than blocking the caller.
func (p *WorkerPool) Submit(fn Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.workCh <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting work and waits for queued tasks to finish. When
// ctx ends first the running tasks are cancelled.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.workCh)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return fmt.Errorf("worker pool %s shutdown: %w", p.name, ctx.Err())
	}
}

func (p *WorkerPool) worker() {
	for fn := range p.workCh {
		p.run(fn)
	}
}

func (p *WorkerPool) run(fn Task) {
	defer observability.RecoverPanic(p.logger, p.name+" task")

	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := fn(ctx); err != nil {
		p.logger.WithError(err).Warn("Background task failed")
	}
}
