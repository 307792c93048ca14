package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/logger"
)

// Task is one unit of work run by the pool. It should stop early when ctx
// is cancelled.
type Task func(ctx context.Context)

// Pool is a fixed set of workers fed by a bounded queue. The queue holds as
// many tasks as there are workers; Submit blocks while it is full, which is
// how the producer is slowed to the processing rate.
type Pool struct {
	tasks   chan Task
	group   *errgroup.Group
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewPool starts workers goroutines. The pool context derives from parent
// and is cancelled when Shutdown's grace period runs out.
func NewPool(parent context.Context, workers int, shutdownTimeout time.Duration) *Pool {
	if workers <= 0 {
		workers = domain.DefaultThreads
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = domain.DefaultShutdownTimeout
	}

	ctx, cancel := context.WithCancel(parent)
	p := &Pool{
		tasks:   make(chan Task, workers),
		group:   &errgroup.Group{},
		ctx:     ctx,
		cancel:  cancel,
		timeout: shutdownTimeout,
	}

	for i := 0; i < workers; i++ {
		id := i
		p.group.Go(func() error {
			p.worker(id)
			return nil
		})
	}
	return p
}

// Submit queues a task, blocking while the queue is full. It returns
// ErrPoolClosed after Shutdown, or the context error if ctx or the pool is
// cancelled while waiting.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return domain.ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Shutdown stops accepting tasks and waits for queued and running tasks to
// finish. If they outlive the grace period the pool context is cancelled,
// Shutdown waits for the workers to return and reports ErrShutdownTimeout.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-timer.C:
		logger.Warn("worker pool: tasks still running after %s, cancelling", p.timeout)
		p.cancel()
		<-done
		return fmt.Errorf("%w after %s", domain.ErrShutdownTimeout, p.timeout)
	}
}

func (p *Pool) worker(id int) {
	logger.Debug("worker %d started", id)
	for task := range p.tasks {
		p.run(id, task)
	}
	logger.Debug("worker %d stopped", id)
}

// run executes one task; a panic is contained to the task.
func (p *Pool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker %d: task panicked: %v", id, r)
		}
	}()
	task(p.ctx)
}
