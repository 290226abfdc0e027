package ingest

import (
	"context"
	"sync"
)

// Job is a unit of work submitted to the WorkerPool.
type Job func(ctx context.Context) error

// WorkerPool runs jobs on a fixed number of goroutines. The Ingester uses it
// to analyze articles in parallel.
type WorkerPool struct {
	jobs     chan Job
	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
	workers  int
	closeMu  sync.RWMutex
	closed   bool

	// OnError receives errors returned by jobs. nil drops them.
	OnError func(error)
}

// NewWorkerPool creates a pool with the given number of workers and queue
// capacity. Non-positive values fall back to one worker and a queue of twice
// the worker count.
func NewWorkerPool(workers, queue int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &WorkerPool{
		jobs:    make(chan Job, queue),
		quit:    make(chan struct{}),
		workers: workers,
	}
}

// Start launches the workers. They run until ctx is done or Close is called.
func (p *WorkerPool) Start(ctx context.Context) {
	for range p.workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					if err := job(ctx); err != nil && p.OnError != nil {
						p.OnError(err)
					}
				}
			}
		}()
	}
}

// Submit enqueues a job, blocking while the queue is full.
func (p *WorkerPool) Submit(job Job) error {
	return p.SubmitCtx(context.Background(), job)
}

// SubmitCtx enqueues a job, giving up with ctx.Err() if ctx ends while the
// queue is full. A Submit blocked on a full queue returns ErrPoolClosed once
// Close is called.
func (p *WorkerPool) SubmitCtx(ctx context.Context, job Job) error {
	p.closeMu.RLock()
	defer p.closeMu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits for the workers to finish the queued
// ones.
func (p *WorkerPool) Close() {
	p.quitOnce.Do(func() { close(p.quit) })
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.closeMu.Unlock()
	p.wg.Wait()
}

// ErrPoolClosed is returned if a Submit is attempted after Close.
var ErrPoolClosed = &PoolError{"worker pool closed"}

// PoolError provides a simple typed error for pool operations.
type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }
