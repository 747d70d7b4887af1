package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Pool manages a pool of worker goroutines. Every submitted job yields
// exactly one result; jobs picked up after the pool context is cancelled
// fail with the context error without running.
type Pool[In, Out any] struct {
	workers int
	jobs    chan Job[In]
	results chan *JobResult[Out]
	fn      Func[In, Out]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	// Metrics
	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	jobsFailed    atomic.Uint64
	totalDuration atomic.Uint64
}

// NewPool creates a pool with the specified number of workers.
// If workers <= 0, it defaults to runtime.NumCPU().
func NewPool[In, Out any](ctx context.Context, fn Func[In, Out], workers int) *Pool[In, Out] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(ctx)

	p := &Pool[In, Out]{
		workers: workers,
		jobs:    make(chan Job[In], workers*2),
		results: make(chan *JobResult[Out], workers*2),
		fn:      fn,
		ctx:     ctx,
		cancel:  cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		close(p.results)
		cancel()
	}()

	return p
}

// Submit submits a job, blocking while the queue is full. It returns false
// if the pool is closed or its context is done.
func (p *Pool[In, Out]) Submit(job Job[In]) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// SubmitAsync submits a job without blocking.
// Returns false if the job queue is full or the pool is closed.
func (p *Pool[In, Out]) SubmitAsync(job Job[In]) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- job:
		p.jobsSubmitted.Add(1)
		return true
	default:
		return false
	}
}

// Results returns the result channel. It is closed once the pool is closed
// and every submitted job has produced its result, so callers must drain
// it.
func (p *Pool[In, Out]) Results() <-chan *JobResult[Out] {
	return p.results
}

// Close stops accepting jobs. Queued jobs still run.
func (p *Pool[In, Out]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.jobs)
}

// Abort cancels the pool context and closes it. Queued jobs fail with
// context.Canceled.
func (p *Pool[In, Out]) Abort() {
	p.cancel()
	p.Close()
}

// Stats returns current pool statistics.
func (p *Pool[In, Out]) Stats() PoolStats {
	return PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		JobsFailed:    p.jobsFailed.Load(),
		AvgDuration:   p.averageDuration(),
	}
}

// PoolStats contains pool statistics.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	JobsFailed    uint64
	AvgDuration   time.Duration
}

func (p *Pool[In, Out]) worker() {
	defer p.wg.Done()

	for job := range p.jobs {
		result := p.processJob(job)
		p.jobsCompleted.Add(1)
		if result.Error != nil {
			p.jobsFailed.Add(1)
		}
		p.totalDuration.Add(uint64(result.Duration)) //nolint:gosec // Safe: durations are positive

		p.results <- result
	}
}

func (p *Pool[In, Out]) processJob(job Job[In]) *JobResult[Out] {
	start := time.Now()
	result := &JobResult[Out]{ID: job.ID, Index: job.Index}

	switch {
	case p.fn == nil:
		result.Error = ErrNoFunc
	case p.ctx.Err() != nil:
		result.Error = p.ctx.Err()
	default:
		result.Value, result.Error = p.fn(p.ctx, job.Input)
	}

	result.Duration = time.Since(start).Nanoseconds()
	return result
}

func (p *Pool[In, Out]) averageDuration() time.Duration {
	completed := p.jobsCompleted.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(p.totalDuration.Load() / completed) //nolint:gosec // Safe: nanoseconds within int64 range
}

// ErrNoFunc is returned when the pool has no function configured.
var ErrNoFunc = poolError("no worker function configured")

type poolError string

func (e poolError) Error() string {
	return string(e)
}
