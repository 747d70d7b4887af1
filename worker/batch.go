package worker

import (
	"context"
	"runtime"
	"strconv"
	"time"
)

// Batch runs a function over a slice of inputs.
type Batch[In, Out any] struct {
	fn      Func[In, Out]
	workers int
}

// NewBatch creates a batch runner. If workers <= 0, it defaults to
// runtime.NumCPU().
func NewBatch[In, Out any](fn Func[In, Out], workers int) *Batch[In, Out] {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Batch[In, Out]{fn: fn, workers: workers}
}

// Run processes inputs and returns one result per input, in input order.
// Inputs not started before ctx is done fail with the context error.
func (b *Batch[In, Out]) Run(ctx context.Context, inputs []In) *BatchResult[Out] {
	if len(inputs) == 0 {
		return &BatchResult[Out]{Results: make([]*JobResult[Out], 0)}
	}

	// For small batches, don't use parallelism
	if len(inputs) <= 2 || b.workers == 1 {
		return b.runSequential(ctx, inputs)
	}
	return b.runParallel(ctx, inputs)
}

func (b *Batch[In, Out]) runSequential(ctx context.Context, inputs []In) *BatchResult[Out] {
	br := &BatchResult[Out]{
		Results:   make([]*JobResult[Out], len(inputs)),
		TotalJobs: len(inputs),
	}

	for i, in := range inputs {
		start := time.Now()
		r := &JobResult[Out]{ID: strconv.Itoa(i), Index: i}
		switch {
		case b.fn == nil:
			r.Error = ErrNoFunc
		case ctx.Err() != nil:
			r.Error = ctx.Err()
		default:
			r.Value, r.Error = b.fn(ctx, in)
		}
		r.Duration = time.Since(start).Nanoseconds()
		br.add(r)
	}
	return br
}

func (b *Batch[In, Out]) runParallel(ctx context.Context, inputs []In) *BatchResult[Out] {
	workers := b.workers
	if workers > len(inputs) {
		workers = len(inputs)
	}
	p := NewPool(ctx, b.fn, workers)

	// Submit jobs
	go func() {
		defer p.Close()
		for i, in := range inputs {
			if !p.Submit(Job[In]{ID: strconv.Itoa(i), Index: i, Input: in}) {
				return
			}
		}
	}()

	br := &BatchResult[Out]{
		Results:   make([]*JobResult[Out], len(inputs)),
		TotalJobs: len(inputs),
	}
	for r := range p.Results() {
		br.add(r)
	}

	// Jobs never submitted because ctx ended
	for i, r := range br.Results {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			br.Results[i] = &JobResult[Out]{ID: strconv.Itoa(i), Index: i, Error: err}
			br.FailedJobs++
		}
	}
	return br
}

func (br *BatchResult[Out]) add(r *JobResult[Out]) {
	br.Results[r.Index] = r
	br.CompletedJobs++
	br.TotalDuration += r.Duration
	if r.Error != nil {
		br.FailedJobs++
	}
}
