package worker

import "context"

// Func processes one input.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Job is one unit of work submitted to a Pool.
type Job[In any] struct {
	// ID is a caller-chosen identifier echoed in the result.
	ID string

	// Index is the position of the job in its batch.
	Index int

	Input In
}

// JobResult is the outcome of one Job.
type JobResult[Out any] struct {
	// ID and Index match the Job that produced this result.
	ID    string
	Index int

	Value Out
	Error error

	// Duration is the time taken by the job (in nanoseconds).
	Duration int64
}

// BatchResult aggregates results from multiple jobs.
type BatchResult[Out any] struct {
	// Results holds one result per input, in input order.
	Results []*JobResult[Out]

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs is the number of jobs completed (including errors).
	CompletedJobs int

	// FailedJobs is the number of jobs that failed with an error.
	FailedJobs int

	// TotalDuration is the summed job time (in nanoseconds).
	TotalDuration int64
}

// HasErrors returns true if any job failed.
func (br *BatchResult[Out]) HasErrors() bool {
	return br.FailedJobs > 0
}

// Values returns the job values in input order. Failed jobs contribute
// their zero value.
func (br *BatchResult[Out]) Values() []Out {
	out := make([]Out, len(br.Results))
	for i, r := range br.Results {
		if r != nil {
			out[i] = r.Value
		}
	}
	return out
}

// Errors returns the job errors in input order, nil for successful jobs.
func (br *BatchResult[Out]) Errors() []error {
	out := make([]error, len(br.Results))
	for i, r := range br.Results {
		if r != nil {
			out[i] = r.Error
		}
	}
	return out
}
