package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/gofhir/client/transport"
)

// RetryOptions configures the Retry interceptor.
type RetryOptions struct {
	// MaxTries is the total number of attempts, including the first.
	// Zero means no limit.
	MaxTries uint

	InitialInterval time.Duration
	MaxInterval     time.Duration

	// MaxElapsedTime bounds the total time spent retrying. Zero means no bound.
	MaxElapsedTime time.Duration

	// Notify, if set, is called before each retry with the error and delay.
	Notify func(err error, next time.Duration)
}

// DefaultRetryOptions returns three attempts with a short exponential backoff.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxTries:        3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxElapsedTime:  30 * time.Second,
	}
}

// Retryable reports whether a failed HTTP call is worth repeating:
// transport failures and temporary status errors (429 and 5xx) are,
// other status errors and context cancellation are not.
func Retryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *transport.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

// Retry repeats failed HTTP calls with exponential backoff. The last
// response and error are returned when attempts run out.
func Retry[C any](opts RetryOptions) Interceptor[C, *transport.Request, *transport.Response] {
	return Func[C, *transport.Request, *transport.Response](func(_ C, next Handler[*transport.Request, *transport.Response]) Handler[*transport.Request, *transport.Response] {
		return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			b := backoff.NewExponentialBackOff()
			if opts.InitialInterval > 0 {
				b.InitialInterval = opts.InitialInterval
			}
			if opts.MaxInterval > 0 {
				b.MaxInterval = opts.MaxInterval
			}

			retryOpts := []backoff.RetryOption{
				backoff.WithBackOff(b),
				backoff.WithMaxTries(opts.MaxTries),
				backoff.WithMaxElapsedTime(opts.MaxElapsedTime),
			}
			if opts.Notify != nil {
				retryOpts = append(retryOpts, backoff.WithNotify(opts.Notify))
			}

			resp, err := backoff.Retry(ctx, func() (*transport.Response, error) {
				resp, err := next(ctx, req.Clone())
				if err != nil && !Retryable(ctx, err) {
					return resp, backoff.Permanent(err)
				}
				return resp, err
			}, retryOpts...)

			var perm *backoff.PermanentError
			if errors.As(err, &perm) {
				err = perm.Unwrap()
			}
			return resp, err
		}
	})
}
