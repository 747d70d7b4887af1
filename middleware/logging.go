package middleware

import (
	"context"
	"time"

	"github.com/gofhir/client/pkg/logger"
)

// Logging logs the start, finish and duration of every call at debug level
// and failures at warn level. Lines carry the operation and request id found
// in the context as op and request_id fields. A nil logger uses
// logger.Default().
func Logging[C, Req, Res any](l *logger.Logger, name string) Interceptor[C, Req, Res] {
	return Func[C, Req, Res](func(_ C, next Handler[Req, Res]) Handler[Req, Res] {
		return func(ctx context.Context, req Req) (Res, error) {
			log := l
			if log == nil {
				log = logger.Default()
			}
			if op := Operation(ctx); op != "" {
				log = log.With("op", op)
			}
			if id, ok := RequestIDFrom(ctx); ok {
				log = log.With("request_id", id)
			}

			log.Debug("%s: start %v", name, req)
			start := time.Now()
			res, err := next(ctx, req)
			elapsed := time.Since(start)

			if err != nil {
				log.Warn("%s: failed after %s: %v", name, elapsed, err)
				return res, err
			}
			log.Debug("%s: done in %s", name, elapsed)
			return res, nil
		}
	})
}
