package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/gofhir/client/transport"
)

// DefaultRequestIDHeader is the header RequestID stamps when none is given.
const DefaultRequestIDHeader = "X-Request-Id"

// RequestID stamps a random UUID on every HTTP request under header and
// stores it in the request context. A request id already present in the
// context or header is reused.
func RequestID[C any](header string) Interceptor[C, *transport.Request, *transport.Response] {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return Func[C, *transport.Request, *transport.Response](func(_ C, next Handler[*transport.Request, *transport.Response]) Handler[*transport.Request, *transport.Response] {
		return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			id := req.Header.Get(header)
			if id == "" {
				if fromCtx, ok := RequestIDFrom(ctx); ok {
					id = fromCtx
				} else {
					id = uuid.NewString()
				}
			}
			req = req.Clone()
			req.Header.Set(header, id)
			return next(WithRequestID(ctx, id), req)
		}
	})
}

// Headers adds static headers to every HTTP request. Headers the request
// already carries are left alone.
func Headers[C any](h http.Header) Interceptor[C, *transport.Request, *transport.Response] {
	return Func[C, *transport.Request, *transport.Response](func(_ C, next Handler[*transport.Request, *transport.Response]) Handler[*transport.Request, *transport.Response] {
		return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			if len(h) == 0 {
				return next(ctx, req)
			}
			req = req.Clone()
			for k, vs := range h {
				if req.Header.Get(k) != "" {
					continue
				}
				for _, v := range vs {
					req.Header.Add(k, v)
				}
			}
			return next(ctx, req)
		}
	})
}
