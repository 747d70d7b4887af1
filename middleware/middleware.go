// Package middleware composes interceptors around client operations.
//
// An operation is a Handler. An Interceptor receives the client
// configuration and the next handler and returns a replacement handler.
// Wrap folds a list of interceptors so that the first one listed is the
// outermost: it sees the call first and the result last.
//
//	h := middleware.Wrap(cfg, base,
//		middleware.Logging[Config, *transport.Request, *transport.Response](log, "http"),
//		middleware.Retry[Config](middleware.DefaultRetryOptions()),
//	)
//
// Interceptors hold no per-call state. Nothing in this package retries
// unless the Retry interceptor is installed.
package middleware

import "context"

// Handler performs one operation.
type Handler[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Interceptor wraps a handler.
type Interceptor[C, Req, Res any] interface {
	Intercept(cfg C, next Handler[Req, Res]) Handler[Req, Res]
}

// Func adapts a function to an Interceptor.
type Func[C, Req, Res any] func(cfg C, next Handler[Req, Res]) Handler[Req, Res]

// Intercept implements Interceptor.
func (f Func[C, Req, Res]) Intercept(cfg C, next Handler[Req, Res]) Handler[Req, Res] {
	return f(cfg, next)
}

// Wrap composes interceptors around base, right to left. With no
// interceptors base is returned unchanged. Nil interceptors, including a
// nil Func, are skipped.
func Wrap[C, Req, Res any](cfg C, base Handler[Req, Res], interceptors ...Interceptor[C, Req, Res]) Handler[Req, Res] {
	h := base
	for i := len(interceptors) - 1; i >= 0; i-- {
		if interceptors[i] == nil {
			continue
		}
		if f, ok := interceptors[i].(Func[C, Req, Res]); ok && f == nil {
			continue
		}
		h = interceptors[i].Intercept(cfg, h)
	}
	return h
}

type operationKey struct{}

// WithOperation returns a copy of ctx naming the client operation in flight.
func WithOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey{}, name)
}

// Operation returns the operation name stored by WithOperation.
func Operation(ctx context.Context) string {
	name, _ := ctx.Value(operationKey{}).(string)
	return name
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying a request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}
