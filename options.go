package fhirclient

import (
	"net/http"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/gofhir/client/cache"
	"github.com/gofhir/client/middleware"
	"github.com/gofhir/client/pkg/logger"
	"github.com/gofhir/client/predicate"
)

// Option configures the Client.
type Option func(*Options)

// Options holds all configuration for the Client.
type Options struct {
	// Cache enables the per-base-URL resource cache used by resolution.
	Cache bool

	// Slots is the cache registry. Defaults to the process-wide registry.
	Slots *cache.Slots

	// Version pins the fhirVersion media type parameter when set.
	Version FHIRVersion

	// Interceptors per chain, outermost first.
	Middlewares Middlewares

	// Static headers sent with every request.
	Headers http.Header

	// Ambient concerns
	Logger          *logger.Logger
	Tracer          trace.Tracer
	Metrics         *Metrics
	Retry           *middleware.RetryOptions
	RequestIDHeader string

	// ExpressionCacheSize bounds the compiled FHIRPath cache used by Where.
	ExpressionCacheSize int
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Cache:               false,
		Slots:               cache.Shared(),
		Logger:              logger.Default(),
		ExpressionCacheSize: predicate.DefaultCacheSize,
	}
}

// WithCache enables or disables the resource cache for resolution.
func WithCache(enable bool) Option {
	return func(o *Options) {
		o.Cache = enable
	}
}

// WithCacheSlots uses slots instead of the process-wide cache registry.
func WithCacheSlots(slots *cache.Slots) Option {
	return func(o *Options) {
		if slots != nil {
			o.Slots = slots
		}
	}
}

// WithVersion pins requests to a FHIR version.
func WithVersion(v FHIRVersion) Option {
	return func(o *Options) {
		o.Version = v
	}
}

// WithHTTPMiddleware appends interceptors to the HTTP chain.
func WithHTTPMiddleware(interceptors ...HTTPInterceptor) Option {
	return func(o *Options) {
		o.Middlewares.HTTP = append(o.Middlewares.HTTP, interceptors...)
	}
}

// WithSearchMiddleware appends interceptors to the search chain.
func WithSearchMiddleware(interceptors ...SearchInterceptor) Option {
	return func(o *Options) {
		o.Middlewares.Search = append(o.Middlewares.Search, interceptors...)
	}
}

// WithResolveMiddleware appends interceptors to the resolve chain.
func WithResolveMiddleware(interceptors ...ResolveInterceptor) Option {
	return func(o *Options) {
		o.Middlewares.Resolve = append(o.Middlewares.Resolve, interceptors...)
	}
}

// WithLogger sets the logger. Request logging is added to the HTTP chain
// when the logger has debug enabled.
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithHeaders adds static headers to every request.
func WithHeaders(h http.Header) Option {
	return func(o *Options) {
		if o.Headers == nil {
			o.Headers = make(http.Header)
		}
		for k, vs := range h {
			for _, v := range vs {
				o.Headers.Add(k, v)
			}
		}
	}
}

// WithMetrics records client metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithTracer traces every chain with tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Options) {
		o.Tracer = tracer
	}
}

// WithRetry retries failed HTTP calls.
func WithRetry(opts middleware.RetryOptions) Option {
	return func(o *Options) {
		o.Retry = &opts
	}
}

// WithRequestID stamps a request id header on every HTTP call. An empty
// header name uses middleware.DefaultRequestIDHeader.
func WithRequestID(header string) Option {
	return func(o *Options) {
		if header == "" {
			header = middleware.DefaultRequestIDHeader
		}
		o.RequestIDHeader = header
	}
}

// WithExpressionCache sets the compiled FHIRPath cache size.
func WithExpressionCache(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ExpressionCacheSize = size
		}
	}
}

// --- Presets ---

// ResilientOptions returns options for talking to flaky servers:
// default retries and request ids.
func ResilientOptions() []Option {
	return []Option{
		WithRetry(middleware.DefaultRetryOptions()),
		WithRequestID(""),
	}
}

// DebugOptions returns options useful for debugging against a server.
func DebugOptions() []Option {
	return []Option{
		WithLogger(logger.New(os.Stderr, logger.LevelDebug)),
		WithRequestID(""),
	}
}
