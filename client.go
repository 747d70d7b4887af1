package fhirclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/cache"
	"github.com/gofhir/client/middleware"
	"github.com/gofhir/client/pkg/logger"
	"github.com/gofhir/client/predicate"
	"github.com/gofhir/client/resolve"
	"github.com/gofhir/client/transport"
)

// Client talks to one FHIR server. It is safe for concurrent use.
type Client struct {
	baseURL string
	cfg     Config
	opts    *Options

	http    HTTPHandler
	search  SearchHandler
	resolve ResolveHandler

	cache   *cache.Resources
	metrics *Metrics
	log     *logger.Logger
	paths   *predicate.Evaluator
}

// New creates a client for the server at baseURL. A nil transport uses
// transport.NewHTTP().
func New(baseURL string, tr transport.Transport, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Metrics == nil {
		o.Metrics = NewMetrics()
	}
	if tr == nil {
		tr = transport.NewHTTP()
	}

	c := &Client{
		baseURL: baseURL,
		cfg:     Config{BaseURL: baseURL, Cache: o.Cache, Version: o.Version},
		opts:    o,
		metrics: o.Metrics,
		log:     o.Logger,
		paths:   predicate.New(o.ExpressionCacheSize),
	}
	if o.Cache {
		c.cache = o.Slots.For(baseURL)
	}

	c.http = middleware.Wrap(c.cfg, HTTPHandler(tr.Do), c.httpChain()...)
	c.search = middleware.Wrap(c.cfg, SearchHandler(c.doSearch), c.searchChain()...)
	c.resolve = middleware.Wrap(c.cfg, ResolveHandler(c.doResolve), c.resolveChain()...)

	return c, nil
}

// httpChain returns the user interceptors followed by the built-in ones.
// Metrics are always innermost so every attempt is counted.
func (c *Client) httpChain() []HTTPInterceptor {
	o := c.opts
	chain := append([]HTTPInterceptor(nil), o.Middlewares.HTTP...)

	if o.Tracer != nil {
		chain = append(chain, middleware.Tracing[Config, *transport.Request, *transport.Response](o.Tracer, "fhir.http"))
	}
	if o.RequestIDHeader != "" {
		chain = append(chain, middleware.RequestID[Config](o.RequestIDHeader))
	}
	chain = append(chain, middleware.Logging[Config, *transport.Request, *transport.Response](c.log, "http"))
	if h := c.staticHeaders(); len(h) > 0 {
		chain = append(chain, middleware.Headers[Config](h))
	}
	if o.Retry != nil {
		chain = append(chain, middleware.Retry[Config](*o.Retry))
	}
	return append(chain, metricsInterceptor(c.metrics))
}

func (c *Client) searchChain() []SearchInterceptor {
	chain := append([]SearchInterceptor(nil), c.opts.Middlewares.Search...)
	if c.opts.Tracer != nil {
		chain = append(chain, middleware.Tracing[Config, SearchRequest, *bundle.Bundle](c.opts.Tracer, "fhir.search"))
	}
	return chain
}

func (c *Client) resolveChain() []ResolveInterceptor {
	chain := append([]ResolveInterceptor(nil), c.opts.Middlewares.Resolve...)
	if c.opts.Tracer != nil {
		chain = append(chain, middleware.Tracing[Config, *resolve.Context, *resolve.Result](c.opts.Tracer, "fhir.resolve"))
	}
	return chain
}

func (c *Client) staticHeaders() http.Header {
	h := c.opts.Headers.Clone()
	if c.opts.Version.IsValid() {
		if h == nil {
			h = make(http.Header)
		}
		if h.Get("Accept") == "" {
			h.Set("Accept", c.opts.Version.MediaType())
		}
	}
	return h
}

func metricsInterceptor(m *Metrics) HTTPInterceptor {
	return middleware.Func[Config, *transport.Request, *transport.Response](func(_ Config, next HTTPHandler) HTTPHandler {
		return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			m.RecordRequest(time.Since(start), err != nil)
			return resp, err
		}
	})
}

// BaseURL returns the server base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cache returns the resource cache slot, or nil when caching is disabled.
func (c *Client) Cache() *cache.Resources {
	return c.cache
}

// Metrics returns the client metrics.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// Transport returns the client HTTP chain as a Transport, for callers that
// need raw requests to pass through the same interceptors.
func (c *Client) Transport() transport.Transport {
	return transport.Func(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		return c.call(ctx, "raw", req)
	})
}

// call sends req through the HTTP chain under an operation name.
func (c *Client) call(ctx context.Context, op string, req *transport.Request) (*transport.Response, error) {
	ctx = middleware.WithOperation(ctx, op)
	start := time.Now()
	resp, err := c.http(ctx, req)
	c.metrics.RecordOperation(op, time.Since(start), err != nil)
	if err != nil {
		return resp, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

// url joins path segments onto the base URL.
func (c *Client) url(segments ...string) string {
	if len(segments) == 0 {
		return c.baseURL
	}
	return c.baseURL + "/" + strings.Join(segments, "/")
}

// get issues a GET and decodes the JSON resource in the response.
func (c *Client) get(ctx context.Context, op, rawURL string) (bundle.Resource, error) {
	resp, err := c.call(ctx, op, transport.NewRequest(http.MethodGet, rawURL))
	if err != nil {
		return nil, err
	}
	var r bundle.Resource
	if err := resp.Decode(&r); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// send issues a request carrying body as JSON.
func (c *Client) send(ctx context.Context, op, method, rawURL string, body any) (*transport.Response, error) {
	data, err := toJSON(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req := transport.NewRequest(method, rawURL)
	req.Body = data
	return c.call(ctx, op, req)
}

func decodeBundle(op string, resp *transport.Response) (*bundle.Bundle, error) {
	b, err := bundle.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// toJSON encodes a request body. Strings and byte slices are sent as is.
func toJSON(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return data, nil
	}
}

// location returns where the server stored a written resource.
func location(resp *transport.Response) string {
	if loc := resp.ContentLocation(); loc != "" {
		return loc
	}
	return resp.Header.Get("Location")
}

// resourceKey returns the resourceType and id of r.
func resourceKey(r bundle.Resource) (resourceType, id string) {
	resourceType, _ = r["resourceType"].(string)
	id, _ = r["id"].(string)
	return resourceType, id
}
