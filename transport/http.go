package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent when the request carries no User-Agent.
	DefaultUserAgent = "gofhir-client"

	// MediaType is the FHIR JSON media type.
	MediaType = "application/fhir+json"

	// DefaultMaxBodySize caps response bodies read into memory (64MB).
	DefaultMaxBodySize = 64 * 1024 * 1024
)

// ErrBodyTooLarge is returned when a response body exceeds the transport's
// size limit.
var ErrBodyTooLarge = errors.New("response body too large")

// HTTP is a Transport backed by net/http.
type HTTP struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
}

// Option configures the HTTP transport.
type Option func(*HTTP)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(h *HTTP) {
		h.httpClient = client
	}
}

// WithTimeout sets the HTTP timeout. A client given with WithHTTPClient is
// copied first, so the caller's client keeps its own timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(h *HTTP) {
		c := *h.httpClient
		c.Timeout = timeout
		h.httpClient = &c
	}
}

// WithMaxBodySize sets the largest response body Do will read. Values
// <= 0 restore DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(h *HTTP) {
		if n <= 0 {
			n = DefaultMaxBodySize
		}
		h.maxBodySize = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(h *HTTP) {
		h.userAgent = ua
	}
}

// NewHTTP creates a net/http transport.
func NewHTTP(opts ...Option) *HTTP {
	h := &HTTP{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Do performs the request. Responses with a status >= 400 are returned
// together with a *StatusError.
func (h *HTTP) Do(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.FullURL(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", MediaType)
	}
	if len(req.Body) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", MediaType+"; charset=utf-8")
	}
	if httpReq.Header.Get("User-Agent") == "" && h.userAgent != "" {
		httpReq.Header.Set("User-Agent", h.userAgent)
	}

	httpResp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to perform %s %s: %w", req.Method, req.URL, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, h.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > h.maxBodySize {
		return nil, fmt.Errorf("%w: %s %s exceeds %d bytes", ErrBodyTooLarge, req.Method, req.URL, h.maxBodySize)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		Request:    req,
	}
	if httpResp.StatusCode >= http.StatusBadRequest {
		return resp, &StatusError{Response: resp}
	}
	return resp, nil
}
