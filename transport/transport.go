// Package transport provides the HTTP capability used by the FHIR client.
//
// Every operation of the client ends in a single Transport.Do call. The
// default implementation uses net/http; tests and embedders can supply any
// function through Func.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request describes one HTTP call.
type Request struct {
	Method string
	URL    string
	Params url.Values
	Header http.Header
	Body   []byte
}

// NewRequest creates a request with an empty header set.
func NewRequest(method, rawURL string) *Request {
	return &Request{
		Method: method,
		URL:    rawURL,
		Header: make(http.Header),
	}
}

// Clone returns a deep copy of r, so interceptors can modify it freely.
func (r *Request) Clone() *Request {
	c := *r
	if r.Params != nil {
		c.Params = make(url.Values, len(r.Params))
		for k, v := range r.Params {
			c.Params[k] = append([]string(nil), v...)
		}
	}
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return &c
}

// FullURL returns URL with Params appended as an encoded query string.
func (r *Request) FullURL() string {
	if len(r.Params) == 0 {
		return r.URL
	}
	sep := "?"
	if strings.Contains(r.URL, "?") {
		sep = "&"
	}
	return r.URL + sep + r.Params.Encode()
}

// String returns the method and full URL.
func (r *Request) String() string {
	return r.Method + " " + r.FullURL()
}

// Response is the outcome of a completed HTTP call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Request is the request that produced this response.
	Request *Request
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("failed to decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ContentLocation returns the Content-Location header.
func (r *Response) ContentLocation() string {
	return r.Header.Get("Content-Location")
}

// Transport executes requests.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f Func) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// StatusError is returned when the server answers with a status >= 400.
// The response is kept so callers can inspect an OperationOutcome body.
type StatusError struct {
	Response *Response
}

// Error implements error.
func (e *StatusError) Error() string {
	req := e.Response.Request
	if req == nil {
		return fmt.Sprintf("unexpected status %d", e.Response.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", req.Method, req.URL, e.Response.StatusCode)
}

// StatusCode returns the HTTP status code.
func (e *StatusError) StatusCode() int {
	return e.Response.StatusCode
}

// Temporary reports whether the status indicates a condition worth retrying.
func (e *StatusError) Temporary() bool {
	code := e.Response.StatusCode
	return code == http.StatusTooManyRequests || code >= 500
}
