package fhirclient

import (
	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/middleware"
	"github.com/gofhir/client/query"
	"github.com/gofhir/client/resolve"
	"github.com/gofhir/client/transport"
)

// Config is the client configuration handed to every interceptor.
type Config struct {
	BaseURL string
	Cache   bool
	Version FHIRVersion
}

// SearchRequest is the input of the search chain.
type SearchRequest struct {
	Type  string
	Query query.Object
}

// String renders the search URL path and compiled query for logs.
func (r SearchRequest) String() string {
	q, err := query.Compile(r.Query)
	if err != nil {
		return r.Type + "/_search (" + err.Error() + ")"
	}
	return r.Type + "/_search?" + q
}

// Handler and interceptor types of the three client chains.
type (
	HTTPHandler    = middleware.Handler[*transport.Request, *transport.Response]
	SearchHandler  = middleware.Handler[SearchRequest, *bundle.Bundle]
	ResolveHandler = middleware.Handler[*resolve.Context, *resolve.Result]

	HTTPInterceptor    = middleware.Interceptor[Config, *transport.Request, *transport.Response]
	SearchInterceptor  = middleware.Interceptor[Config, SearchRequest, *bundle.Bundle]
	ResolveInterceptor = middleware.Interceptor[Config, *resolve.Context, *resolve.Result]
)

// Middlewares lists the interceptors of each chain, outermost first.
type Middlewares struct {
	HTTP    []HTTPInterceptor
	Search  []SearchInterceptor
	Resolve []ResolveInterceptor
}
