// Package fhirclient is a client for FHIR REST servers.
//
// It compiles search query objects into FHIR search strings, resolves
// references against contained resources, bundles and a per-server cache
// before going to the network, and runs every request through composable
// interceptor chains.
//
// # Quick Start
//
//	import (
//	    fc "github.com/gofhir/client"
//	    "github.com/gofhir/client/query"
//	)
//
//	client, err := fc.New("https://hapi.fhir.org/baseR4", nil, fc.WithCache(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	b, err := client.Search(ctx, "Patient", query.Object{
//	    {Key: "name", Value: query.String("Smith")},
//	    {Key: "birthdate", Value: query.Object{{Key: "$gt", Value: query.String("1970")}}},
//	})
//
// # Functional Options
//
//	client, err := fc.New(base, nil,
//	    fc.WithRetry(middleware.DefaultRetryOptions()),
//	    fc.WithRequestID(""),
//	    fc.WithTracer(otel.Tracer("my-app")),
//	    fc.WithHTTPMiddleware(myInterceptor),
//	)
//
// # Interceptor Chains
//
// There are three chains: HTTP wraps every request sent to the server,
// Search wraps Search, and Resolve wraps Resolve and ResolveAsync. The first
// interceptor listed is the outermost. Built-in tracing, request id, logging,
// header and retry interceptors follow the user ones on the HTTP chain, and
// a metrics interceptor is always innermost.
//
// # Reference Resolution
//
// ResolveSync never performs I/O. Resolve and ResolveAsync try the same
// local sources first and issue exactly one GET only when none of them
// has the resource.
package fhirclient
