package fhirclient

import (
	"context"

	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/middleware"
	"github.com/gofhir/client/resolve"
	"github.com/gofhir/client/transport"
	"github.com/gofhir/client/worker"
)

// ResolveOptions carries the local sources of a resolution.
type ResolveOptions struct {
	// Resource owns the reference; its contained resources are searched
	// for "#id" references.
	Resource bundle.Resource

	// Bundle is searched for an entry whose id is the absolute URL.
	Bundle *bundle.Bundle
}

func (c *Client) resolveContext(ref resolve.Reference, o ResolveOptions) *resolve.Context {
	return &resolve.Context{
		BaseURL:   c.baseURL,
		Reference: ref,
		Resource:  o.Resource,
		Bundle:    o.Bundle,
		Cache:     c.cache,
		Transport: transport.Func(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			return c.call(ctx, "resolve", req)
		}),
	}
}

// ResolveSync resolves ref from contained resources, the bundle and the
// cache slot. It never performs I/O and returns nil when nothing matches.
func (c *Client) ResolveSync(ref resolve.Reference, o ResolveOptions) *bundle.Entry {
	e, _ := c.Lookup(ref, o)
	return e
}

// Lookup is ResolveSync that also reports which local source matched.
func (c *Client) Lookup(ref resolve.Reference, o ResolveOptions) (*bundle.Entry, resolve.Source) {
	e, src := resolve.Lookup(c.resolveContext(ref, o))
	if e != nil {
		c.metrics.RecordResolution(src, nil)
	}
	return e, src
}

// Resolve resolves ref through the resolve chain, falling back to a single
// GET of the absolute URL when no local source has it.
func (c *Client) Resolve(ctx context.Context, ref resolve.Reference, o ResolveOptions) (*resolve.Result, error) {
	ctx = middleware.WithOperation(ctx, "resolve")
	return c.resolve(ctx, c.resolveContext(ref, o))
}

// ResolveAsync is Resolve delivered on a channel that receives exactly one
// result and is then closed.
func (c *Client) ResolveAsync(ctx context.Context, ref resolve.Reference, o ResolveOptions) <-chan resolve.Result {
	out := make(chan resolve.Result, 1)
	go func() {
		defer close(out)
		r, err := c.Resolve(ctx, ref, o)
		if r == nil {
			r = &resolve.Result{}
		}
		if r.Err == nil {
			r.Err = err
		}
		out <- *r
	}()
	return out
}

// ResolveAll resolves refs concurrently on at most workers goroutines
// (runtime.NumCPU() when workers <= 0). Results are in the order of refs;
// each failure is reported in its Result.Err.
func (c *Client) ResolveAll(ctx context.Context, refs []resolve.Reference, o ResolveOptions, workers int) []resolve.Result {
	b := worker.NewBatch(func(ctx context.Context, ref resolve.Reference) (*resolve.Result, error) {
		return c.Resolve(ctx, ref, o)
	}, workers)

	res := b.Run(ctx, refs)
	out := make([]resolve.Result, len(refs))
	for i, r := range res.Results {
		if r.Value != nil {
			out[i] = *r.Value
		}
		if out[i].Err == nil {
			out[i].Err = r.Error
		}
	}
	return out
}

// doResolve is the innermost handler of the resolve chain. Remote hits are
// stored in the cache slot when caching is enabled.
func (c *Client) doResolve(ctx context.Context, rc *resolve.Context) (*resolve.Result, error) {
	r, err := resolve.Resolve(ctx, rc)
	src := resolve.SourceNone
	if r != nil {
		src = r.Source
	}
	c.metrics.RecordResolution(src, err)

	if err == nil && src == resolve.SourceRemote && c.cache != nil && r.Response != nil {
		var res bundle.Resource
		if derr := r.Response.Decode(&res); derr == nil {
			c.remember(rc.AbsoluteURL(), res)
		} else {
			c.log.Debug("resolve: not caching %s: %v", rc.AbsoluteURL(), derr)
		}
	}
	return r, err
}

// Where returns the entries of b whose resource matches the FHIRPath
// expression.
func (c *Client) Where(b *bundle.Bundle, expr string) ([]bundle.Entry, error) {
	return c.paths.Filter(b, expr)
}
