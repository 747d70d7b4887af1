// Package resolve resolves FHIR references against contained resources, an
// enclosing bundle, a per-server cache and, as a last resort, the server.
//
// ResolveSync never performs I/O. ResolveAsync runs the same local lookup
// first and issues at most one GET when nothing local matches.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/cache"
	"github.com/gofhir/client/transport"
)

var (
	// ErrMissingReference is delivered when the reference has no reference string.
	ErrMissingReference = errors.New("no reference found")

	// ErrContainedNotFound is delivered when a local fragment matches no
	// contained resource.
	ErrContainedNotFound = errors.New("contained resource not found")

	// ErrNoTransport is delivered when a remote fetch is needed but the
	// context has no transport.
	ErrNoTransport = errors.New("no transport configured")
)

// Source tells where a resolved entry came from.
type Source int

const (
	SourceNone Source = iota
	SourceContained
	SourceBundle
	SourceCache
	SourceRemote
)

func (s Source) String() string {
	switch s {
	case SourceContained:
		return "contained"
	case SourceBundle:
		return "bundle"
	case SourceCache:
		return "cache"
	case SourceRemote:
		return "remote"
	default:
		return "none"
	}
}

// Reference is a FHIR Reference element.
type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

// Ref builds a Reference from a reference string.
func Ref(ref string) Reference {
	return Reference{Reference: ref}
}

// Context carries everything a resolution needs.
type Context struct {
	BaseURL   string
	Reference Reference

	// Resource owns the reference and is searched for contained resources.
	Resource bundle.Resource

	// Bundle and Cache are optional local sources.
	Bundle *bundle.Bundle
	Cache  *cache.Resources

	// Transport is used for the remote fallback of ResolveAsync.
	Transport transport.Transport

	// Locators overrides the bundle-then-cache lookup order.
	Locators *Chain
}

// AbsoluteURL returns the absolute URL of the context reference.
func (rc *Context) AbsoluteURL() string {
	return AbsoluteURL(rc.BaseURL, rc.Reference.Reference)
}

func (rc *Context) chain() *Chain {
	if rc.Locators != nil {
		return rc.Locators
	}
	return DefaultChain()
}

// Result is the outcome of a resolution. Local hits set Entry; remote
// fetches set Response exactly as returned by the transport.
type Result struct {
	Entry    *bundle.Entry
	Response *transport.Response
	Source   Source
	Err      error
}

// ResolveSync resolves the reference from local sources only and returns
// nil when it cannot.
func ResolveSync(rc *Context) *bundle.Entry {
	e, _ := Lookup(rc)
	return e
}

// Lookup is ResolveSync that also reports which local source matched.
func Lookup(rc *Context) (*bundle.Entry, Source) {
	ref := rc.Reference.Reference
	if ref == "" {
		return nil, SourceNone
	}

	if id, ok := Fragment(ref); ok {
		if r := findContained(rc.Resource, id); r != nil {
			return &bundle.Entry{Content: r}, SourceContained
		}
		return nil, SourceNone
	}

	e, src, err := rc.chain().Locate(rc, rc.AbsoluteURL())
	if err != nil {
		return nil, SourceNone
	}
	return e, src
}

// findContained returns the first contained resource whose id (or legacy
// _id) equals id. Entries without an id never match.
func findContained(owner bundle.Resource, id string) bundle.Resource {
	if owner == nil {
		return nil
	}
	contained, _ := owner["contained"].([]any)
	for _, c := range contained {
		r, ok := c.(map[string]any)
		if !ok {
			continue
		}
		cid, _ := r["id"].(string)
		if cid == "" {
			cid, _ = r["_id"].(string)
		}
		if cid != "" && cid == id {
			return r
		}
	}
	return nil
}

// ResolveAsync resolves the reference and delivers exactly one Result on
// the returned channel, which is then closed. Local hits are delivered
// without touching the transport; otherwise a single GET of the absolute
// URL is issued and its response delivered unchanged.
func ResolveAsync(ctx context.Context, rc *Context) <-chan Result {
	out := make(chan Result, 1)

	deliver := func(r Result) <-chan Result {
		out <- r
		close(out)
		return out
	}

	if e, src := Lookup(rc); e != nil {
		return deliver(Result{Entry: e, Source: src})
	}

	ref := rc.Reference.Reference
	if ref == "" {
		return deliver(Result{Err: ErrMissingReference})
	}
	if id, ok := Fragment(ref); ok {
		return deliver(Result{Err: fmt.Errorf("%w: #%s", ErrContainedNotFound, id)})
	}
	if rc.Transport == nil {
		return deliver(Result{Err: ErrNoTransport})
	}

	req := transport.NewRequest(http.MethodGet, rc.AbsoluteURL())
	go func() {
		defer close(out)
		resp, err := rc.Transport.Do(ctx, req)
		out <- Result{Response: resp, Source: SourceRemote, Err: err}
	}()
	return out
}

// Resolve blocks until ResolveAsync delivers or ctx is done.
func Resolve(ctx context.Context, rc *Context) (*Result, error) {
	select {
	case r := <-ResolveAsync(ctx, rc):
		if r.Err != nil {
			return &r, r.Err
		}
		return &r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
