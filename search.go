package fhirclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/middleware"
	"github.com/gofhir/client/query"
	"github.com/gofhir/client/transport"
)

// Search runs a type search. The query is compiled before anything is
// sent, so compiler errors never reach the server.
func (c *Client) Search(ctx context.Context, resourceType string, q query.Object) (*bundle.Bundle, error) {
	if resourceType == "" {
		return nil, fmt.Errorf("%w: search needs a resource type", ErrPreconditionFailed)
	}
	if _, err := query.Compile(q); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	ctx = middleware.WithOperation(ctx, "search")
	return c.search(ctx, SearchRequest{Type: resourceType, Query: q})
}

// doSearch is the innermost handler of the search chain.
func (c *Client) doSearch(ctx context.Context, sr SearchRequest) (*bundle.Bundle, error) {
	q, err := query.Compile(sr.Query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	resp, err := c.call(ctx, "search", transport.NewRequest(http.MethodGet, c.url(sr.Type, "_search")+"?"+q))
	if err != nil {
		return nil, err
	}
	return decodeBundle("search", resp)
}

// NextPage follows the single "next" link of b.
func (c *Client) NextPage(ctx context.Context, b *bundle.Bundle) (*bundle.Bundle, error) {
	return c.page(ctx, b, bundle.RelNext)
}

// PrevPage follows the single "prev" link of b.
func (c *Client) PrevPage(ctx context.Context, b *bundle.Bundle) (*bundle.Bundle, error) {
	return c.page(ctx, b, bundle.RelPrev)
}

func (c *Client) page(ctx context.Context, b *bundle.Bundle, rel string) (*bundle.Bundle, error) {
	target, err := b.Rel(rel)
	if err != nil {
		return nil, err
	}
	op := rel + "Page"
	resp, err := c.call(ctx, op, transport.NewRequest(http.MethodGet, target))
	if err != nil {
		return nil, err
	}
	return decodeBundle(op, resp)
}

// Conformance fetches the server capability statement from /metadata.
func (c *Client) Conformance(ctx context.Context) (bundle.Resource, error) {
	return c.get(ctx, "conformance", c.url("metadata"))
}

// ServerVersion reads fhirVersion from the capability statement.
func (c *Client) ServerVersion(ctx context.Context) (FHIRVersion, error) {
	cs, err := c.Conformance(ctx)
	if err != nil {
		return "", err
	}
	release, _ := cs["fhirVersion"].(string)
	v, ok := VersionFromRelease(release)
	if !ok {
		return "", fmt.Errorf("conformance: unsupported fhirVersion %q", release)
	}
	return v, nil
}

// Profile fetches the profile of a resource type from /Profile/{type}.
func (c *Client) Profile(ctx context.Context, resourceType string) (bundle.Resource, error) {
	if resourceType == "" {
		return nil, fmt.Errorf("%w: profile needs a resource type", ErrPreconditionFailed)
	}
	return c.get(ctx, "profile", c.url("Profile", resourceType))
}

// Document posts a document bundle to /Document and returns the raw
// response.
func (c *Client) Document(ctx context.Context, b *bundle.Bundle) (*transport.Response, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: document needs a bundle", ErrPreconditionFailed)
	}
	return c.send(ctx, "document", http.MethodPost, c.url("Document"), b)
}

// Transaction posts a transaction bundle to the base URL and returns the
// response bundle.
func (c *Client) Transaction(ctx context.Context, b *bundle.Bundle) (*bundle.Bundle, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: transaction needs a bundle", ErrPreconditionFailed)
	}
	resp, err := c.send(ctx, "transaction", http.MethodPost, c.url(), b)
	if err != nil {
		return nil, err
	}
	return decodeBundle("transaction", resp)
}
