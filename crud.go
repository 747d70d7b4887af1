package fhirclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/resolve"
	"github.com/gofhir/client/transport"
)

// Create posts r to /{resourceType} and returns the location the server
// assigned.
func (c *Client) Create(ctx context.Context, r bundle.Resource) (string, error) {
	resourceType, _ := resourceKey(r)
	if resourceType == "" {
		return "", fmt.Errorf("%w: resourceType should be present", ErrPreconditionFailed)
	}
	resp, err := c.send(ctx, "create", http.MethodPost, c.url(resourceType), r)
	if err != nil {
		return "", err
	}
	return location(resp), nil
}

// Validate posts r to /{resourceType}/_validate and returns the
// OperationOutcome. When the server rejects the resource with an error
// status, the outcome it sent is returned along with the error.
func (c *Client) Validate(ctx context.Context, r bundle.Resource) (*Outcome, error) {
	resourceType, _ := resourceKey(r)
	if resourceType == "" {
		return nil, fmt.Errorf("%w: resourceType should be present", ErrPreconditionFailed)
	}
	resp, err := c.send(ctx, "validate", http.MethodPost, c.url(resourceType, "_validate"), r)
	if err != nil {
		if o, ok := OutcomeFromError(err); ok {
			return o, err
		}
		return nil, err
	}
	if len(resp.Body) == 0 {
		return &Outcome{ResourceType: "OperationOutcome"}, nil
	}
	o, err := ParseOutcome(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return o, nil
}

// Read fetches {resourceType}/{id}. When caching is enabled the resource is
// stored in the cache slot under its absolute URL.
func (c *Client) Read(ctx context.Context, resourceType, id string) (bundle.Resource, error) {
	if resourceType == "" || id == "" {
		return nil, fmt.Errorf("%w: read needs a resource type and id", ErrPreconditionFailed)
	}
	abs := resolve.AbsoluteURL(c.baseURL, resourceType+"/"+id)
	r, err := c.get(ctx, "read", abs)
	if err != nil {
		return nil, err
	}
	c.remember(abs, r)
	return r, nil
}

// VRead fetches version vid of {resourceType}/{id}.
func (c *Client) VRead(ctx context.Context, resourceType, id, vid string) (bundle.Resource, error) {
	if resourceType == "" || id == "" || vid == "" {
		return nil, fmt.Errorf("%w: vread needs a resource type, id and version", ErrPreconditionFailed)
	}
	return c.get(ctx, "vread", c.url(resourceType, id, "_history", vid))
}

// Update puts r to /{resourceType}/{id} and returns the location of the new
// version.
func (c *Client) Update(ctx context.Context, r bundle.Resource) (string, error) {
	resourceType, id := resourceKey(r)
	if resourceType == "" || id == "" {
		return "", fmt.Errorf("%w: update needs resourceType and id", ErrPreconditionFailed)
	}
	abs := resolve.AbsoluteURL(c.baseURL, resourceType+"/"+id)
	resp, err := c.send(ctx, "update", http.MethodPut, abs, r)
	if err != nil {
		return "", err
	}
	c.forget(abs)
	return location(resp), nil
}

// Delete removes r from the server and from the cache slot.
func (c *Client) Delete(ctx context.Context, r bundle.Resource) error {
	resourceType, id := resourceKey(r)
	if resourceType == "" || id == "" {
		return fmt.Errorf("%w: delete needs resourceType and id", ErrPreconditionFailed)
	}
	abs := resolve.AbsoluteURL(c.baseURL, resourceType+"/"+id)
	if _, err := c.call(ctx, "delete", transport.NewRequest(http.MethodDelete, abs)); err != nil {
		return err
	}
	c.forget(abs)
	return nil
}

// IsNotFound reports whether err is a 404 or 410 from the server.
func IsNotFound(err error) bool {
	var se *transport.StatusError
	if !errors.As(err, &se) {
		return false
	}
	code := se.StatusCode()
	return code == http.StatusNotFound || code == http.StatusGone
}

func (c *Client) remember(absURL string, r bundle.Resource) {
	if c.cache == nil || r == nil {
		return
	}
	c.cache.Set(absURL, &bundle.Entry{ID: absURL, Content: r})
}

func (c *Client) forget(absURL string) {
	if c.cache != nil {
		c.cache.Delete(absURL)
	}
}
