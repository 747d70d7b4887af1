package resolve

import (
	"errors"

	"github.com/gofhir/client/bundle"
)

// ErrNotFound is returned by a Locator that has no entry for a URL.
var ErrNotFound = errors.New("entry not found")

// Locator looks up an entry by absolute URL in one local source.
// Locators never perform I/O.
type Locator interface {
	Source() Source
	Locate(rc *Context, absURL string) (*bundle.Entry, error)
}

// Chain tries each locator in order and returns the first hit.
type Chain struct {
	locators []Locator
}

// NewChain creates a locator chain.
func NewChain(locators ...Locator) *Chain {
	return &Chain{locators: locators}
}

// DefaultChain looks in the context bundle first and then in the cache.
func DefaultChain() *Chain {
	return NewChain(BundleLocator{}, CacheLocator{})
}

// Add appends a locator to the chain.
func (c *Chain) Add(l Locator) {
	c.locators = append(c.locators, l)
}

// Locate tries each locator until one finds the entry. Errors other than
// ErrNotFound stop the chain.
func (c *Chain) Locate(rc *Context, absURL string) (*bundle.Entry, Source, error) {
	for _, l := range c.locators {
		e, err := l.Locate(rc, absURL)
		if err == nil && e != nil {
			return e, l.Source(), nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, SourceNone, err
		}
	}
	return nil, SourceNone, ErrNotFound
}

// BundleLocator matches bundle entries whose id equals the absolute URL.
type BundleLocator struct{}

// Source implements Locator.
func (BundleLocator) Source() Source { return SourceBundle }

// Locate implements Locator.
func (BundleLocator) Locate(rc *Context, absURL string) (*bundle.Entry, error) {
	if e, ok := rc.Bundle.Find(absURL); ok {
		return e, nil
	}
	return nil, ErrNotFound
}

// CacheLocator reads the context cache slot.
type CacheLocator struct{}

// Source implements Locator.
func (CacheLocator) Source() Source { return SourceCache }

// Locate implements Locator.
func (CacheLocator) Locate(rc *Context, absURL string) (*bundle.Entry, error) {
	if rc.Cache == nil {
		return nil, ErrNotFound
	}
	if e, ok := rc.Cache.Get(absURL); ok && e != nil {
		return e, nil
	}
	return nil, ErrNotFound
}
