// Package predicate filters FHIR resources with FHIRPath expressions.
package predicate

import (
	"encoding/json"
	"fmt"

	"github.com/gofhir/fhirpath"

	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/cache"
)

// DefaultCacheSize bounds the number of compiled expressions kept.
const DefaultCacheSize = 256

// Evaluator compiles and caches FHIRPath expressions. It is safe for
// concurrent use.
type Evaluator struct {
	compiled *cache.Cache[string, *fhirpath.Expression]
}

// New creates an evaluator keeping at most size compiled expressions.
func New(size int) *Evaluator {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Evaluator{compiled: cache.New[string, *fhirpath.Expression](size)}
}

// Compile returns the compiled form of expr, compiling it on first use.
func (e *Evaluator) Compile(expr string) (*fhirpath.Expression, error) {
	if c, ok := e.compiled.Get(expr); ok {
		return c, nil
	}
	c, err := fhirpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile FHIRPath expression '%s': %w", expr, err)
	}
	e.compiled.Set(expr, c)
	return c, nil
}

// Evaluate runs expr against a resource given as JSON bytes, a string or
// any JSON-marshalable value.
func (e *Evaluator) Evaluate(expr string, resource any) (fhirpath.Collection, error) {
	data, err := toJSON(resource)
	if err != nil {
		return nil, fmt.Errorf("failed to convert resource to JSON: %w", err)
	}
	c, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}
	out, err := c.Evaluate(data)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate FHIRPath expression '%s': %w", expr, err)
	}
	return out, nil
}

// Match reports whether expr holds for resource. An empty result is false,
// a single boolean is its value, and any other non-empty result is true.
func (e *Evaluator) Match(expr string, resource any) (bool, error) {
	out, err := e.Evaluate(expr, resource)
	if err != nil {
		return false, err
	}
	return truthy(out), nil
}

// Filter returns the bundle entries whose resource matches expr, in
// bundle order. Entries without a resource are skipped.
func (e *Evaluator) Filter(b *bundle.Bundle, expr string) ([]bundle.Entry, error) {
	if _, err := e.Compile(expr); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}

	var out []bundle.Entry
	for i := range b.Entry {
		r := b.Entry[i].Body()
		if r == nil {
			continue
		}
		ok, err := e.Match(expr, r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if ok {
			out = append(out, b.Entry[i])
		}
	}
	return out, nil
}

// CacheStats reports compiled-expression cache statistics.
func (e *Evaluator) CacheStats() cache.Stats {
	return e.compiled.Stats()
}

func truthy(c fhirpath.Collection) bool {
	if c.Empty() {
		return false
	}
	b, err := c.ToBoolean()
	if err != nil {
		return true
	}
	return b
}

func toJSON(resource any) ([]byte, error) {
	switch v := resource.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

var defaultEvaluator = New(DefaultCacheSize)

// Default returns the shared evaluator.
func Default() *Evaluator {
	return defaultEvaluator
}

// Filter filters a bundle with the shared evaluator.
func Filter(b *bundle.Bundle, expr string) ([]bundle.Entry, error) {
	return defaultEvaluator.Filter(b, expr)
}

// Match evaluates expr against resource with the shared evaluator.
func Match(expr string, resource any) (bool, error) {
	return defaultEvaluator.Match(expr, resource)
}
