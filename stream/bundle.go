// Package stream decodes bundle entries one at a time from a reader, so
// large search results and exports can be filtered without holding the
// whole bundle in memory.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gofhir/client/bundle"
)

// EntryResult is one decoded bundle entry, or a decoding failure.
type EntryResult struct {
	// Index is the position of the entry in the bundle, or -1 for errors
	// about the bundle itself.
	Index int

	Entry bundle.Entry

	// Error is set if the entry could not be decoded or filtered.
	Error error
}

// MatchFunc decides whether an entry resource is emitted.
type MatchFunc func(r bundle.Resource) (bool, error)

// Decoder streams bundle entries.
type Decoder struct {
	// bufferSize is the channel buffer size
	bufferSize int

	match MatchFunc
}

// NewDecoder creates a streaming bundle decoder that emits every entry.
func NewDecoder() *Decoder {
	return &Decoder{bufferSize: 100}
}

// WithBufferSize sets the channel buffer size.
func (d *Decoder) WithBufferSize(size int) *Decoder {
	if size > 0 {
		d.bufferSize = size
	}
	return d
}

// WithFilter emits only entries whose resource satisfies match. Entries
// without a resource are skipped when a filter is set.
func (d *Decoder) WithFilter(match MatchFunc) *Decoder {
	d.match = match
	return d
}

// Entries decodes the bundle read from r and emits entries in bundle order.
// The channel is closed after the last entry, after a bundle-level error,
// or once ctx is done.
func (d *Decoder) Entries(ctx context.Context, r io.Reader) <-chan *EntryResult {
	results := make(chan *EntryResult, d.bufferSize)

	go func() {
		defer close(results)

		emit := func(res *EntryResult) bool {
			select {
			case <-ctx.Done():
				return false
			case results <- res:
				return true
			}
		}
		fail := func(format string, args ...any) {
			emit(&EntryResult{Index: -1, Error: fmt.Errorf(format, args...)})
		}

		decoder := json.NewDecoder(r)

		// Read opening brace
		token, err := decoder.Token()
		if err != nil {
			fail("failed to read bundle: %w", err)
			return
		}
		if delim, ok := token.(json.Delim); !ok || delim != '{' {
			fail("expected object start, got %v", token)
			return
		}

		// Skip bundle fields until "entry"
		for decoder.More() {
			if ctx.Err() != nil {
				return
			}

			token, err := decoder.Token()
			if err != nil {
				fail("failed to read field: %w", err)
				return
			}
			if name, _ := token.(string); name == "entry" {
				d.entries(ctx, decoder, emit)
				return
			}

			var skip json.RawMessage
			if err := decoder.Decode(&skip); err != nil {
				fail("failed to skip field %v: %w", token, err)
				return
			}
		}
	}()

	return results
}

// entries decodes the entry array.
func (d *Decoder) entries(ctx context.Context, decoder *json.Decoder, emit func(*EntryResult) bool) {
	token, err := decoder.Token()
	if err != nil {
		emit(&EntryResult{Index: -1, Error: fmt.Errorf("failed to read entry array: %w", err)})
		return
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		emit(&EntryResult{Index: -1, Error: fmt.Errorf("expected array start, got %v", token)})
		return
	}

	for index := 0; decoder.More(); index++ {
		if ctx.Err() != nil {
			return
		}

		res := &EntryResult{Index: index}
		if err := decoder.Decode(&res.Entry); err != nil {
			// The decoder cannot resynchronise inside a malformed value
			emit(&EntryResult{Index: index, Error: fmt.Errorf("failed to decode entry %d: %w", index, err)})
			return
		}

		if d.match != nil {
			body := res.Entry.Body()
			if body == nil {
				continue
			}
			ok, err := d.match(body)
			if err != nil {
				res.Error = fmt.Errorf("entry %d: %w", index, err)
			} else if !ok {
				continue
			}
		}

		if !emit(res) {
			return
		}
	}
}

// Summary aggregates a stream.
type Summary struct {
	// Entries holds the emitted entries in bundle order.
	Entries []bundle.Entry

	// Errors holds decoding and filter errors.
	Errors []error
}

// Collect drains results.
func Collect(results <-chan *EntryResult) *Summary {
	s := &Summary{}
	for res := range results {
		if res.Error != nil {
			s.Errors = append(s.Errors, res.Error)
			continue
		}
		s.Entries = append(s.Entries, res.Entry)
	}
	return s
}

// HasErrors returns true if any entry failed.
func (s *Summary) HasErrors() bool {
	return len(s.Errors) > 0
}

// String returns a one-line summary.
func (s *Summary) String() string {
	return fmt.Sprintf("%d entries, %d errors", len(s.Entries), len(s.Errors))
}
