package cache

import (
	"strings"
	"sync"

	"github.com/gofhir/client/bundle"
)

// Resources maps absolute resource URLs to previously resolved entries.
type Resources = Cache[string, *bundle.Entry]

// Slots holds one resource cache per FHIR base URL. Slots are created on
// first use and live as long as the Slots value; nothing is evicted.
type Slots struct {
	mu    sync.Mutex
	slots map[string]*Resources
}

// NewSlots creates an empty slot registry.
func NewSlots() *Slots {
	return &Slots{slots: make(map[string]*Resources)}
}

// For returns the cache for baseURL, creating it if needed. A trailing
// slash on baseURL is ignored.
func (s *Slots) For(baseURL string) *Resources {
	key := strings.TrimRight(baseURL, "/")

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.slots[key]; ok {
		return c
	}
	c := NewUnbounded[string, *bundle.Entry]()
	s.slots[key] = c
	return c
}

// Lookup returns the cache for baseURL without creating it.
func (s *Slots) Lookup(baseURL string) (*Resources, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.slots[strings.TrimRight(baseURL, "/")]
	return c, ok
}

// Len returns the number of slots.
func (s *Slots) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

var shared = NewSlots()

// Shared returns the process-wide slot registry.
func Shared() *Slots {
	return shared
}

// ForBaseURL returns the process-wide cache for baseURL, creating it lazily.
func ForBaseURL(baseURL string) *Resources {
	return shared.For(baseURL)
}
