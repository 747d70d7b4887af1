// Package bundle models FHIR bundles as used by the client: an in-memory
// lookup of entries by absolute URL plus paging relation links.
package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAmbiguousLinkRelation is returned when a bundle does not carry exactly
// one link with the requested relation.
var ErrAmbiguousLinkRelation = errors.New("ambiguous link relation")

// Paging relations.
const (
	RelNext = "next"
	RelPrev = "prev"
	RelSelf = "self"
)

// Resource is a decoded FHIR resource.
type Resource = map[string]any

// Bundle is a container of resource entries.
type Bundle struct {
	ResourceType string  `json:"resourceType,omitempty"`
	ID           string  `json:"id,omitempty"`
	Type         string  `json:"type,omitempty"`
	Total        *int    `json:"total,omitempty"`
	Link         []Link  `json:"link,omitempty"`
	Entry        []Entry `json:"entry,omitempty"`
}

// Link is a bundle relation link.
type Link struct {
	Rel  string `json:"rel,omitempty"`
	Href string `json:"href,omitempty"`

	// Relation and URL are the R4 spellings of Rel and Href.
	Relation string `json:"relation,omitempty"`
	URL      string `json:"url,omitempty"`
}

// RelationName returns the link relation, whichever spelling is set.
func (l Link) RelationName() string {
	if l.Rel != "" {
		return l.Rel
	}
	return l.Relation
}

// Target returns the link target, whichever spelling is set.
func (l Link) Target() string {
	if l.Href != "" {
		return l.Href
	}
	return l.URL
}

// Entry is one bundle entry. ID holds the absolute URL the entry is looked
// up by; Content holds the resource.
type Entry struct {
	ID      string   `json:"id,omitempty"`
	FullURL string   `json:"fullUrl,omitempty"`
	Content Resource `json:"content,omitempty"`

	// Resource is the R4 spelling of Content.
	Resource Resource `json:"resource,omitempty"`
}

// Key returns the absolute URL of the entry: ID, falling back to FullURL.
func (e *Entry) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.FullURL
}

// Body returns the entry resource, whichever spelling is set.
func (e *Entry) Body() Resource {
	if e.Content != nil {
		return e.Content
	}
	return e.Resource
}

// Parse decodes a JSON bundle.
func Parse(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}
	return &b, nil
}

// Find returns the first entry whose ID equals url.
func (b *Bundle) Find(url string) (*Entry, bool) {
	if b == nil {
		return nil, false
	}
	for i := range b.Entry {
		if b.Entry[i].Key() == url {
			return &b.Entry[i], true
		}
	}
	return nil, false
}

// Links returns the targets of every link with the given relation.
func (b *Bundle) Links(rel string) []string {
	if b == nil {
		return nil
	}
	var urls []string
	for _, l := range b.Link {
		if l.RelationName() == rel {
			urls = append(urls, l.Target())
		}
	}
	return urls
}

// Rel returns the single link target with the given relation. Zero or
// several matches yield ErrAmbiguousLinkRelation.
func (b *Bundle) Rel(rel string) (string, error) {
	urls := b.Links(rel)
	if len(urls) != 1 {
		return "", fmt.Errorf("%w: no single %s link found in bundle (%d matches)", ErrAmbiguousLinkRelation, rel, len(urls))
	}
	return urls[0], nil
}

// Resources returns the resources of all entries in order.
func (b *Bundle) Resources() []Resource {
	if b == nil {
		return nil
	}
	out := make([]Resource, 0, len(b.Entry))
	for i := range b.Entry {
		if r := b.Entry[i].Body(); r != nil {
			out = append(out, r)
		}
	}
	return out
}
