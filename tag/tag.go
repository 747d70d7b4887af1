// Package tag encodes resource tags for the Category header and decodes
// tag lists returned by the _tags endpoints.
package tag

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofhir/fhir/r4"
)

// ErrNoTags is returned when a tag operation has no tag with a term.
var ErrNoTags = errors.New("empty tags")

// Tag is one resource tag.
type Tag struct {
	Term   string `json:"term"`
	Scheme string `json:"scheme,omitempty"`
	Label  string `json:"label,omitempty"`
}

// String renders the tag as one Category header element.
func (t Tag) String() string {
	return t.Term + `; scheme="` + t.Scheme + `"; label="` + t.Label + `"`
}

// Header renders tags as a Category header value. Tags whose term is empty
// or only whitespace are dropped. ErrNoTags is returned when nothing is
// left.
func Header(tags []Tag) (string, error) {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t.Term) == "" {
			continue
		}
		parts = append(parts, t.String())
	}
	if len(parts) == 0 {
		return "", ErrNoTags
	}
	return strings.Join(parts, ","), nil
}

// FromCoding converts an R4 Coding to a tag: code becomes the term,
// system the scheme and display the label.
func FromCoding(c r4.Coding) Tag {
	return Tag{
		Term:   deref(c.Code),
		Scheme: deref(c.System),
		Label:  deref(c.Display),
	}
}

// FromCodings converts a slice of Codings, typically Meta.tag.
func FromCodings(cs []r4.Coding) []Tag {
	tags := make([]Tag, 0, len(cs))
	for _, c := range cs {
		tags = append(tags, FromCoding(c))
	}
	return tags
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List is the body returned by the _tags endpoints.
type List struct {
	ResourceType string `json:"resourceType"`
	Category     []Tag  `json:"category"`
}

// ParseList decodes a TagList body.
func ParseList(data []byte) (*List, error) {
	var l List
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse tag list: %w", err)
	}
	return &l, nil
}

// ParseHeader splits a Category header value back into tags. Attribute
// values may be quoted; unknown attributes are ignored.
func ParseHeader(h string) []Tag {
	var tags []Tag
	for _, elem := range splitOutsideQuotes(h, ',') {
		fields := splitOutsideQuotes(elem, ';')
		t := Tag{Term: strings.TrimSpace(fields[0])}
		if t.Term == "" {
			continue
		}
		for _, f := range fields[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(f), "=")
			if !ok {
				continue
			}
			v = strings.Trim(strings.TrimSpace(v), `"`)
			switch strings.ToLower(strings.TrimSpace(k)) {
			case "scheme":
				t.Scheme = v
			case "label":
				t.Label = v
			}
		}
		tags = append(tags, t)
	}
	return tags
}

func splitOutsideQuotes(s string, sep byte) []string {
	var (
		parts  []string
		quoted bool
		start  int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case sep:
			if !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
