package fhirclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofhir/client/tag"
	"github.com/gofhir/client/transport"
)

// TagTarget selects the level a tag operation applies to: a resource
// version (Type, ID and VersionID), a resource (Type and ID), a resource
// type (Type) or the whole server.
type TagTarget struct {
	Type      string
	ID        string
	VersionID string
}

func (t TagTarget) path() []string {
	switch {
	case t.Type != "" && t.ID != "" && t.VersionID != "":
		return []string{t.Type, t.ID, "_history", t.VersionID, "_tags"}
	case t.Type != "" && t.ID != "":
		return []string{t.Type, t.ID, "_tags"}
	case t.Type != "":
		return []string{t.Type, "_tags"}
	default:
		return []string{"_tags"}
	}
}

func (t TagTarget) instance() bool {
	return t.Type != "" && t.ID != ""
}

// Tags lists the tags at the target level.
func (c *Client) Tags(ctx context.Context, t TagTarget) ([]tag.Tag, error) {
	resp, err := c.call(ctx, "tags", transport.NewRequest(http.MethodGet, c.url(t.path()...)))
	if err != nil {
		return nil, err
	}
	l, err := tag.ParseList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	return l.Category, nil
}

// AffixTags adds tags to a resource or resource version through the
// Category header. Tags with a blank term are dropped; tag.ErrNoTags is
// returned when none remain.
func (c *Client) AffixTags(ctx context.Context, t TagTarget, tags []tag.Tag) (*transport.Response, error) {
	if !t.instance() {
		return nil, fmt.Errorf("%w: affixing tags needs a resource type and id", ErrPreconditionFailed)
	}
	header, err := tag.Header(tags)
	if err != nil {
		c.log.Warn("affix tags on %s/%s: %v", t.Type, t.ID, err)
		return nil, err
	}
	if dropped := countBlank(tags); dropped > 0 {
		c.log.Warn("affix tags on %s/%s: dropped %d tag(s) without a term", t.Type, t.ID, dropped)
	}

	req := transport.NewRequest(http.MethodPost, c.url(t.path()...))
	req.Header.Set("Category", header)
	return c.call(ctx, "affixTags", req)
}

// RemoveTags removes the tags of a resource (POST _tags/_delete) or of a
// resource version (POST _history/{vid}/_tags).
func (c *Client) RemoveTags(ctx context.Context, t TagTarget) (*transport.Response, error) {
	if !t.instance() {
		return nil, fmt.Errorf("%w: removing tags needs a resource type and id", ErrPreconditionFailed)
	}
	segments := t.path()
	if t.VersionID == "" {
		segments = append(segments, "_delete")
	}
	return c.call(ctx, "removeTags", transport.NewRequest(http.MethodPost, c.url(segments...)))
}

func countBlank(tags []tag.Tag) int {
	n := 0
	for _, t := range tags {
		if strings.TrimSpace(t.Term) == "" {
			n++
		}
	}
	return n
}
