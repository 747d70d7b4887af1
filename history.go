package fhirclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/transport"
)

// HistoryRequest selects a history level: instance when Type and ID are
// set, type when only Type is set, and system otherwise.
type HistoryRequest struct {
	Type string
	ID   string

	// Count limits the page size (_count) when positive.
	Count int

	// Since limits results to changes after this instant (_since) when set.
	Since time.Time
}

func (r HistoryRequest) path() []string {
	switch {
	case r.Type != "" && r.ID != "":
		return []string{r.Type, r.ID, "_history"}
	case r.Type != "":
		return []string{r.Type, "_history"}
	default:
		return []string{"_history"}
	}
}

func (r HistoryRequest) params() url.Values {
	p := url.Values{}
	if !r.Since.IsZero() {
		p.Set("_since", r.Since.Format(time.RFC3339))
	}
	if r.Count > 0 {
		p.Set("_count", strconv.Itoa(r.Count))
	}
	return p
}

// History fetches a history bundle.
func (c *Client) History(ctx context.Context, r HistoryRequest) (*bundle.Bundle, error) {
	req := transport.NewRequest(http.MethodGet, c.url(r.path()...))
	req.Params = r.params()
	resp, err := c.call(ctx, "history", req)
	if err != nil {
		return nil, err
	}
	return decodeBundle("history", resp)
}
