package stream

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gofhir/client/bundle"
)

const collection = `{
	"resourceType": "Bundle",
	"type": "collection",
	"meta": {"tag": [{"code": "x"}]},
	"entry": [
		{"fullUrl": "urn:uuid:patient-1", "resource": {"resourceType": "Patient", "id": "1", "active": true}},
		{"fullUrl": "urn:uuid:patient-2", "resource": {"resourceType": "Patient", "id": "2", "active": false}},
		{"fullUrl": "urn:uuid:empty"},
		{"fullUrl": "urn:uuid:obs-1", "resource": {"resourceType": "Observation", "id": "o1"}}
	],
	"total": 4
}`

func keys(entries []bundle.Entry) []string {
	out := make([]string, len(entries))
	for i := range entries {
		out[i] = entries[i].Key()
	}
	return out
}

func TestDecoder_Entries(t *testing.T) {
	s := Collect(NewDecoder().Entries(context.Background(), strings.NewReader(collection)))

	if s.HasErrors() {
		t.Fatalf("Errors = %v", s.Errors)
	}
	want := []string{"urn:uuid:patient-1", "urn:uuid:patient-2", "urn:uuid:empty", "urn:uuid:obs-1"}
	if diff := cmp.Diff(want, keys(s.Entries)); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if s.String() != "4 entries, 0 errors" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestDecoder_Indexes(t *testing.T) {
	var got []int
	for res := range NewDecoder().WithBufferSize(1).Entries(context.Background(), strings.NewReader(collection)) {
		got = append(got, res.Index)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, got); diff != "" {
		t.Errorf("indexes mismatch (-want +got):\n%s", diff)
	}
}

func TestDecoder_Filter(t *testing.T) {
	patients := func(r bundle.Resource) (bool, error) {
		return r["resourceType"] == "Patient", nil
	}
	s := Collect(NewDecoder().WithFilter(patients).Entries(context.Background(), strings.NewReader(collection)))

	if diff := cmp.Diff([]string{"urn:uuid:patient-1", "urn:uuid:patient-2"}, keys(s.Entries)); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestDecoder_FilterError(t *testing.T) {
	boom := errors.New("boom")
	fail := func(r bundle.Resource) (bool, error) {
		if r["id"] == "2" {
			return false, boom
		}
		return true, nil
	}
	s := Collect(NewDecoder().WithFilter(fail).Entries(context.Background(), strings.NewReader(collection)))

	if len(s.Errors) != 1 || !errors.Is(s.Errors[0], boom) {
		t.Errorf("Errors = %v; want one boom", s.Errors)
	}
	if len(s.Entries) != 2 {
		t.Errorf("len(Entries) = %d; want 2", len(s.Entries))
	}
}

func TestDecoder_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an object", `[1, 2]`},
		{"entry not an array", `{"entry": {}}`},
		{"broken entry", `{"entry": [{"fullUrl": "a"}, {"fullUrl": ]}`},
		{"empty input", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Collect(NewDecoder().Entries(context.Background(), strings.NewReader(tt.input)))
			if !s.HasErrors() {
				t.Error("Collect() should report an error")
			}
		})
	}
}

func TestDecoder_NoEntries(t *testing.T) {
	s := Collect(NewDecoder().Entries(context.Background(), strings.NewReader(`{"resourceType": "Bundle"}`)))
	if s.HasErrors() || len(s.Entries) != 0 {
		t.Errorf("Collect() = %+v; want empty", s)
	}
}

func TestDecoder_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := 0
	for range NewDecoder().Entries(ctx, strings.NewReader(collection)) {
		n++
	}
	if n != 0 {
		t.Errorf("received %d results after cancel; want 0", n)
	}
}
