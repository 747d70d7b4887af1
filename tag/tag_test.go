package tag

import (
	"errors"
	"testing"

	"github.com/gofhir/fhir/r4"
	"github.com/google/go-cmp/cmp"
)

func ptr(s string) *string { return &s }

func TestHeader(t *testing.T) {
	tests := []struct {
		name    string
		tags    []Tag
		want    string
		wantErr error
	}{
		{
			name: "single",
			tags: []Tag{{Term: "urgent", Scheme: "http://hl7.org/fhir/tag", Label: "Urgent"}},
			want: `urgent; scheme="http://hl7.org/fhir/tag"; label="Urgent"`,
		},
		{
			name: "drops blank terms",
			tags: []Tag{{Term: "  "}, {Term: "a", Scheme: "s", Label: "l"}, {Term: ""}, {Term: "b", Scheme: "s2", Label: "l2"}},
			want: `a; scheme="s"; label="l",b; scheme="s2"; label="l2"`,
		},
		{name: "all blank", tags: []Tag{{Term: " "}}, wantErr: ErrNoTags},
		{name: "none", wantErr: ErrNoTags},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Header(tt.tags)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Header() error = %v; want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Header() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestFromCoding(t *testing.T) {
	got := FromCodings([]r4.Coding{
		{System: ptr("http://terminology.hl7.org/CodeSystem/v3-ActReason"), Code: ptr("HTEST"), Display: ptr("test health data")},
		{Code: ptr("bare")},
	})
	want := []Tag{
		{Term: "HTEST", Scheme: "http://terminology.hl7.org/CodeSystem/v3-ActReason", Label: "test health data"},
		{Term: "bare"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromCodings() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHeader(t *testing.T) {
	tags := []Tag{
		{Term: "a", Scheme: "http://x/s;1", Label: "A, label"},
		{Term: "b", Scheme: "s2", Label: "l2"},
	}
	h, err := Header(tags)
	if err != nil {
		t.Fatalf("Header() error = %v", err)
	}
	if diff := cmp.Diff(tags, ParseHeader(h)); diff != "" {
		t.Errorf("ParseHeader() mismatch (-want +got):\n%s", diff)
	}

	if got := ParseHeader(""); len(got) != 0 {
		t.Errorf("ParseHeader(\"\") = %v; want none", got)
	}
}

func TestParseList(t *testing.T) {
	l, err := ParseList([]byte(`{"resourceType":"TagList","category":[{"term":"t","scheme":"s","label":"l"}]}`))
	if err != nil {
		t.Fatalf("ParseList() error = %v", err)
	}
	if diff := cmp.Diff([]Tag{{Term: "t", Scheme: "s", Label: "l"}}, l.Category); diff != "" {
		t.Errorf("Category mismatch (-want +got):\n%s", diff)
	}
	if _, err := ParseList([]byte(`[`)); err == nil {
		t.Error("ParseList() should fail on malformed JSON")
	}
}
