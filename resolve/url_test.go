package resolve

import "testing"

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"Patient/1", base + "/Patient/1"},
		{base + "/Patient/1", base + "/Patient/1"},
		{"http://other.example/Patient/1", base + "/http://other.example/Patient/1"},
		{base + "x/Patient/1", base + "/" + base + "x/Patient/1"},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(base, tt.ref); got != tt.want {
			t.Errorf("AbsoluteURL(%q) = %q; want %q", tt.ref, got, tt.want)
		}
	}
}

func TestRelativeURL(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{base + "/Patient/1", "Patient/1"},
		{"Patient/1", "Patient/1"},
		{"http://other.example/Patient/1", "http://other.example/Patient/1"},
	}
	for _, tt := range tests {
		if got := RelativeURL(base, tt.ref); got != tt.want {
			t.Errorf("RelativeURL(%q) = %q; want %q", tt.ref, got, tt.want)
		}
	}
}

func TestResourceIDToURL(t *testing.T) {
	tests := []struct {
		id   string
		base string
		want string
	}{
		{"123", base, base + "/Patient/123"},
		{"/123", base + "/", base + "/Patient/123"},
		{"Patient/123", base, base + "/Patient/123"},
		{base + "/Patient/123", base, base + "/Patient/123"},
	}
	for _, tt := range tests {
		if got := ResourceIDToURL(tt.id, tt.base, "Patient"); got != tt.want {
			t.Errorf("ResourceIDToURL(%q, %q) = %q; want %q", tt.id, tt.base, got, tt.want)
		}
	}
}

func TestFragment(t *testing.T) {
	if id, ok := Fragment("#obs1"); !ok || id != "obs1" {
		t.Errorf("Fragment(#obs1) = %q, %v", id, ok)
	}
	if _, ok := Fragment("Patient/1"); ok {
		t.Error("Fragment(Patient/1) should not match")
	}
}
