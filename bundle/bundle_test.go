package bundle

import (
	"errors"
	"testing"
)

const searchset = `{
	"resourceType": "Bundle",
	"type": "searchset",
	"total": 3,
	"link": [
		{"relation": "self", "url": "http://fhir.example/Patient?_count=1"},
		{"relation": "next", "url": "http://fhir.example/Patient?_count=1&page=2"}
	],
	"entry": [
		{"fullUrl": "http://fhir.example/Patient/1", "resource": {"resourceType": "Patient", "id": "1"}},
		{"id": "http://fhir.example/Patient/2", "content": {"resourceType": "Patient", "id": "2"}}
	]
}`

func TestParse(t *testing.T) {
	b, err := Parse([]byte(searchset))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if b.ResourceType != "Bundle" || b.Type != "searchset" {
		t.Errorf("ResourceType/Type = %q/%q", b.ResourceType, b.Type)
	}
	if b.Total == nil || *b.Total != 3 {
		t.Errorf("Total = %v; want 3", b.Total)
	}
	if len(b.Entry) != 2 {
		t.Fatalf("len(Entry) = %d; want 2", len(b.Entry))
	}

	if _, err := Parse([]byte(`{"entry": 1}`)); err == nil {
		t.Error("Parse() should fail on malformed bundle")
	}
}

func TestBundle_Find(t *testing.T) {
	b, _ := Parse([]byte(searchset))

	e, ok := b.Find("http://fhir.example/Patient/2")
	if !ok {
		t.Fatal("Find() should locate entry by id")
	}
	if e.Body()["id"] != "2" {
		t.Errorf("Body()[id] = %v; want 2", e.Body()["id"])
	}

	e, ok = b.Find("http://fhir.example/Patient/1")
	if !ok {
		t.Fatal("Find() should fall back to fullUrl")
	}
	if e.Body()["id"] != "1" {
		t.Errorf("Body()[id] = %v; want 1", e.Body()["id"])
	}

	if _, ok := b.Find("http://fhir.example/Patient/3"); ok {
		t.Error("Find() should miss unknown url")
	}

	var nilBundle *Bundle
	if _, ok := nilBundle.Find("x"); ok {
		t.Error("Find() on nil bundle should miss")
	}
}

func TestBundle_FindFirstMatch(t *testing.T) {
	b := &Bundle{Entry: []Entry{
		{ID: "http://x/Patient/1", Content: Resource{"n": "first"}},
		{ID: "http://x/Patient/1", Content: Resource{"n": "second"}},
	}}
	e, _ := b.Find("http://x/Patient/1")
	if e.Content["n"] != "first" {
		t.Errorf("Find() returned %v; want first match", e.Content["n"])
	}
}

func TestBundle_Rel(t *testing.T) {
	b, _ := Parse([]byte(searchset))

	next, err := b.Rel(RelNext)
	if err != nil {
		t.Fatalf("Rel(next) error = %v", err)
	}
	if next != "http://fhir.example/Patient?_count=1&page=2" {
		t.Errorf("Rel(next) = %q", next)
	}

	if _, err := b.Rel(RelPrev); !errors.Is(err, ErrAmbiguousLinkRelation) {
		t.Errorf("Rel(prev) error = %v; want ErrAmbiguousLinkRelation", err)
	}

	b.Link = append(b.Link, Link{Rel: "next", Href: "http://other"})
	if _, err := b.Rel(RelNext); !errors.Is(err, ErrAmbiguousLinkRelation) {
		t.Errorf("Rel(next) with two links error = %v; want ErrAmbiguousLinkRelation", err)
	}
}

func TestBundle_Resources(t *testing.T) {
	b, _ := Parse([]byte(searchset))
	rs := b.Resources()
	if len(rs) != 2 {
		t.Fatalf("len(Resources()) = %d; want 2", len(rs))
	}
	if rs[0]["id"] != "1" || rs[1]["id"] != "2" {
		t.Errorf("Resources() = %v", rs)
	}
}
