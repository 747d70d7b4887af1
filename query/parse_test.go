package query

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseJSON_PreservesOrder(t *testing.T) {
	data := []byte(`{
		"subject": {"name": "maud", "$type": "Patient"},
		"age": {"$gt": 5},
		"$sort": ["birthdate", ["name", "desc"]],
		"$include": {"Patient": ["organization", "careProvider"]}
	}`)

	q, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if diff := cmp.Diff([]string{"subject", "age", "$sort", "$include"}, q.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}

	got, err := Compile(q)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := "subject:Patient.name=maud&age=>5&_sort=birthdate&_sort:desc=name" +
		"&_include=Patient.organization&_include=Patient.careProvider"
	if got != want {
		t.Errorf("Compile() = %q; want %q", got, want)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"boolean", `{"active": true}`},
		{"null", `{"name": null}`},
		{"not an object", `["a"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.data))
			if !errors.Is(err, ErrUnsupportedValueKind) {
				t.Errorf("ParseJSON() error = %v; want ErrUnsupportedValueKind", err)
			}
		})
	}

	if _, err := ParseJSON([]byte(`{"a": `)); err == nil {
		t.Error("ParseJSON() should fail on truncated input")
	}
	if _, err := ParseJSON([]byte(`{"a": "b"} {}`)); err == nil {
		t.Error("ParseJSON() should fail on trailing data")
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
name:
  $exact: Smith
birthdate:
  $lt: 2000-01-01
_count: 20
$sort:
  - [name, asc]
`)

	q, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	got, err := Compile(q)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := "name:exact=Smith&birthdate=<2000-01-01&_count=20&_sort:asc=name"
	if got != want {
		t.Errorf("Compile() = %q; want %q", got, want)
	}
}

func TestParseYAML_Errors(t *testing.T) {
	if _, err := ParseYAML([]byte("active: true\n")); !errors.Is(err, ErrUnsupportedValueKind) {
		t.Errorf("ParseYAML() error = %v; want ErrUnsupportedValueKind", err)
	}
	if _, err := ParseYAML([]byte("- a\n- b\n")); !errors.Is(err, ErrUnsupportedValueKind) {
		t.Errorf("ParseYAML() error = %v; want ErrUnsupportedValueKind", err)
	}
	q, err := ParseYAML(nil)
	if err != nil || len(q) != 0 {
		t.Errorf("ParseYAML(nil) = %v, %v; want empty object", q, err)
	}
}

func TestFromMap_SortsKeys(t *testing.T) {
	q, err := FromMap(map[string]any{
		"name":    "maud",
		"_count":  10,
		"code":    []string{"a", "b"},
		"subject": map[string]any{"$type": "Patient", "name": json.Number("3")},
	})
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}
	got, err := Compile(q)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := "_count=10&code=a%7Cb&name=maud&subject:Patient.name=3"
	if got != want {
		t.Errorf("Compile() = %q; want %q", got, want)
	}
}

func TestFromAny_Rejects(t *testing.T) {
	for _, v := range []any{true, nil, struct{}{}, map[int]string{1: "x"}} {
		if _, err := FromAny(v); !errors.Is(err, ErrUnsupportedValueKind) {
			t.Errorf("FromAny(%#v) error = %v; want ErrUnsupportedValueKind", v, err)
		}
	}
}
