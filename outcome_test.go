package fhirclient

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofhir/client/transport"
)

const outcomeJSON = `{
	"resourceType": "OperationOutcome",
	"issue": [
		{"severity": "error", "code": "required", "diagnostics": "name is required", "expression": ["Patient.name"]},
		{"severity": "warning", "code": "business-rule", "diagnostics": "no narrative", "location": ["Patient.text"]},
		{"severity": "information", "code": "informational", "diagnostics": "ok"}
	]
}`

func TestParseOutcome(t *testing.T) {
	o, err := ParseOutcome([]byte(outcomeJSON))
	if err != nil {
		t.Fatalf("ParseOutcome() error = %v", err)
	}
	if !o.HasErrors() {
		t.Error("HasErrors() = false; want true")
	}
	if len(o.Errors()) != 1 || len(o.Warnings()) != 1 {
		t.Errorf("Errors()/Warnings() = %d/%d; want 1/1", len(o.Errors()), len(o.Warnings()))
	}

	want := "error: name is required at Patient.name\nwarning: no narrative at Patient.text\ninformation: ok"
	if got := o.String(); got != want {
		t.Errorf("String() = %q; want %q", got, want)
	}

	if _, err := ParseOutcome([]byte(`{"resourceType":"Patient"}`)); err == nil {
		t.Error("ParseOutcome() should reject other resource types")
	}
}

func TestOutcomeFromError(t *testing.T) {
	resp := &transport.Response{StatusCode: 422, Body: []byte(outcomeJSON)}
	err := fmt.Errorf("validate: %w", &transport.StatusError{Response: resp})

	o, ok := OutcomeFromError(err)
	if !ok {
		t.Fatal("OutcomeFromError() should find the outcome")
	}
	if len(o.Issue) != 3 {
		t.Errorf("len(Issue) = %d; want 3", len(o.Issue))
	}

	if _, ok := OutcomeFromError(errors.New("plain")); ok {
		t.Error("OutcomeFromError() should miss plain errors")
	}
	html := &transport.StatusError{Response: &transport.Response{StatusCode: 500, Body: []byte("<html>")}}
	if _, ok := OutcomeFromError(html); ok {
		t.Error("OutcomeFromError() should miss non-JSON bodies")
	}
}
