package fhirclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofhir/client/transport"
)

// IssueSeverity is OperationOutcome.issue.severity.
type IssueSeverity string

const (
	SeverityFatal       IssueSeverity = "fatal"
	SeverityError       IssueSeverity = "error"
	SeverityWarning     IssueSeverity = "warning"
	SeverityInformation IssueSeverity = "information"
)

// Issue is one OperationOutcome.issue entry.
type Issue struct {
	Severity    IssueSeverity `json:"severity"`
	Code        string        `json:"code"`
	Diagnostics string        `json:"diagnostics,omitempty"`
	Expression  []string      `json:"expression,omitempty"`

	// Location is the deprecated spelling of Expression.
	Location []string `json:"location,omitempty"`
}

// IsError returns true for error and fatal issues.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError || i.Severity == SeverityFatal
}

// IsWarning returns true for warnings.
func (i Issue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	path := ""
	switch {
	case len(i.Expression) > 0:
		path = " at " + i.Expression[0]
	case len(i.Location) > 0:
		path = " at " + i.Location[0]
	}
	return string(i.Severity) + ": " + i.Diagnostics + path
}

// Outcome is an OperationOutcome returned by the server, either as the
// body of $validate or alongside an error status.
type Outcome struct {
	ResourceType string  `json:"resourceType"`
	Issue        []Issue `json:"issue,omitempty"`
}

// ParseOutcome decodes an OperationOutcome body.
func ParseOutcome(data []byte) (*Outcome, error) {
	var o Outcome
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse OperationOutcome: %w", err)
	}
	if o.ResourceType != "OperationOutcome" {
		return nil, fmt.Errorf("failed to parse OperationOutcome: unexpected resourceType %q", o.ResourceType)
	}
	return &o, nil
}

// OutcomeFromError returns the OperationOutcome carried by a status error,
// if the server sent one.
func OutcomeFromError(err error) (*Outcome, bool) {
	var se *transport.StatusError
	if !errors.As(err, &se) || se.Response == nil {
		return nil, false
	}
	o, perr := ParseOutcome(se.Response.Body)
	if perr != nil {
		return nil, false
	}
	return o, true
}

// HasErrors reports whether any issue is an error or fatal.
func (o *Outcome) HasErrors() bool {
	for _, i := range o.Issue {
		if i.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the error and fatal issues.
func (o *Outcome) Errors() []Issue {
	var out []Issue
	for _, i := range o.Issue {
		if i.IsError() {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns the warning issues.
func (o *Outcome) Warnings() []Issue {
	var out []Issue
	for _, i := range o.Issue {
		if i.IsWarning() {
			out = append(out, i)
		}
	}
	return out
}

// String joins all issues, one per line.
func (o *Outcome) String() string {
	lines := make([]string, len(o.Issue))
	for i, is := range o.Issue {
		lines[i] = is.String()
	}
	return strings.Join(lines, "\n")
}
