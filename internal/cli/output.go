package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gofhir/client/bundle"
	"github.com/gofhir/client/query"
)

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeEntries prints entries in the selected format. Text output has one
// line per entry: its key, then resourceType/id.
func writeEntries(w io.Writer, format string, entries []bundle.Entry) error {
	if format == "json" {
		if entries == nil {
			entries = []bundle.Entry{}
		}
		return writeJSON(w, entries)
	}
	for i := range entries {
		if _, err := fmt.Fprintln(w, entryLine(&entries[i])); err != nil {
			return err
		}
	}
	return nil
}

// writeResource prints a single resource.
func writeResource(w io.Writer, format string, r bundle.Resource) error {
	if format == "json" {
		return writeJSON(w, r)
	}
	_, err := fmt.Fprintln(w, resourceLine(r))
	return err
}

func entryLine(e *bundle.Entry) string {
	line := resourceLine(e.Body())
	if key := e.Key(); key != "" {
		return key + "\t" + line
	}
	return line
}

func resourceLine(r bundle.Resource) string {
	rt, _ := r["resourceType"].(string)
	id, _ := r["id"].(string)
	if id == "" {
		return rt
	}
	return rt + "/" + id
}

// readInput reads a file, or stdin when path is "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// openInput opens a file, or returns stdin when path is "-".
func openInput(stdin io.Reader, path string) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// parseQuery decodes a query object written as JSON or YAML.
func parseQuery(data []byte) (query.Object, error) {
	q, jerr := query.ParseJSON(data)
	if jerr == nil {
		return q, nil
	}
	q, yerr := query.ParseYAML(data)
	if yerr == nil {
		return q, nil
	}
	return nil, fmt.Errorf("query is neither JSON (%v) nor YAML (%v)", jerr, yerr)
}
