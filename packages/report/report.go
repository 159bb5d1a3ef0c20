package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	_ "embed"
)

//go:embed schema.json
var schemaJSON []byte

// Report is a loaded JSON report produced by the json output format.
type Report struct {
	path string
	data []byte
}

// Load reads and validates a report file.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Report{path: path, data: data}, nil
}

// Validate checks a report document against the embedded schema.
func Validate(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var descs []string
	for _, desc := range result.Errors() {
		descs = append(descs, desc.String())
	}
	return fmt.Errorf("invalid report: %s", strings.Join(descs, "; "))
}

// Query evaluates a gjson path expression against the report, e.g.
// "summary.failed" or "tests.#(status==failed).id".
func (r *Report) Query(path string) (gjson.Result, error) {
	result := gjson.GetBytes(r.data, path)
	if !result.Exists() {
		return result, fmt.Errorf("path %q matched nothing", path)
	}
	return result, nil
}

// Failed returns the ids of failed and timed out tests.
func (r *Report) Failed() []string {
	var ids []string
	for _, t := range gjson.GetBytes(r.data, "tests").Array() {
		status := t.Get("status").String()
		if status == "failed" || status == "timeout" {
			ids = append(ids, t.Get("id").String())
		}
	}
	return ids
}
