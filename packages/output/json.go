package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/testini/testini/packages/core/runner"
)

// JSONOutput is the complete report structure, also consumed by the
// report command.
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Tests    []JSONTest  `json:"tests"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total      int `json:"total"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
	Deselected int `json:"deselected"`
}

type JSONTest struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Group      string        `json:"group,omitempty"`
	File       string        `json:"file"`
	Status     string        `json:"status"`
	SkipReason string        `json:"skipReason,omitempty"`
	Duration   float64       `json:"duration"`
	Error      string        `json:"error,omitempty"`
	Stdout     string        `json:"stdout,omitempty"`
	Warnings   []JSONWarning `json:"warnings,omitempty"`
}

type JSONWarning struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// JSONFormatter accumulates results and writes one document on Flush.
type JSONFormatter struct {
	writer  io.Writer
	results []JSONTest
	summary JSONSummary
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONTest, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatCase(cr *runner.CaseResult) {
	test := JSONTest{
		ID:         cr.ID,
		Name:       cr.Name,
		Group:      cr.Group,
		File:       cr.File,
		Status:     string(cr.Status),
		SkipReason: cr.SkipReason,
		Duration:   float64(cr.Duration.Milliseconds()),
		Stdout:     cr.Stdout,
	}
	if cr.Err != nil {
		test.Error = cr.Err.Error()
	}
	for _, w := range cr.Warnings {
		test.Warnings = append(test.Warnings, JSONWarning{
			Category: w.Category,
			Message:  w.Message,
			Location: w.Location,
			Line:     w.Line,
		})
	}
	f.results = append(f.results, test)
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	f.summary = JSONSummary{
		Total:      result.Passed + result.Failed + result.Skipped,
		Passed:     result.Passed,
		Failed:     result.Failed,
		Skipped:    result.Skipped,
		Deselected: result.Deselected,
	}
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are carried on the individual test entries.
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header in JSON output.
}

// Flush writes the accumulated document.
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	output := JSONOutput{
		Summary:  f.summary,
		Tests:    f.results,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
