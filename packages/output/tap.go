package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/testini/testini/packages/core/runner"
)

// TAPFormatter formats test results in TAP (Test Anything Protocol)
// format.
type TAPFormatter struct {
	writer  io.Writer
	results []tapResult
}

type tapResult struct {
	number     int
	id         string
	status     runner.Status
	skipReason string
	error      string
}

type TAPOption func(*TAPFormatter)

func NewTAPFormatter(opts ...TAPOption) *TAPFormatter {
	f := &TAPFormatter{
		writer:  os.Stdout,
		results: make([]tapResult, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func TAPWithWriter(w io.Writer) TAPOption {
	return func(f *TAPFormatter) {
		f.writer = w
	}
}

func (f *TAPFormatter) FormatCase(cr *runner.CaseResult) {
	tr := tapResult{
		number:     len(f.results) + 1,
		id:         cr.ID,
		status:     cr.Status,
		skipReason: cr.SkipReason,
	}
	if cr.Err != nil {
		tr.error = cr.Err.Error()
	}
	f.results = append(f.results, tr)
}

func (f *TAPFormatter) FormatResult(result *runner.RunResult) {
	// Everything is accumulated per case and written on Flush.
}

func (f *TAPFormatter) FormatError(err error) {
	// Errors are included in individual test results.
}

func (f *TAPFormatter) FormatHeader(version string) {
	// Header is written in Flush.
}

// Flush writes the accumulated TAP output.
func (f *TAPFormatter) Flush(totalDuration time.Duration) error {
	fmt.Fprintf(f.writer, "TAP version 13\n")
	fmt.Fprintf(f.writer, "1..%d\n", len(f.results))

	for _, r := range f.results {
		switch r.status {
		case runner.StatusSkipped:
			reason := r.skipReason
			if reason == "" {
				reason = "SKIP"
			}
			fmt.Fprintf(f.writer, "ok %d - %s # SKIP %s\n", r.number, r.id, reason)

		case runner.StatusPassed:
			fmt.Fprintf(f.writer, "ok %d - %s\n", r.number, r.id)

		default:
			fmt.Fprintf(f.writer, "not ok %d - %s\n", r.number, r.id)
			if r.error != "" {
				fmt.Fprintf(f.writer, "  ---\n")
				fmt.Fprintf(f.writer, "  message: %s\n", escapeYAML(r.error))
				fmt.Fprintf(f.writer, "  severity: error\n")
				fmt.Fprintf(f.writer, "  ...\n")
			}
		}
	}

	fmt.Fprintln(f.writer)
	return nil
}

func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":\n\"'[]{}#&*!|>%@`") {
		s = strings.ReplaceAll(s, "\"", "\\\"")
		return "\"" + s + "\""
	}
	return s
}
