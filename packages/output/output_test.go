package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testini/testini/packages/core/runner"
	"github.com/testini/testini/packages/warnings"
)

func sampleResults() []*runner.CaseResult {
	return []*runner.CaseResult{
		{
			ID:       "tests/test_fleet.suite::TestScooters::test_assign",
			Name:     "test_assign",
			Group:    "TestScooters",
			File:     "tests/test_fleet.suite",
			Status:   runner.StatusPassed,
			Duration: 120 * time.Millisecond,
		},
		{
			ID:     "tests/test_fleet.suite::test_remove",
			Name:   "test_remove",
			File:   "tests/test_fleet.suite",
			Status: runner.StatusFailed,
			Err:    assert.AnError,
			Stderr: "removal refused\n",
		},
		{
			ID:         "tests/test_backup.suite::test_restore",
			Name:       "test_restore",
			File:       "tests/test_backup.suite",
			Status:     runner.StatusSkipped,
			SkipReason: "needs snapshot fixture",
		},
	}
}

func sampleRun(results []*runner.CaseResult) *runner.RunResult {
	rr := &runner.RunResult{Results: results, Duration: 1500 * time.Millisecond}
	for _, cr := range results {
		switch cr.Status {
		case runner.StatusPassed:
			rr.Passed++
		case runner.StatusSkipped:
			rr.Skipped++
		default:
			rr.Failed++
		}
	}
	return rr
}

func TestConsoleFormatter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithVerbose(true), WithNoColor(true))

	results := sampleResults()
	f.FormatHeader("1.0.0")
	for _, cr := range results {
		f.FormatCase(cr)
	}
	f.FormatResult(sampleRun(results))

	out := buf.String()
	assert.Contains(t, out, "testini 1.0.0")
	assert.Contains(t, out, "TestScooters::test_assign PASSED")
	assert.Contains(t, out, "test_remove FAILED")
	assert.Contains(t, out, "SKIPPED (needs snapshot fixture)")
	assert.Contains(t, out, "removal refused")
	assert.Contains(t, out, "1 passed, 1 failed, 1 skipped in 1.50s")
}

func TestConsoleFormatter_ProgressCharacters(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	for _, cr := range sampleResults() {
		f.FormatCase(cr)
	}
	assert.Equal(t, ".Fs", buf.String())
}

func TestConsoleFormatter_WarningsSummary(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	rr := sampleRun(nil)
	rr.Warnings = []*warnings.Warning{
		{Category: "DeprecationWarning", Message: "per-minute rates are deprecated"},
	}
	f.FormatResult(rr)

	assert.Contains(t, buf.String(), "warnings summary")
	assert.Contains(t, buf.String(), "DeprecationWarning")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	results := sampleResults()
	for _, cr := range results {
		f.FormatCase(cr)
	}
	f.FormatResult(sampleRun(results))
	require.NoError(t, f.Flush(1500*time.Millisecond))

	var doc JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 3, doc.Summary.Total)
	assert.Equal(t, 1, doc.Summary.Passed)
	assert.Equal(t, 1, doc.Summary.Failed)
	require.Len(t, doc.Tests, 3)
	assert.Equal(t, "passed", doc.Tests[0].Status)
	assert.Equal(t, "TestScooters", doc.Tests[0].Group)
	assert.NotEmpty(t, doc.Tests[1].Error)
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))

	for _, cr := range sampleResults() {
		f.FormatCase(cr)
	}
	require.NoError(t, f.Flush(1500*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `tests="3"`)
	assert.Contains(t, out, `failures="1"`)
	assert.Contains(t, out, `classname="tests/test_fleet.suite.TestScooters"`)
	assert.Contains(t, out, `<skipped message="needs snapshot fixture"`)
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))

	for _, cr := range sampleResults() {
		f.FormatCase(cr)
	}
	require.NoError(t, f.Flush(time.Second))

	out := buf.String()
	assert.Contains(t, out, "TAP version 13")
	assert.Contains(t, out, "1..3")
	assert.Contains(t, out, "ok 1 - tests/test_fleet.suite::TestScooters::test_assign")
	assert.Contains(t, out, "not ok 2 - tests/test_fleet.suite::test_remove")
	assert.Contains(t, out, "# SKIP needs snapshot fixture")
}

func TestLiveLog(t *testing.T) {
	var buf bytes.Buffer
	l := NewLiveLog(&buf, LevelInfo, "%(asctime)s %(levelname)s %(message)s", "%H:%M:%S")
	l.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }

	l.Debugf("dropped")
	l.Infof("session started with %d cases", 4)

	assert.Equal(t, "09:26:53 INFO session started with 4 cases\n", buf.String())
}

func TestStrftimeLayout(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"%H:%M:%S", "15:04:05"},
		{"%Y-%m-%d %H:%M:%S", "2006-01-02 15:04:05"},
		{"%d %b %Y", "02 Jan 2006"},
		{"100%% %H", "100% 15"},
		{"%Q", "%Q"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, strftimeLayout(tt.format), tt.format)
	}
}
