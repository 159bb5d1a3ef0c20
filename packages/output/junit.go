package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/testini/testini/packages/core/runner"
)

// JUnitTestSuites is the root element.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite groups the cases of one suite file.
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter formats test results as JUnit XML for CI ingestion.
type JUnitFormatter struct {
	writer io.Writer
	order  []string
	suites map[string]*JUnitTestSuite
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer: os.Stdout,
		suites: make(map[string]*JUnitTestSuite),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

func (f *JUnitFormatter) FormatCase(cr *runner.CaseResult) {
	suite, ok := f.suites[cr.File]
	if !ok {
		suite = &JUnitTestSuite{Name: cr.File}
		f.suites[cr.File] = suite
		f.order = append(f.order, cr.File)
	}

	className := cr.File
	if cr.Group != "" {
		className = cr.File + "." + cr.Group
	}
	tc := JUnitTestCase{
		Name:      cr.Name,
		ClassName: className,
		Time:      cr.Duration.Seconds(),
	}

	suite.Tests++
	suite.Time += cr.Duration.Seconds()

	switch cr.Status {
	case runner.StatusSkipped:
		suite.Skipped++
		tc.Skipped = &JUnitSkipped{Message: cr.SkipReason}
	case runner.StatusTimedOut:
		suite.Failures++
		tc.Failure = &JUnitFailure{
			Message: cr.Err.Error(),
			Type:    "Timeout",
			Content: cr.Stderr,
		}
	case runner.StatusFailed:
		suite.Failures++
		msg := "script failed"
		if cr.Err != nil {
			msg = cr.Err.Error()
		}
		tc.Failure = &JUnitFailure{
			Message: msg,
			Type:    "Failure",
			Content: cr.Stderr,
		}
	}

	suite.TestCases = append(suite.TestCases, tc)
}

func (f *JUnitFormatter) FormatResult(result *runner.RunResult) {
	// Everything is accumulated per case; totals are computed on Flush.
}

func (f *JUnitFormatter) FormatError(err error) {
	// Errors are included in individual test cases.
}

func (f *JUnitFormatter) FormatHeader(version string) {
	// No header in JUnit XML.
}

// Flush writes the accumulated JUnit XML document.
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	root := JUnitTestSuites{
		Name:      "testini",
		Time:      totalDuration.Seconds(),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	for _, file := range f.order {
		suite := f.suites[file]
		root.Tests += suite.Tests
		root.Failures += suite.Failures
		root.Errors += suite.Errors
		root.Skipped += suite.Skipped
		root.TestSuites = append(root.TestSuites, *suite)
	}

	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	return encoder.Encode(root)
}
