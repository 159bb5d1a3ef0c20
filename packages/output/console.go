package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/testini/testini/packages/core/runner"
)

type ConsoleFormatter struct {
	writer   io.Writer
	verbose  bool
	quiet    bool
	noColor  bool
	progress bool // short-form status characters were written
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithQuiet(q bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.quiet = q
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	if f.quiet {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n\n", bold("testini"), version)
}

// FormatCase prints one line per case in verbose mode, a single status
// character otherwise.
func (f *ConsoleFormatter) FormatCase(cr *runner.CaseResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	if !f.verbose {
		f.progress = true
		switch cr.Status {
		case runner.StatusPassed:
			fmt.Fprint(f.writer, green("."))
		case runner.StatusSkipped:
			fmt.Fprint(f.writer, yellow("s"))
		case runner.StatusTimedOut:
			fmt.Fprint(f.writer, red("T"))
		default:
			fmt.Fprint(f.writer, red("F"))
		}
		return
	}

	switch cr.Status {
	case runner.StatusPassed:
		fmt.Fprintf(f.writer, "%s %s %s\n", cr.ID, green("PASSED"),
			cyan(fmt.Sprintf("(%dms)", cr.Duration.Milliseconds())))
	case runner.StatusSkipped:
		fmt.Fprintf(f.writer, "%s %s (%s)\n", cr.ID, yellow("SKIPPED"), cr.SkipReason)
	case runner.StatusTimedOut:
		fmt.Fprintf(f.writer, "%s %s %s\n", cr.ID, red("TIMEOUT"),
			red(fmt.Sprintf("(%v)", cr.Err)))
	default:
		fmt.Fprintf(f.writer, "%s %s\n", cr.ID, red("FAILED"))
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if f.progress {
		fmt.Fprintf(f.writer, "\n")
	}

	if !f.quiet {
		for _, cr := range result.Results {
			if cr.Status != runner.StatusFailed && cr.Status != runner.StatusTimedOut {
				continue
			}
			fmt.Fprintf(f.writer, "\n%s %s\n", red(bold("FAILED")), cr.ID)
			if cr.Err != nil {
				fmt.Fprintf(f.writer, "  %v\n", cr.Err)
			}
			if trimmed := strings.TrimSpace(cr.Stderr); trimmed != "" {
				for _, line := range strings.Split(trimmed, "\n") {
					fmt.Fprintf(f.writer, "  %s\n", line)
				}
			}
		}

		if len(result.Warnings) > 0 {
			fmt.Fprintf(f.writer, "\n%s\n", bold("warnings summary"))
			for _, w := range result.Warnings {
				fmt.Fprintf(f.writer, "  %s %s\n", yellow(w.Category), w.Message)
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	var parts []string
	if result.Passed > 0 {
		parts = append(parts, green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		parts = append(parts, red(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Skipped > 0 {
		parts = append(parts, yellow(fmt.Sprintf("%d skipped", result.Skipped)))
	}
	if result.Deselected > 0 {
		parts = append(parts, fmt.Sprintf("%d deselected", result.Deselected))
	}
	if len(parts) == 0 {
		parts = append(parts, "no tests ran")
	}
	fmt.Fprintf(f.writer, "%s in %.2fs\n", strings.Join(parts, ", "), result.Duration.Seconds())
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
