package warnings

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Warning is one runtime warning emitted by a test, recovered from its
// output stream.
type Warning struct {
	Category string
	Message  string
	Location string // source path as printed by the test
	Line     int    // 0 when the line was not part of the output
	Test     string // collected case that emitted the warning
}

// Warning lines follow the conventional interpreter format:
//
//	path/to/module.py:23: DeprecationWarning: message text
//	module.sh: UserWarning: message text
var warningLine = regexp.MustCompile(`^(\S+?)(?::(\d+))?: ([A-Za-z_][A-Za-z0-9_]*Warning): (.*)$`)

// ParseLine recovers a Warning from a single output line. The second
// return value is false for ordinary output.
func ParseLine(line string) (*Warning, bool) {
	m := warningLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return nil, false
	}

	w := &Warning{
		Location: m[1],
		Category: m[3],
		Message:  m[4],
	}
	if m[2] != "" {
		w.Line, _ = strconv.Atoi(m[2])
	}
	return w, true
}

// Module returns the module name the warning is attributed to: the
// location's base name without extension.
func (w *Warning) Module() string {
	base := filepath.Base(w.Location)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// ParseOutput scans a whole output stream for warning lines.
func ParseOutput(output string) []*Warning {
	var found []*Warning
	for _, line := range strings.Split(output, "\n") {
		if w, ok := ParseLine(line); ok {
			found = append(found, w)
		}
	}
	return found
}
