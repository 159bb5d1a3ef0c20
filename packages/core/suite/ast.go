package suite

import "fmt"

// Suite is one parsed suite file.
type Suite struct {
	Path  string
	Cases []*Case
}

// Case is a single test case: a named shell script with markers and
// per-case overrides.
type Case struct {
	Name    string
	Group   string // enclosing `##` heading, empty when top-level
	Markers []string
	Skip    string // skip reason, empty when the case runs
	Timeout int    // seconds, 0 inherits the session timeout
	Script  string
	Line    int
}

// ID returns the stable identifier used in reports and history:
// path::group::name, with the group segment omitted for top-level cases.
func (c *Case) ID(path string) string {
	if c.Group != "" {
		return path + "::" + c.Group + "::" + c.Name
	}
	return path + "::" + c.Name
}

// HasMarker reports whether the case carries the marker.
func (c *Case) HasMarker(name string) bool {
	for _, m := range c.Markers {
		if m == name {
			return true
		}
	}
	return false
}

// ParseError describes a syntax error with its position in the suite file.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
