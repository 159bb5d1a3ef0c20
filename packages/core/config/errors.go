package config

import (
	"fmt"
	"strings"
)

// ConfigError is a fatal configuration error. It names the file, line,
// and key that caused the failure where known.
type ConfigError struct {
	File   string
	Line   int
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	if e.Key != "" {
		b.WriteString(e.Key)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	return b.String()
}

func (c *SessionConfig) errorf(line int, key, format string, args ...any) *ConfigError {
	return &ConfigError{
		File:   c.Path,
		Line:   line,
		Key:    key,
		Reason: fmt.Sprintf(format, args...),
	}
}
