package config

import "errors"

// Timeout enforcement methods.
const (
	// TimeoutThread cancels the test's context and kills its process group.
	TimeoutThread = "thread"
	// TimeoutSignal sends SIGTERM first and escalates to SIGKILL.
	TimeoutSignal = "signal"
)

var validLogLevels = map[string]bool{
	"DEBUG":    true,
	"INFO":     true,
	"WARNING":  true,
	"ERROR":    true,
	"CRITICAL": true,
}

var (
	errEmptyValue     = errors.New("empty value")
	errExpectedScalar = errors.New("expected a single value, got a list")
)

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *SessionConfig {
	return &SessionConfig{
		TestPaths:        []string{"."},
		FilePatterns:     []string{"test_*.suite"},
		ClassPatterns:    []string{"Test*"},
		FuncPatterns:     []string{"test_*"},
		Timeout:          0,
		TimeoutMethod:    TimeoutThread,
		LogCLI:           false,
		LogCLILevel:      "INFO",
		LogCLIFormat:     "%(asctime)s %(levelname)s %(message)s",
		LogCLIDateFormat: "%H:%M:%S",
	}
}

// IsDefault reports whether the config matches the defaults.
func (c *SessionConfig) IsDefault() bool {
	return c.Equal(DefaultConfig())
}
