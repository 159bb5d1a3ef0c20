package cmd

import (
	"errors"

	"github.com/testini/testini/packages/core/config"
	"github.com/testini/testini/packages/core/ini"
	"github.com/testini/testini/packages/core/suite"
	"github.com/testini/testini/packages/markers"
)

// Exit codes for the testini CLI
const (
	// ExitSuccess indicates all tests passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more tests failed
	ExitTestFailure = 1

	// ExitParseError indicates a suite or ini parsing error
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNoTests indicates no tests were collected
	ExitNoTests = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

func exitCode(err error) int {
	var cfgErr *config.ConfigError
	var iniErr *ini.ParseError
	var suiteErr *suite.ParseError
	var markerErr *markers.UndeclaredError

	switch {
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &iniErr), errors.As(err, &suiteErr):
		return ExitParseError
	case errors.As(err, &markerErr):
		return ExitUsageError
	default:
		return ExitUsageError
	}
}
