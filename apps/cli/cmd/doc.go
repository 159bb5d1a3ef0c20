// Package cmd implements the testini CLI commands using Cobra.
//
// Available commands:
//   - run: Execute discovered test suites under the session configuration
//   - collect: List the tests that would run
//   - check: Validate configuration and suite syntax without executing
//   - markers: List declared markers
//   - init: Create a new testini project with example files
//   - history: Inspect sessions recorded in the local history database
//   - stats: Duration percentiles over recorded sessions
//   - report: Validate and query JSON reports
//   - version: Show testini version information
//
// The run command supports the same options through CLI flags and the
// addopts configuration key, with CLI flags taking precedence.
package cmd
