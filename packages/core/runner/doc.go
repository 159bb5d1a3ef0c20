// Package runner executes collected test cases and manages the session.
//
// It provides functionality for:
//   - Running case scripts through `sh -c` in the suite's directory
//   - Per-case and session timeouts with the thread or signal method
//   - Parallel execution with a configurable worker count
//   - Optional rate limiting of case starts
//   - Marker expression selection and strict marker checking
//   - Capturing warnings from stderr and applying filter rules
package runner
