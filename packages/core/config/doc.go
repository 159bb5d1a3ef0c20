// Package config loads and validates the session configuration for testini.
//
// It provides functionality for:
//   - Loading testini.ini / pytest.ini documents into a SessionConfig
//   - Default values for absent keys
//   - addopts tokenization and option parsing shared with the CLI
//   - Canonical serialization for round-tripping a configuration
//
// Any malformed document is fatal: loading returns a ConfigError naming
// the offending line and key, and the session must not proceed to
// collection.
package config
