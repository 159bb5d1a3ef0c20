// Package markers manages the closed set of test markers a session
// declares: parsing declarations, strict-mode enforcement against collected
// cases, and evaluation of -m selection expressions.
package markers
