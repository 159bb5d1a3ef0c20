// Package history records finished sessions in a local SQLite database
// and computes duration statistics over them.
package history
