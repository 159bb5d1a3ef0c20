// Package ini parses the section-scoped key/value documents that drive a
// testini session.
//
// The dialect is deliberately small: `[section]` headers, `key = value`
// assignments, `#` or `;` full-line comments, and indented continuation
// lines that turn an entry into an ordered value list (the shape used by
// the markers and filterwarnings keys). Every section and entry carries
// its source line so that configuration errors can name the offending
// location.
package ini
