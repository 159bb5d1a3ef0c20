// Package suite parses testini suite files: plain-text files of shell
// test cases separated by `###` markers, optionally grouped under `##`
// headings, with `@marker`, `@skip`, and `@timeout` annotations.
package suite
