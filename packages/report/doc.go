// Package report validates and queries JSON reports written by the
// json output format.
package report
