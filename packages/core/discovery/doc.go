// Package discovery walks the configured testpaths and collects test
// cases from suite files, applying the python_files, python_classes,
// python_functions, and collect_ignore settings.
package discovery
