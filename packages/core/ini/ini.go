package ini

import "fmt"

// Document is a parsed INI file: ordered sections holding ordered entries.
type Document struct {
	Path     string
	Sections []*Section
}

// Section is a `[name]` block and the entries declared inside it.
type Section struct {
	Name    string
	Entries []*Entry
	Line    int
}

// Entry is a single `key = value` assignment. Indented continuation lines
// extend the entry into a list; Values holds the inline value (if non-empty)
// followed by one element per continuation line.
type Entry struct {
	Key    string
	Values []string
	Line   int
}

// Value returns the entry as a single string. Multi-line entries are not
// collapsed; callers that expect a scalar should check IsList first.
func (e *Entry) Value() string {
	if len(e.Values) == 0 {
		return ""
	}
	return e.Values[0]
}

func (e *Entry) IsList() bool {
	return len(e.Values) > 1
}

// Section returns the section with the given name, or nil.
func (d *Document) Section(name string) *Section {
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Entry returns the first entry with the given key, or nil.
func (s *Section) Entry(key string) *Entry {
	for _, e := range s.Entries {
		if e.Key == key {
			return e
		}
	}
	return nil
}

// ParseError describes a syntax error with its position in the source file.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
