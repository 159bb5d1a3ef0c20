package markers

import (
	"fmt"
	"sort"
	"strings"
)

// Marker is one declared marker: a name and its human-readable description.
type Marker struct {
	Name        string
	Description string
}

// ParseDeclaration parses a `name: description` line from the markers key.
// The description is optional.
func ParseDeclaration(s string) (Marker, error) {
	name, desc, _ := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	desc = strings.TrimSpace(desc)
	if !IsValidName(name) {
		return Marker{}, fmt.Errorf("invalid marker name %q", name)
	}
	return Marker{Name: name, Description: desc}, nil
}

// IsValidName reports whether s is a legal marker name: an identifier of
// letters, digits, and underscores not starting with a digit.
func IsValidName(s string) bool {
	for i, c := range s {
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return s != ""
}

// Registry is the closed set of markers a session accepts.
type Registry struct {
	ordered []Marker
	byName  map[string]Marker
}

func NewRegistry(declared []Marker) (*Registry, error) {
	r := &Registry{byName: make(map[string]Marker, len(declared))}
	for _, m := range declared {
		if _, dup := r.byName[m.Name]; dup {
			return nil, fmt.Errorf("duplicate marker %q", m.Name)
		}
		r.byName[m.Name] = m
		r.ordered = append(r.ordered, m)
	}
	return r, nil
}

// Known reports whether the marker name was declared.
func (r *Registry) Known(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// List returns the markers in declaration order.
func (r *Registry) List() []Marker {
	out := make([]Marker, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func (r *Registry) Len() int {
	return len(r.ordered)
}

// UndeclaredError reports a collected case carrying a marker outside the
// declared set. Raised only under strict-marker enforcement.
type UndeclaredError struct {
	Case   string
	Marker string
	Known  []string
}

func (e *UndeclaredError) Error() string {
	return fmt.Sprintf("%s: marker %q is not declared in the configuration (declared: %s)",
		e.Case, e.Marker, strings.Join(e.Known, ", "))
}

// CheckStrict verifies every marker on a case against the registry.
func (r *Registry) CheckStrict(caseName string, marks []string) error {
	for _, m := range marks {
		if !r.Known(m) {
			known := make([]string, 0, len(r.byName))
			for name := range r.byName {
				known = append(known, name)
			}
			sort.Strings(known)
			return &UndeclaredError{Case: caseName, Marker: m, Known: known}
		}
	}
	return nil
}
