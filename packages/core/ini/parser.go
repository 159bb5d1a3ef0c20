package ini

import (
	"fmt"
	"os"
	"strings"
)

// Parser scans an INI document line by line, tracking positions so that
// configuration errors can point back at the offending line.
type Parser struct {
	lines []string
	pos   int
	file  string
}

func NewParser(input string) *Parser {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	return &Parser{
		lines: strings.Split(input, "\n"),
	}
}

func ParseFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(content), path)
}

func Parse(input, filename string) (*Document, error) {
	p := NewParser(input)
	p.file = filename
	return p.ParseDocument()
}

func (p *Parser) ParseDocument() (*Document, error) {
	doc := &Document{Path: p.file}

	var section *Section
	var current *Entry

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		lineNo := p.pos + 1
		p.pos++

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isComment(trimmed) {
			current = nil
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'

		switch {
		case !indented && strings.HasPrefix(trimmed, "["):
			if !strings.HasSuffix(trimmed, "]") {
				return nil, p.errorf(lineNo, strings.Index(line, "["), "unterminated section header %q", trimmed)
			}
			name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if name == "" {
				return nil, p.errorf(lineNo, 0, "empty section name")
			}
			section = &Section{Name: name, Line: lineNo}
			doc.Sections = append(doc.Sections, section)
			current = nil

		case indented:
			// Continuation line: extends the value list of the entry above.
			if current == nil {
				return nil, p.errorf(lineNo, indentWidth(line), "continuation line without a preceding key")
			}
			current.Values = append(current.Values, trimmed)

		default:
			key, value, found := strings.Cut(trimmed, "=")
			if !found {
				return nil, p.errorf(lineNo, 0, "expected 'key = value', got %q", trimmed)
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			if key == "" {
				return nil, p.errorf(lineNo, 0, "missing key before '='")
			}
			if section == nil {
				return nil, p.errorf(lineNo, 0, "key %q declared outside of a section", key)
			}
			current = &Entry{Key: key, Line: lineNo}
			if value != "" {
				current.Values = append(current.Values, value)
			}
			section.Entries = append(section.Entries, current)
		}
	}

	return doc, nil
}

func (p *Parser) errorf(line, column int, format string, args ...any) *ParseError {
	return &ParseError{
		File:    p.file,
		Line:    line,
		Column:  column + 1,
		Message: fmt.Sprintf(format, args...),
	}
}

func isComment(trimmed string) bool {
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";")
}

func indentWidth(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return i
		}
	}
	return len(line)
}
