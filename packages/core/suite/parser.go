package suite

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/testini/testini/packages/markers"
)

// Parser scans a suite file line by line. Suites are plain text:
//
//	## TestBackup                  group heading
//	### test_roundtrip             case separator
//	@marker backup
//	@timeout 5
//	./scripts/backup.sh --check    script body, run via sh -c
type Parser struct {
	lines []string
	pos   int
	file  string
}

func NewParser(input string) *Parser {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	return &Parser{lines: strings.Split(input, "\n")}
}

func ParseFile(path string) (*Suite, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(content), path)
}

func Parse(input, filename string) (*Suite, error) {
	p := NewParser(input)
	p.file = filename
	return p.ParseSuite()
}

func (p *Parser) ParseSuite() (*Suite, error) {
	s := &Suite{Path: p.file}

	group := ""
	names := make(map[string]int)

	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		lineNo := p.pos + 1
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "###"):
			c, err := p.parseCase(group)
			if err != nil {
				return nil, err
			}
			key := c.Group + "::" + c.Name
			if first, dup := names[key]; dup {
				return nil, p.errorf(c.Line, "duplicate case %q (first declared at line %d)", c.Name, first)
			}
			names[key] = c.Line
			s.Cases = append(s.Cases, c)

		case strings.HasPrefix(trimmed, "##"):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "##"))
			if name == "" {
				return nil, p.errorf(lineNo, "empty group heading")
			}
			group = name
			p.pos++

		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			p.pos++

		case strings.HasPrefix(trimmed, "@"):
			return nil, p.errorf(lineNo, "annotation %q outside of a case", trimmed)

		default:
			return nil, p.errorf(lineNo, "unexpected content outside of a case: %q", trimmed)
		}
	}

	return s, nil
}

// parseCase consumes the `### name` line, its annotations, and the script
// body up to the next heading or separator.
func (p *Parser) parseCase(group string) (*Case, error) {
	header := strings.TrimSpace(p.lines[p.pos])
	c := &Case{
		Group: group,
		Name:  strings.TrimSpace(strings.TrimPrefix(header, "###")),
		Line:  p.pos + 1,
	}
	if c.Name == "" {
		return nil, p.errorf(c.Line, "case separator without a name")
	}
	p.pos++

	// Annotations directly follow the separator.
	for p.pos < len(p.lines) {
		trimmed := strings.TrimSpace(p.lines[p.pos])
		if !strings.HasPrefix(trimmed, "@") {
			break
		}
		if err := p.parseAnnotation(c, trimmed); err != nil {
			return nil, err
		}
		p.pos++
	}

	// Script body: everything up to the next heading or separator.
	var body []string
	for p.pos < len(p.lines) {
		trimmed := strings.TrimSpace(p.lines[p.pos])
		if strings.HasPrefix(trimmed, "##") {
			break
		}
		body = append(body, p.lines[p.pos])
		p.pos++
	}

	c.Script = strings.TrimSpace(strings.Join(body, "\n"))
	if c.Script == "" && c.Skip == "" {
		return nil, p.errorf(c.Line, "case %q has no script", c.Name)
	}
	return c, nil
}

func (p *Parser) parseAnnotation(c *Case, trimmed string) error {
	lineNo := p.pos + 1
	name, value, _ := strings.Cut(strings.TrimPrefix(trimmed, "@"), " ")
	value = strings.TrimSpace(value)

	switch name {
	case "marker":
		if !markers.IsValidName(value) {
			return p.errorf(lineNo, "invalid marker name %q", value)
		}
		c.Markers = append(c.Markers, value)

	case "skip":
		if value == "" {
			value = "skipped"
		}
		c.Skip = value

	case "timeout":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return p.errorf(lineNo, "@timeout expects a non-negative integer, got %q", value)
		}
		c.Timeout = n

	default:
		return p.errorf(lineNo, "unknown annotation @%s", name)
	}
	return nil
}

func (p *Parser) errorf(line int, format string, args ...any) *ParseError {
	return &ParseError{
		File:    p.file,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}
