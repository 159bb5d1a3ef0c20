package markers

import (
	"fmt"
	"strings"
	"unicode"
)

// Expr is a parsed marker selection expression (the -m argument):
// marker names combined with `and`, `or`, `not`, and parentheses.
type Expr interface {
	// Eval evaluates the expression against a case's marker set.
	Eval(has func(name string) bool) bool
	String() string
}

type nameExpr struct{ name string }
type notExpr struct{ inner Expr }
type andExpr struct{ left, right Expr }
type orExpr struct{ left, right Expr }

func (e *nameExpr) Eval(has func(string) bool) bool { return has(e.name) }
func (e *notExpr) Eval(has func(string) bool) bool  { return !e.inner.Eval(has) }
func (e *andExpr) Eval(has func(string) bool) bool  { return e.left.Eval(has) && e.right.Eval(has) }
func (e *orExpr) Eval(has func(string) bool) bool   { return e.left.Eval(has) || e.right.Eval(has) }

func (e *nameExpr) String() string { return e.name }
func (e *notExpr) String() string  { return "not " + e.inner.String() }
func (e *andExpr) String() string  { return "(" + e.left.String() + " and " + e.right.String() + ")" }
func (e *orExpr) String() string   { return "(" + e.left.String() + " or " + e.right.String() + ")" }

type exprParser struct {
	tokens []string
	pos    int
	input  string
}

// ParseExpr parses a marker selection expression.
func ParseExpr(input string) (Expr, error) {
	tokens, err := tokenizeExpr(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty marker expression")
	}

	p := &exprParser{tokens: tokens, input: input}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("unexpected %q in marker expression %q", p.tokens[p.pos], input)
	}
	return expr, nil
}

func (p *exprParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &orExpr{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &andExpr{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (Expr, error) {
	if p.peek() == "not" {
		p.pos++
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notExpr{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok {
	case "":
		return nil, fmt.Errorf("marker expression %q ends unexpectedly", p.input)
	case "(":
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing ')' in marker expression %q", p.input)
		}
		p.pos++
		return inner, nil
	case ")", "and", "or":
		return nil, fmt.Errorf("unexpected %q in marker expression %q", tok, p.input)
	}

	if !IsValidName(tok) {
		return nil, fmt.Errorf("invalid marker name %q in expression", tok)
	}
	p.pos++
	return &nameExpr{name: tok}, nil
}

func (p *exprParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func tokenizeExpr(input string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(input) {
		c := rune(input[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(' || c == ')':
			tokens = append(tokens, string(c))
			i++
		default:
			start := i
			for i < len(input) && !strings.ContainsRune("() \t", rune(input[i])) {
				i++
			}
			tokens = append(tokens, input[start:i])
		}
	}
	return tokens, nil
}
