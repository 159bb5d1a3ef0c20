package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Options is the option set shared by addopts and the CLI. The merge
// precedence is: explicit CLI flags > addopts > defaults.
type Options struct {
	Verbose       bool
	Quiet         bool
	StrictMarkers bool
	ExitFirst     bool
	MarkerExpr    string
	NumProcs      int     // 0 means sequential
	Timeout       *int    // overrides the timeout key when set
	TimeoutMethod string  // overrides the timeout_method key when set
	Output        string  // console, json, junit
	Color         string  // auto, yes, no
	MaxRate       float64 // case launches per second, 0 unlimited
}

// ParseOptions parses tokenized addopts into an option set. Unknown
// options are a configuration error.
func ParseOptions(tokens []string) (*Options, error) {
	opts := &Options{}

	next := func(i int, flag string) (string, int, error) {
		if i+1 >= len(tokens) {
			return "", i, fmt.Errorf("%s requires a value", flag)
		}
		return tokens[i+1], i + 1, nil
	}

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		flag, inline, hasInline := strings.Cut(tok, "=")
		value := func(name string) (string, error) {
			if hasInline {
				return inline, nil
			}
			var err error
			var v string
			v, i, err = next(i, name)
			return v, err
		}

		switch flag {
		case "-v", "--verbose":
			opts.Verbose = true
		case "-q", "--quiet":
			opts.Quiet = true
		case "--strict-markers":
			opts.StrictMarkers = true
		case "-x", "--exitfirst":
			opts.ExitFirst = true

		case "-m":
			v, err := value("-m")
			if err != nil {
				return nil, err
			}
			opts.MarkerExpr = v

		case "-n", "--numprocesses":
			v, err := value(flag)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%s expects a positive integer, got %q", flag, v)
			}
			opts.NumProcs = n

		case "--timeout":
			v, err := value(flag)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("--timeout expects a non-negative integer, got %q", v)
			}
			opts.Timeout = &n

		case "--timeout-method":
			v, err := value(flag)
			if err != nil {
				return nil, err
			}
			if v != TimeoutThread && v != TimeoutSignal {
				return nil, fmt.Errorf("--timeout-method expects thread or signal, got %q", v)
			}
			opts.TimeoutMethod = v

		case "-o", "--output":
			v, err := value(flag)
			if err != nil {
				return nil, err
			}
			switch v {
			case "console", "json", "junit":
				opts.Output = v
			default:
				return nil, fmt.Errorf("%s expects console, json, or junit, got %q", flag, v)
			}

		case "--color":
			v, err := value(flag)
			if err != nil {
				return nil, err
			}
			switch v {
			case "auto", "yes", "no":
				opts.Color = v
			default:
				return nil, fmt.Errorf("--color expects auto, yes, or no, got %q", v)
			}

		case "--max-rate":
			v, err := value(flag)
			if err != nil {
				return nil, err
			}
			r, err := strconv.ParseFloat(v, 64)
			if err != nil || r < 0 {
				return nil, fmt.Errorf("--max-rate expects a non-negative number, got %q", v)
			}
			opts.MaxRate = r

		default:
			return nil, fmt.Errorf("unknown option %q", tok)
		}
	}

	if opts.Verbose && opts.Quiet {
		return nil, fmt.Errorf("options -v and -q are mutually exclusive")
	}
	return opts, nil
}

// Tokenize splits an addopts line into tokens, honoring single and double
// quotes so marker expressions with spaces survive.
func Tokenize(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false
	var quote byte

	flush := func() {
		if inToken {
			tokens = append(tokens, current.String())
			current.Reset()
			inToken = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				current.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inToken = true
		case c == ' ' || c == '\t':
			flush()
		case c == '\\' && i+1 < len(line):
			i++
			current.WriteByte(line[i])
			inToken = true
		default:
			current.WriteByte(c)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in %q", line)
	}
	flush()
	return tokens, nil
}

// QuoteToken re-quotes a token for serialization when it contains
// whitespace or quote characters.
func QuoteToken(tok string) string {
	if !strings.ContainsAny(tok, " \t\"'") {
		return tok
	}
	return `"` + strings.ReplaceAll(tok, `"`, `\"`) + `"`
}
