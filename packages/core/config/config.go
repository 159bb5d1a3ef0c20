package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/testini/testini/packages/core/ini"
	"github.com/testini/testini/packages/markers"
	"github.com/testini/testini/packages/warnings"
)

// SectionName is the section the loader reads. The pytest alias is
// accepted so existing pytest.ini files load unchanged.
const SectionName = "testini"

var acceptedSections = map[string]bool{
	SectionName: true,
	"pytest":    true,
}

// ConfigFilenames contains the file names searched for a session
// configuration, in priority order.
var ConfigFilenames = []string{
	"testini.ini",
	".testini.ini",
	"pytest.ini",
}

// SessionConfig is the immutable session configuration: constructed once at
// startup, read-only afterwards.
type SessionConfig struct {
	Path string // source file, empty for built-in defaults

	TestPaths     []string // testpaths
	FilePatterns  []string // python_files
	ClassPatterns []string // python_classes
	FuncPatterns  []string // python_functions

	AddOpts    []string // addopts, tokenized
	Markers    []markers.Marker
	MinVersion string

	FilterWarnings []*warnings.Rule

	Timeout       int    // seconds, 0 disables
	TimeoutMethod string // thread or signal

	LogCLI           bool
	LogCLILevel      string
	LogCLIFormat     string
	LogCLIDateFormat string

	CollectIgnore []string
	EnvFiles      []string
}

// Load loads the configuration from the given path, or searches the
// current directory when path is empty.
func Load(path string) (*SessionConfig, error) {
	if path != "" {
		return loadFromFile(path)
	}
	return FindAndLoad(".")
}

// FindAndLoad searches dir for a configuration file. Defaults apply when
// none exists.
func FindAndLoad(dir string) (*SessionConfig, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadFromFile(configPath)
		}
	}
	return DefaultConfig(), nil
}

func loadFromFile(path string) (*SessionConfig, error) {
	doc, err := ini.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// FromString loads a configuration from in-memory INI text.
func FromString(input, filename string) (*SessionConfig, error) {
	doc, err := ini.Parse(input, filename)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// FromDocument maps a parsed INI document onto a SessionConfig. Any
// malformed content is a ConfigError naming the offending line and key;
// nothing is applied partially.
func FromDocument(doc *ini.Document) (*SessionConfig, error) {
	c := DefaultConfig()
	c.Path = doc.Path

	var section *ini.Section
	for _, s := range doc.Sections {
		if !acceptedSections[s.Name] {
			return nil, c.errorf(s.Line, "", "unknown section [%s]", s.Name)
		}
		if section != nil {
			return nil, c.errorf(s.Line, "", "multiple configuration sections (first at line %d)", section.Line)
		}
		section = s
	}
	if section == nil {
		return nil, c.errorf(0, "", "missing [%s] section", SectionName)
	}

	seen := make(map[string]int)
	for _, e := range section.Entries {
		if first, dup := seen[e.Key]; dup {
			return nil, c.errorf(e.Line, e.Key, "duplicate key (first declared at line %d)", first)
		}
		seen[e.Key] = e.Line

		if err := c.applyEntry(e); err != nil {
			return nil, err
		}
	}

	if err := c.Validate(); err != nil {
		return nil, c.errorf(section.Line, "", "%v", err)
	}
	return c, nil
}

func (c *SessionConfig) applyEntry(e *ini.Entry) error {
	switch e.Key {
	case "testpaths":
		c.TestPaths = splitWords(e.Values)
	case "python_files":
		c.FilePatterns = splitWords(e.Values)
	case "python_classes":
		c.ClassPatterns = splitWords(e.Values)
	case "python_functions":
		c.FuncPatterns = splitWords(e.Values)
	case "collect_ignore":
		c.CollectIgnore = splitWords(e.Values)
	case "env_files":
		c.EnvFiles = splitWords(e.Values)

	case "addopts":
		var tokens []string
		for _, line := range e.Values {
			tok, err := Tokenize(line)
			if err != nil {
				return c.errorf(e.Line, e.Key, "%v", err)
			}
			tokens = append(tokens, tok...)
		}
		if _, err := ParseOptions(tokens); err != nil {
			return c.errorf(e.Line, e.Key, "%v", err)
		}
		c.AddOpts = tokens

	case "markers":
		names := make(map[string]bool)
		for _, line := range e.Values {
			m, err := markers.ParseDeclaration(line)
			if err != nil {
				return c.errorf(e.Line, e.Key, "%v", err)
			}
			if names[m.Name] {
				return c.errorf(e.Line, e.Key, "duplicate marker %q", m.Name)
			}
			names[m.Name] = true
			c.Markers = append(c.Markers, m)
		}

	case "filterwarnings":
		for _, line := range e.Values {
			rule, err := warnings.ParseRule(line)
			if err != nil {
				return c.errorf(e.Line, e.Key, "%v", err)
			}
			c.FilterWarnings = append(c.FilterWarnings, rule)
		}

	case "minversion":
		v, err := scalar(e)
		if err != nil {
			return c.errorf(e.Line, e.Key, "%v", err)
		}
		if !IsValidVersion(v) {
			return c.errorf(e.Line, e.Key, "invalid version %q", v)
		}
		c.MinVersion = v

	case "timeout":
		v, err := scalar(e)
		if err != nil {
			return c.errorf(e.Line, e.Key, "%v", err)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.errorf(e.Line, e.Key, "invalid number %q", v)
		}
		if n < 0 {
			return c.errorf(e.Line, e.Key, "timeout must be non-negative, got %d", n)
		}
		c.Timeout = n

	case "timeout_method":
		v, err := scalar(e)
		if err != nil {
			return c.errorf(e.Line, e.Key, "%v", err)
		}
		if v != TimeoutThread && v != TimeoutSignal {
			return c.errorf(e.Line, e.Key, "invalid method %q (valid: thread, signal)", v)
		}
		c.TimeoutMethod = v

	case "log_cli":
		v, err := scalar(e)
		if err != nil {
			return c.errorf(e.Line, e.Key, "%v", err)
		}
		b, ok := parseBool(v)
		if !ok {
			return c.errorf(e.Line, e.Key, "invalid boolean %q", v)
		}
		c.LogCLI = b

	case "log_cli_level":
		v, err := scalar(e)
		if err != nil {
			return c.errorf(e.Line, e.Key, "%v", err)
		}
		level := strings.ToUpper(v)
		if !validLogLevels[level] {
			return c.errorf(e.Line, e.Key, "invalid level %q (valid: DEBUG, INFO, WARNING, ERROR, CRITICAL)", v)
		}
		c.LogCLILevel = level

	case "log_cli_format":
		v, err := scalar(e)
		if err != nil {
			return c.errorf(e.Line, e.Key, "%v", err)
		}
		c.LogCLIFormat = v

	case "log_cli_date_format":
		v, err := scalar(e)
		if err != nil {
			return c.errorf(e.Line, e.Key, "%v", err)
		}
		c.LogCLIDateFormat = v

	default:
		return c.errorf(e.Line, e.Key, "unknown key")
	}
	return nil
}

// Registry builds the marker registry from the declared markers.
func (c *SessionConfig) Registry() (*markers.Registry, error) {
	return markers.NewRegistry(c.Markers)
}

// Filter builds the session warning filter.
func (c *SessionConfig) Filter() *warnings.Filter {
	return warnings.NewFilter(c.FilterWarnings)
}

// Options parses the configured addopts. AddOpts are validated at load
// time, so this cannot fail on a loaded configuration.
func (c *SessionConfig) Options() (*Options, error) {
	return ParseOptions(c.AddOpts)
}

// Equal reports structural equality between two configurations. Filter
// rules compare by their textual form; the source path is ignored.
func (c *SessionConfig) Equal(other *SessionConfig) bool {
	if other == nil {
		return false
	}
	return stringsEqual(c.TestPaths, other.TestPaths) &&
		stringsEqual(c.FilePatterns, other.FilePatterns) &&
		stringsEqual(c.ClassPatterns, other.ClassPatterns) &&
		stringsEqual(c.FuncPatterns, other.FuncPatterns) &&
		stringsEqual(c.AddOpts, other.AddOpts) &&
		markersEqual(c.Markers, other.Markers) &&
		c.MinVersion == other.MinVersion &&
		rulesEqual(c.FilterWarnings, other.FilterWarnings) &&
		c.Timeout == other.Timeout &&
		c.TimeoutMethod == other.TimeoutMethod &&
		c.LogCLI == other.LogCLI &&
		c.LogCLILevel == other.LogCLILevel &&
		c.LogCLIFormat == other.LogCLIFormat &&
		c.LogCLIDateFormat == other.LogCLIDateFormat &&
		stringsEqual(c.CollectIgnore, other.CollectIgnore) &&
		stringsEqual(c.EnvFiles, other.EnvFiles)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func markersEqual(a, b []markers.Marker) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func rulesEqual(a, b []*warnings.Rule) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].String() != b[i].String() {
			return false
		}
	}
	return true
}

func scalar(e *ini.Entry) (string, error) {
	if len(e.Values) == 0 {
		return "", errEmptyValue
	}
	if e.IsList() {
		return "", errExpectedScalar
	}
	return e.Values[0], nil
}

func splitWords(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Fields(v)...)
	}
	return out
}

func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}
