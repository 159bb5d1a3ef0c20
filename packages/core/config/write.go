package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WriteTo serializes the configuration in canonical document form.
// Reloading the output yields an equal configuration.
func (c *SessionConfig) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s]\n", SectionName)

	if c.MinVersion != "" {
		fmt.Fprintf(&b, "minversion = %s\n", c.MinVersion)
	}
	if len(c.AddOpts) > 0 {
		quoted := make([]string, len(c.AddOpts))
		for i, tok := range c.AddOpts {
			quoted[i] = QuoteToken(tok)
		}
		fmt.Fprintf(&b, "addopts = %s\n", strings.Join(quoted, " "))
	}

	writeList(&b, "testpaths", c.TestPaths)
	writeWords(&b, "python_files", c.FilePatterns)
	writeWords(&b, "python_classes", c.ClassPatterns)
	writeWords(&b, "python_functions", c.FuncPatterns)

	if len(c.Markers) > 0 {
		b.WriteString("markers =\n")
		for _, m := range c.Markers {
			if m.Description != "" {
				fmt.Fprintf(&b, "    %s: %s\n", m.Name, m.Description)
			} else {
				fmt.Fprintf(&b, "    %s\n", m.Name)
			}
		}
	}
	if len(c.FilterWarnings) > 0 {
		b.WriteString("filterwarnings =\n")
		for _, r := range c.FilterWarnings {
			fmt.Fprintf(&b, "    %s\n", r)
		}
	}

	fmt.Fprintf(&b, "timeout = %d\n", c.Timeout)
	fmt.Fprintf(&b, "timeout_method = %s\n", c.TimeoutMethod)
	fmt.Fprintf(&b, "log_cli = %s\n", strconv.FormatBool(c.LogCLI))
	fmt.Fprintf(&b, "log_cli_level = %s\n", c.LogCLILevel)
	fmt.Fprintf(&b, "log_cli_format = %s\n", c.LogCLIFormat)
	fmt.Fprintf(&b, "log_cli_date_format = %s\n", c.LogCLIDateFormat)

	writeList(&b, "collect_ignore", c.CollectIgnore)
	writeList(&b, "env_files", c.EnvFiles)

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Save writes the configuration to a file.
func (c *SessionConfig) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeList(b *strings.Builder, key string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "%s =\n", key)
	for _, v := range values {
		fmt.Fprintf(b, "    %s\n", v)
	}
}

func writeWords(b *strings.Builder, key string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "%s = %s\n", key, strings.Join(values, " "))
}
