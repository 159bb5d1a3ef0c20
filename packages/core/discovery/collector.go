package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/testini/testini/packages/core/config"
	"github.com/testini/testini/packages/core/suite"
)

// Item is one collected test case together with the suite it came from.
type Item struct {
	Suite *suite.Suite
	Case  *suite.Case
}

// ID returns the case identifier (path::group::name).
func (i *Item) ID() string {
	return i.Case.ID(i.Suite.Path)
}

// Collector discovers test cases under the configured testpaths.
type Collector struct {
	FilePatterns  []string
	ClassPatterns []string
	FuncPatterns  []string
	Ignore        []string
}

// FromConfig builds a collector from the session configuration.
func FromConfig(cfg *config.SessionConfig) *Collector {
	return &Collector{
		FilePatterns:  cfg.FilePatterns,
		ClassPatterns: cfg.ClassPatterns,
		FuncPatterns:  cfg.FuncPatterns,
		Ignore:        cfg.CollectIgnore,
	}
}

// Files walks the given roots and returns the matching suite files in
// deterministic (lexicographic) order, without parsing them. Roots may
// also name suite files directly.
func (c *Collector) Files(roots []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("test path does not exist: %s", root)
		}

		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				name := d.Name()
				if name != "." && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				if c.ignored(path) {
					return filepath.SkipDir
				}
				return nil
			}

			if !c.ignored(path) && matchAny(c.FilePatterns, d.Name()) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// Collect parses the suite files under the given roots and returns the
// cases selected by the class and function patterns. Parse failures
// abort collection.
func (c *Collector) Collect(roots []string) ([]*Item, error) {
	files, err := c.Files(roots)
	if err != nil {
		return nil, err
	}

	var items []*Item
	for _, path := range files {
		s, err := suite.ParseFile(path)
		if err != nil {
			return nil, err
		}

		for _, tc := range s.Cases {
			if tc.Group != "" && !matchAny(c.ClassPatterns, tc.Group) {
				continue
			}
			if !matchAny(c.FuncPatterns, tc.Name) {
				continue
			}
			items = append(items, &Item{Suite: s, Case: tc})
		}
	}
	return items, nil
}

// ignored reports whether the path falls under a collect_ignore entry.
func (c *Collector) ignored(path string) bool {
	clean := filepath.Clean(path)
	for _, ignore := range c.Ignore {
		ig := filepath.Clean(ignore)
		if clean == ig || strings.HasPrefix(clean, ig+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
