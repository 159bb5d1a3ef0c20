package env

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ManifestFilename is the well-known name of the environment manifest,
// looked up next to the session configuration file.
const ManifestFilename = "envs.yaml"

// Manifest holds named variable sets, selected with --env on the run
// command.
type Manifest struct {
	Environments map[string]map[string]string `yaml:"environments"`
}

// LoadManifest reads an envs.yaml manifest. A missing file yields an
// empty manifest: environments are optional.
func LoadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{Environments: map[string]map[string]string{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.Environments == nil {
		m.Environments = map[string]map[string]string{}
	}
	return &m, nil
}

// Environment returns the variables of a named environment. The empty
// name selects no environment.
func (m *Manifest) Environment(name string) (map[string]string, error) {
	if name == "" {
		return map[string]string{}, nil
	}
	vars, ok := m.Environments[name]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q", name)
	}
	return vars, nil
}

// Names lists the declared environment names.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Environments))
	for name := range m.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
