package env

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadFiles reads the dotenv files named by env_files, resolved relative
// to dir. Later files override earlier ones. A missing file is an error:
// the session names its env files explicitly.
func LoadFiles(dir string, files []string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, name := range files {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, name)
		}
		loaded, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("env file %s: %w", name, err)
		}
		for k, v := range loaded {
			vars[k] = v
		}
	}
	return vars, nil
}
