package cmd

import (
	"os"
	"path/filepath"

	"github.com/testini/testini/packages/core/config"
)

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// loadSession loads the session configuration, honoring --config. An
// unmet minversion fails here so every command refuses to start.
func loadSession() (*config.SessionConfig, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if err := cfg.CheckMinVersion(version); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configDir is the directory the configuration was loaded from. Env
// files, the environment manifest, and the history database resolve
// relative to it.
func configDir(cfg *config.SessionConfig) string {
	if cfg.Path == "" {
		return "."
	}
	return filepath.Dir(cfg.Path)
}
