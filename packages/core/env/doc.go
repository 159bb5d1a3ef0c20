// Package env loads the variables a test session runs under.
//
// It provides functionality for:
//   - Loading dotenv files named by the env_files setting
//   - Loading named environments from an envs.yaml manifest
//   - ${VAR} interpolation in scripts and variable values
package env
