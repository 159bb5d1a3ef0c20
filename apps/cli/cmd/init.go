package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new testini project",
	Long: `Initialize a new testini project in the current directory.

This creates:
  - testini.ini             - Session configuration
  - envs.yaml               - Named environments
  - tests/test_example.suite - Example suite file

Examples:
  testini init
  testini init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const initConfig = `[testini]
testpaths = tests
python_files = test_*.suite
python_classes = Test*
python_functions = test_*
addopts = --strict-markers
markers =
    smoke: quick checks run on every commit
    slow: long-running cases excluded from the default run
    backup: snapshot and restore round trips
    rbac: permission and role checks
timeout = 60
timeout_method = thread
filterwarnings =
    default
    ignore::DeprecationWarning
`

const initEnvs = `environments:
  staging:
    BASE_URL: https://staging.example.com
  production:
    BASE_URL: https://example.com
`

const initSuite = `## TestTravelers

### test_register_traveler
@marker smoke
curl -fsS "${BASE_URL:-http://localhost:8000}/travelers" -d name=nina

### test_remove_traveler
@marker rbac
@skip waiting on admin fixtures

## TestScooters

### test_assign_scooter
@marker smoke
curl -fsS "${BASE_URL:-http://localhost:8000}/scooters/1/assign" -d traveler=1

### test_fleet_backup_roundtrip
@marker backup
@marker slow
@timeout 120
./scripts/backup.sh --create
./scripts/backup.sh --verify
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "testini.ini")
	envsFile := filepath.Join(cwd, "envs.yaml")
	suiteFile := filepath.Join(cwd, "tests", "test_example.suite")

	if !forceInit {
		for _, f := range []string{configFile, envsFile, suiteFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(suiteFile), 0o755); err != nil {
		return err
	}
	for _, f := range []struct {
		path    string
		content string
	}{
		{configFile, initConfig},
		{envsFile, initEnvs},
		{suiteFile, initSuite},
	} {
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", f.path)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\ntestini project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'testini run' to execute the example suite.\n")
	return nil
}
