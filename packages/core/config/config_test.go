package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testini/testini/packages/warnings"
)

const sampleConfig = `[testini]
minversion = 1.2
addopts = -q --strict-markers -m "not slow"
testpaths =
    tests/unit
    tests/integration
python_files = test_*.suite
python_classes = Test*
python_functions = test_*
markers =
    smoke: quick sanity checks
    slow: long-running cases
    backup: backup and restore flows
    rbac: role-based access control
filterwarnings =
    error
    ignore::DeprecationWarning:legacy.*
timeout = 300
timeout_method = thread
log_cli = true
log_cli_level = INFO
log_cli_format = %(asctime)s %(levelname)s %(message)s
log_cli_date_format = %H:%M:%S
collect_ignore =
    tests/legacy
`

func TestFromString_FullDocument(t *testing.T) {
	cfg, err := FromString(sampleConfig, "testini.ini")
	require.NoError(t, err)

	assert.Equal(t, "1.2", cfg.MinVersion)
	assert.Equal(t, []string{"-q", "--strict-markers", "-m", "not slow"}, cfg.AddOpts)
	assert.Equal(t, []string{"tests/unit", "tests/integration"}, cfg.TestPaths)
	assert.Equal(t, []string{"test_*.suite"}, cfg.FilePatterns)

	require.Len(t, cfg.Markers, 4)
	assert.Equal(t, "smoke", cfg.Markers[0].Name)
	assert.Equal(t, "quick sanity checks", cfg.Markers[0].Description)

	require.Len(t, cfg.FilterWarnings, 2)
	assert.Equal(t, warnings.ActionError, cfg.FilterWarnings[0].Action)
	assert.Equal(t, "DeprecationWarning", cfg.FilterWarnings[1].Category)

	assert.Equal(t, 300, cfg.Timeout)
	assert.Equal(t, TimeoutThread, cfg.TimeoutMethod)
	assert.True(t, cfg.LogCLI)
	assert.Equal(t, "INFO", cfg.LogCLILevel)
	assert.Equal(t, []string{"tests/legacy"}, cfg.CollectIgnore)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.True(t, opts.Quiet)
	assert.True(t, opts.StrictMarkers)
	assert.Equal(t, "not slow", opts.MarkerExpr)
}

func TestFromString_DefaultsApply(t *testing.T) {
	cfg, err := FromString("[testini]\ntimeout = 5\n", "")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Timeout)
	assert.Equal(t, []string{"."}, cfg.TestPaths)
	assert.Equal(t, []string{"test_*.suite"}, cfg.FilePatterns)
	assert.Equal(t, TimeoutThread, cfg.TimeoutMethod)
	assert.False(t, cfg.LogCLI)
	assert.Empty(t, cfg.CollectIgnore)
}

func TestFromString_PytestSectionAccepted(t *testing.T) {
	cfg, err := FromString("[pytest]\ntimeout = 30\n", "pytest.ini")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Timeout)
}

func TestFromString_LoadingIsIdempotent(t *testing.T) {
	first, err := FromString(sampleConfig, "testini.ini")
	require.NoError(t, err)
	second, err := FromString(sampleConfig, "testini.ini")
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
}

func TestFromString_RoundTrip(t *testing.T) {
	cfg, err := FromString(sampleConfig, "testini.ini")
	require.NoError(t, err)

	var out strings.Builder
	_, err = cfg.WriteTo(&out)
	require.NoError(t, err)

	reloaded, err := FromString(out.String(), "roundtrip.ini")
	require.NoError(t, err)
	assert.True(t, cfg.Equal(reloaded), "serialized form:\n%s", out.String())
}

func TestFromString_RoundTripDefaults(t *testing.T) {
	cfg := DefaultConfig()

	var out strings.Builder
	_, err := cfg.WriteTo(&out)
	require.NoError(t, err)

	reloaded, err := FromString(out.String(), "")
	require.NoError(t, err)
	assert.True(t, cfg.Equal(reloaded))
}

func TestFromString_ConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		want  string
	}{
		{
			"unknown key",
			"[testini]\ntimeoutt = 5\n",
			"timeoutt",
			"unknown key",
		},
		{
			"unknown section",
			"[flake8]\nmax-line-length = 100\n",
			"",
			"unknown section [flake8]",
		},
		{
			"duplicate key",
			"[testini]\ntimeout = 5\ntimeout = 6\n",
			"timeout",
			"duplicate key",
		},
		{
			"duplicate marker",
			"[testini]\nmarkers =\n    backup: one\n    backup: two\n",
			"markers",
			`duplicate marker "backup"`,
		},
		{
			"negative timeout",
			"[testini]\ntimeout = -1\n",
			"timeout",
			"non-negative",
		},
		{
			"timeout not a number",
			"[testini]\ntimeout = soon\n",
			"timeout",
			"invalid number",
		},
		{
			"timeout as list",
			"[testini]\ntimeout =\n    1\n    2\n",
			"timeout",
			"single value",
		},
		{
			"invalid filter action",
			"[testini]\nfilterwarnings =\n    sometimes::UserWarning\n",
			"filterwarnings",
			"invalid filter action",
		},
		{
			"invalid timeout method",
			"[testini]\ntimeout_method = fork\n",
			"timeout_method",
			"invalid method",
		},
		{
			"invalid log level",
			"[testini]\nlog_cli_level = LOUD\n",
			"log_cli_level",
			"invalid level",
		},
		{
			"invalid log_cli boolean",
			"[testini]\nlog_cli = maybe\n",
			"log_cli",
			"invalid boolean",
		},
		{
			"invalid minversion",
			"[testini]\nminversion = one.two\n",
			"minversion",
			"invalid version",
		},
		{
			"unknown addopt",
			"[testini]\naddopts = --explode\n",
			"addopts",
			"unknown option",
		},
		{
			"missing section",
			"# just a comment\n",
			"",
			"missing [testini] section",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromString(tt.input, "bad.ini")
			require.Error(t, err)

			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr, "expected a ConfigError, got %T: %v", err, err)
			assert.Equal(t, tt.key, cerr.Key)
			assert.Contains(t, cerr.Error(), tt.want)
		})
	}
}

func TestConfigError_NamesLine(t *testing.T) {
	_, err := FromString("[testini]\ntimeout = 5\nbogus = 1\n", "testini.ini")
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 3, cerr.Line)
	assert.Equal(t, "testini.ini:3: bogus: unknown key", cerr.Error())
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testini.ini")
	require.NoError(t, os.WriteFile(path, []byte("[testini]\ntimeout = 42\n"), 0o644))

	cfg, err := FindAndLoad(dir)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Timeout)
	assert.Equal(t, path, cfg.Path)
}

func TestFindAndLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := FindAndLoad(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())
}

func TestSave(t *testing.T) {
	cfg, err := FromString(sampleConfig, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.ini")
	require.NoError(t, cfg.Save(path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Equal(reloaded))
}

func TestCheckMinVersion(t *testing.T) {
	cfg, err := FromString("[testini]\nminversion = 1.4\n", "testini.ini")
	require.NoError(t, err)

	assert.NoError(t, cfg.CheckMinVersion("1.4"))
	assert.NoError(t, cfg.CheckMinVersion("2.0"))
	assert.NoError(t, cfg.CheckMinVersion("dev"))

	err = cfg.CheckMinVersion("1.3.9")
	require.Error(t, err)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "minversion", cerr.Key)
	assert.Contains(t, err.Error(), "requires testini >= 1.4")
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1", "1.0.0", 0},
		{"1.2", "1.10", -1},
		{"2.0", "1.9.9", 1},
		{"0.9", "1", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestValidate_ProgrammaticConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutMethod = "fork"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Timeout = -2
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.FilePatterns = []string{"test_[.suite"}
	assert.Error(t, cfg.Validate())
}
