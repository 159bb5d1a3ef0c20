package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/testini/testini/packages/core/config"
	"github.com/testini/testini/packages/core/discovery"
	"github.com/testini/testini/packages/core/env"
	"github.com/testini/testini/packages/core/runner"
	"github.com/testini/testini/packages/history"
	"github.com/testini/testini/packages/output"
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Run test suites",
	Long: `Run the test cases discovered under the configured testpaths,
or under the given paths.

Options given on the command line override the same options from the
addopts setting, which in turn override the configuration defaults.

Examples:
  testini run
  testini run tests/
  testini run -m "not slow"
  testini run -x -n 4 --env staging
  testini run -o junit --output-file results.xml`,
	RunE: runCommand,
}

// WatchDebounceDelay is the debounce delay for file watch events
const WatchDebounceDelay = 300 * time.Millisecond

var (
	envFlag           string
	verboseFlag       bool
	quietFlag         bool
	strictMarkersFlag bool
	exitFirstFlag     bool
	markerFlag        string
	workersFlag       int
	timeoutFlag       int
	timeoutMethodFlag string
	outputFlag        string
	outputFileFlag    string
	colorFlag         string
	maxRateFlag       float64
	watchFlag         bool
	noHistoryFlag     bool
)

func init() {
	runCmd.Flags().StringVarP(&envFlag, "env", "e", getEnvString("TESTINI_ENV", ""), "Named environment from envs.yaml (env: TESTINI_ENV)")
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "One line per test case")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("TESTINI_QUIET", false), "Only the summary line (env: TESTINI_QUIET)")
	runCmd.Flags().BoolVar(&strictMarkersFlag, "strict-markers", false, "Fail on markers not declared in the configuration")
	runCmd.Flags().BoolVarP(&exitFirstFlag, "exitfirst", "x", false, "Stop after the first failure")
	runCmd.Flags().StringVarP(&markerFlag, "marker", "m", "", "Only run cases matching the marker expression")
	runCmd.Flags().IntVarP(&workersFlag, "numprocesses", "n", 0, "Number of parallel workers")
	runCmd.Flags().IntVar(&timeoutFlag, "timeout", 0, "Per-case timeout in seconds (0 disables)")
	runCmd.Flags().StringVar(&timeoutMethodFlag, "timeout-method", "", "Timeout enforcement: thread or signal")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output format: console, json, junit, tap")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("TESTINI_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: TESTINI_OUTPUT_FILE)")
	runCmd.Flags().StringVar(&colorFlag, "color", "", "Colored output: auto, yes, no")
	runCmd.Flags().Float64Var(&maxRateFlag, "max-rate", 0, "Maximum case launches per second (0 unlimited)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch suite files for changes and re-run")
	runCmd.Flags().BoolVar(&noHistoryFlag, "no-history", false, "Do not record this session in history")
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatHeader(version string)
	FormatCase(cr *runner.CaseResult)
	FormatResult(result *runner.RunResult)
	FormatError(err error)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// mergeOptions layers explicit CLI flags over the addopts option set.
func mergeOptions(cfg *config.SessionConfig, flags *pflag.FlagSet) (*config.Options, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	if flags.Changed("verbose") {
		opts.Verbose = verboseFlag
	}
	if flags.Changed("quiet") {
		opts.Quiet = quietFlag
	}
	if flags.Changed("strict-markers") {
		opts.StrictMarkers = strictMarkersFlag
	}
	if flags.Changed("exitfirst") {
		opts.ExitFirst = exitFirstFlag
	}
	if flags.Changed("marker") {
		opts.MarkerExpr = markerFlag
	}
	if flags.Changed("numprocesses") {
		if workersFlag < 1 {
			return nil, fmt.Errorf("-n expects a positive integer, got %d", workersFlag)
		}
		opts.NumProcs = workersFlag
	}
	if flags.Changed("timeout") {
		if timeoutFlag < 0 {
			return nil, fmt.Errorf("--timeout expects a non-negative integer, got %d", timeoutFlag)
		}
		t := timeoutFlag
		opts.Timeout = &t
	}
	if flags.Changed("timeout-method") {
		if timeoutMethodFlag != config.TimeoutThread && timeoutMethodFlag != config.TimeoutSignal {
			return nil, fmt.Errorf("--timeout-method expects thread or signal, got %q", timeoutMethodFlag)
		}
		opts.TimeoutMethod = timeoutMethodFlag
	}
	if flags.Changed("output") {
		switch outputFlag {
		case "console", "json", "junit", "tap":
			opts.Output = outputFlag
		default:
			return nil, fmt.Errorf("-o expects console, json, junit, or tap, got %q", outputFlag)
		}
	}
	if flags.Changed("color") {
		switch colorFlag {
		case "auto", "yes", "no":
			opts.Color = colorFlag
		default:
			return nil, fmt.Errorf("--color expects auto, yes, or no, got %q", colorFlag)
		}
	}
	if flags.Changed("max-rate") {
		if maxRateFlag < 0 {
			return nil, fmt.Errorf("--max-rate expects a non-negative number, got %v", maxRateFlag)
		}
		opts.MaxRate = maxRateFlag
	}

	if opts.Verbose && opts.Quiet {
		return nil, fmt.Errorf("options -v and -q are mutually exclusive")
	}
	return opts, nil
}

func newFormatter(opts *config.Options, outWriter *os.File) Formatter {
	switch opts.Output {
	case "json":
		jsonOpts := []output.JSONOption{}
		if outWriter != nil {
			jsonOpts = append(jsonOpts, output.JSONWithWriter(outWriter))
		}
		return output.NewJSONFormatter(jsonOpts...)
	case "junit":
		junitOpts := []output.JUnitOption{}
		if outWriter != nil {
			junitOpts = append(junitOpts, output.JUnitWithWriter(outWriter))
		}
		return output.NewJUnitFormatter(junitOpts...)
	case "tap":
		tapOpts := []output.TAPOption{}
		if outWriter != nil {
			tapOpts = append(tapOpts, output.TAPWithWriter(outWriter))
		}
		return output.NewTAPFormatter(tapOpts...)
	default: // "console"
		consoleOpts := []output.ConsoleOption{
			output.WithVerbose(opts.Verbose),
			output.WithQuiet(opts.Quiet),
			output.WithNoColor(opts.Color == "no"),
		}
		if outWriter != nil {
			consoleOpts = append(consoleOpts, output.WithWriter(outWriter))
		}
		return output.NewConsoleFormatter(consoleOpts...)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadSession()
	if err != nil {
		return err
	}

	opts, err := mergeOptions(cfg, cmd.Flags())
	if err != nil {
		return err
	}

	var outWriter *os.File
	if outputFileFlag != "" {
		outWriter, err = os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer outWriter.Close()
	}

	baseDir := configDir(cfg)

	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
	})
	if len(cfg.EnvFiles) > 0 {
		vars, err := env.LoadFiles(baseDir, cfg.EnvFiles)
		if err != nil {
			return err
		}
		resolver.SetVariables(vars)
	}
	manifest, err := env.LoadManifest(filepath.Join(baseDir, env.ManifestFilename))
	if err != nil {
		return err
	}
	envVars, err := manifest.Environment(envFlag)
	if err != nil {
		return err
	}
	resolver.SetVariables(envVars)

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	var liveLog *output.LiveLog
	if cfg.LogCLI {
		liveLog = output.NewLiveLog(os.Stderr, cfg.LogCLILevel, cfg.LogCLIFormat, cfg.LogCLIDateFormat)
	}

	roots := cfg.TestPaths
	if len(args) > 0 {
		roots = args
	}
	collector := discovery.FromConfig(cfg)

	timeout := time.Duration(cfg.Timeout) * time.Second
	if opts.Timeout != nil {
		timeout = time.Duration(*opts.Timeout) * time.Second
	}
	timeoutMethod := cfg.TimeoutMethod
	if opts.TimeoutMethod != "" {
		timeoutMethod = opts.TimeoutMethod
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func(formatter Formatter) (*runner.RunResult, error) {
		items, err := collector.Collect(roots)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return &runner.RunResult{}, nil
		}

		var bar *progressbar.ProgressBar
		if opts.Output == "" || opts.Output == "console" {
			if !opts.Verbose && !opts.Quiet && outWriter == nil && liveLog == nil {
				bar = progressbar.NewOptions(len(items),
					progressbar.OptionSetDescription("running"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
		}

		runCfg := &runner.Config{
			Verbose:       opts.Verbose,
			Bail:          opts.ExitFirst,
			StrictMarkers: opts.StrictMarkers,
			MarkerExpr:    opts.MarkerExpr,
			Workers:       opts.NumProcs,
			Timeout:       timeout,
			TimeoutMethod: timeoutMethod,
			MaxRate:       opts.MaxRate,
			Registry:      registry,
			OnResult: func(cr *runner.CaseResult) {
				if liveLog != nil {
					switch cr.Status {
					case runner.StatusPassed:
						liveLog.Infof("%s passed", cr.ID)
					case runner.StatusSkipped:
						liveLog.Infof("%s skipped: %s", cr.ID, cr.SkipReason)
					default:
						liveLog.Errorf("%s %s", cr.ID, cr.Status)
					}
				}
				if bar != nil {
					_ = bar.Add(1)
					return
				}
				formatter.FormatCase(cr)
			},
		}

		r, err := runner.NewRunner(runCfg, runner.WithResolver(resolver), runner.WithWarningFilter(cfg.Filter()))
		if err != nil {
			return nil, err
		}

		if liveLog != nil {
			liveLog.Infof("session started with %d cases", len(items))
		}
		result, err := r.Run(ctx, items)
		if bar != nil {
			_ = bar.Finish()
		}
		return result, err
	}

	formatter := newFormatter(opts, outWriter)
	formatter.FormatHeader(version)

	result, err := runOnce(formatter)
	if err != nil {
		formatter.FormatError(err)
		return err
	}

	noTests, err := finishRun(formatter, result, roots)
	if err != nil {
		return err
	}
	if noTests && !watchFlag {
		if outWriter != nil {
			outWriter.Close()
		}
		os.Exit(ExitNoTests)
	}

	recordSession(cfg, result)

	if !watchFlag {
		if result.Failed > 0 {
			if outWriter != nil {
				outWriter.Close()
			}
			os.Exit(ExitTestFailure)
		}
		return nil
	}

	return watchLoop(cmd, ctx, cfg, opts, outWriter, roots, runOnce)
}

// finishRun reports the outcome and flushes accumulating formatters.
// Flushing happens before any exit path so --output-file never ends up
// created but empty.
func finishRun(formatter Formatter, result *runner.RunResult, roots []string) (noTests bool, err error) {
	noTests = len(result.Results) == 0 && result.Deselected == 0
	if noTests {
		formatter.FormatError(fmt.Errorf("no tests collected under %s", strings.Join(roots, ", ")))
	} else {
		formatter.FormatResult(result)
	}

	if flushable, ok := formatter.(Flushable); ok {
		if err := flushable.Flush(result.Duration); err != nil {
			return noTests, fmt.Errorf("error writing output: %w", err)
		}
	}
	return noTests, nil
}

// recordSession appends the run to the history database. History is
// best effort and never fails the run.
func recordSession(cfg *config.SessionConfig, result *runner.RunResult) {
	if noHistoryFlag || len(result.Results) == 0 {
		return
	}
	store, err := history.Open(filepath.Join(configDir(cfg), history.DefaultFilename))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open history: %v\n", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(result); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot record session: %v\n", err)
	}
}

// watchLoop re-runs the suite when a suite file or the configuration
// changes.
func watchLoop(cmd *cobra.Command, ctx context.Context, cfg *config.SessionConfig, opts *config.Options,
	outWriter *os.File, roots []string, runOnce func(Formatter) (*runner.RunResult, error)) error {

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	watchDir := func(dir string) {
		if !watched[dir] {
			if err := watcher.Add(dir); err == nil {
				watched[dir] = true
			}
		}
	}
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			watchDir(filepath.Dir(root))
			continue
		}
		_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err == nil && info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
				watchDir(path)
			}
			return nil
		})
	}
	if cfg.Path != "" {
		watchDir(filepath.Dir(cfg.Path))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

	matchesSuite := func(name string) bool {
		base := filepath.Base(name)
		if cfg.Path != "" && base == filepath.Base(cfg.Path) {
			return true
		}
		for _, pattern := range cfg.FilePatterns {
			if ok, err := filepath.Match(pattern, base); err == nil && ok {
				return true
			}
		}
		return false
	}

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !matchesSuite(event.Name) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\nFile changed: %s\nRe-running tests...\n\n", event.Name)

				// Accumulating formatters need fresh state per run.
				formatter := newFormatter(opts, outWriter)
				result, err := runOnce(formatter)
				if err != nil {
					formatter.FormatError(err)
					return
				}
				if _, err := finishRun(formatter, result, roots); err != nil {
					fmt.Fprintf(os.Stderr, "warning: %v\n", err)
				}
				recordSession(cfg, result)
				fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "warning: watcher error: %v\n", err)
		}
	}
}
