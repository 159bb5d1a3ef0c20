package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/testini/testini/packages/core/discovery"
	"github.com/testini/testini/packages/core/env"
	"github.com/testini/testini/packages/markers"
	"github.com/testini/testini/packages/warnings"
)

// Status classifies a case outcome.
type Status string

const (
	StatusPassed   Status = "passed"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
	StatusTimedOut Status = "timeout"
)

// Config controls a run.
type Config struct {
	Verbose       bool
	Bail          bool
	StrictMarkers bool
	MarkerExpr    string
	Workers       int
	Timeout       time.Duration
	TimeoutMethod string
	MaxRate       float64
	Registry      *markers.Registry

	// OnResult is called after each case finishes, in completion order.
	OnResult func(*CaseResult)
}

type Runner struct {
	config   *Config
	resolver *env.Resolver
	filter   *warnings.Filter
	limiter  *rate.Limiter
	expr     markers.Expr

	mu sync.Mutex // serializes OnResult
}

type Option func(*Runner)

// WithResolver supplies the variable resolver used for scripts and
// their environment.
func WithResolver(resolver *env.Resolver) Option {
	return func(r *Runner) { r.resolver = resolver }
}

// WithWarningFilter supplies the filterwarnings rules applied to
// captured warnings.
func WithWarningFilter(filter *warnings.Filter) Option {
	return func(r *Runner) { r.filter = filter }
}

func NewRunner(cfg *Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	r := &Runner{config: cfg}
	for _, opt := range opts {
		opt(r)
	}

	if r.resolver == nil {
		r.resolver = env.NewResolver()
	}
	if r.filter == nil {
		r.filter = warnings.NewFilter(nil)
	}
	if cfg.MaxRate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.MaxRate), 1)
	}
	if cfg.MarkerExpr != "" {
		expr, err := markers.ParseExpr(cfg.MarkerExpr)
		if err != nil {
			return nil, fmt.Errorf("marker expression: %w", err)
		}
		r.expr = expr
	}
	return r, nil
}

// RunResult aggregates a whole session.
type RunResult struct {
	Results    []*CaseResult
	Duration   time.Duration
	Passed     int
	Failed     int
	Skipped    int
	Deselected int
	Warnings   []*warnings.Warning
}

// Failures reports whether any case failed or timed out.
func (r *RunResult) Failures() bool { return r.Failed > 0 }

// CaseResult is the outcome of one case.
type CaseResult struct {
	ID         string
	Name       string
	Group      string
	File       string
	Status     Status
	SkipReason string
	Duration   time.Duration
	Stdout     string
	Stderr     string
	Warnings   []*warnings.Warning
	Escalated  []*warnings.Warning
	Err        error
}

// Run executes the collected cases. Cases whose markers do not satisfy
// the marker expression are deselected, not skipped. With strict
// markers enabled, an undeclared marker aborts the run before anything
// executes.
func (r *Runner) Run(ctx context.Context, items []*discovery.Item) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{}

	// Strict markers are a collection-time property: every collected
	// case is checked, even ones the marker expression deselects.
	if r.config.StrictMarkers && r.config.Registry != nil {
		for _, item := range items {
			if err := r.config.Registry.CheckStrict(item.Case.Name, item.Case.Markers); err != nil {
				return nil, err
			}
		}
	}

	var selected []*discovery.Item
	for _, item := range items {
		if r.expr != nil && !r.expr.Eval(item.Case.HasMarker) {
			result.Deselected++
			continue
		}
		selected = append(selected, item)
	}

	if r.config.Workers > 1 {
		r.runParallel(ctx, selected, result)
	} else {
		r.runSequential(ctx, selected, result)
	}

	for _, cr := range result.Results {
		switch cr.Status {
		case StatusPassed:
			result.Passed++
		case StatusSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
		result.Warnings = append(result.Warnings, cr.Warnings...)
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) runSequential(ctx context.Context, items []*discovery.Item, result *RunResult) {
	for _, item := range items {
		cr := r.runCase(ctx, item)
		result.Results = append(result.Results, cr)
		r.notify(cr)

		if r.config.Bail && (cr.Status == StatusFailed || cr.Status == StatusTimedOut) {
			break
		}
	}
}

func (r *Runner) runParallel(ctx context.Context, items []*discovery.Item, result *RunResult) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*CaseResult, len(items))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < r.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				cr := r.runCase(ctx, items[idx])
				results[idx] = cr
				r.notify(cr)

				if r.config.Bail && (cr.Status == StatusFailed || cr.Status == StatusTimedOut) {
					cancel()
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range items {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()

	for _, cr := range results {
		if cr != nil {
			result.Results = append(result.Results, cr)
		}
	}
}

func (r *Runner) notify(cr *CaseResult) {
	if r.config.OnResult == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config.OnResult(cr)
}

func (r *Runner) runCase(ctx context.Context, item *discovery.Item) *CaseResult {
	c := item.Case
	cr := &CaseResult{
		ID:    item.ID(),
		Name:  c.Name,
		Group: c.Group,
		File:  item.Suite.Path,
	}

	if c.Skip != "" {
		cr.Status = StatusSkipped
		cr.SkipReason = c.Skip
		return cr
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			cr.Status = StatusSkipped
			cr.SkipReason = "interrupted"
			return cr
		}
	}

	timeout := r.config.Timeout
	if c.Timeout > 0 {
		timeout = time.Duration(c.Timeout) * time.Second
	}

	start := time.Now()
	out := r.exec(ctx, c.Script, item.Suite.Path, timeout)
	cr.Duration = time.Since(start)
	cr.Stdout = out.Stdout
	cr.Stderr = out.Stderr

	switch {
	case out.TimedOut:
		cr.Status = StatusTimedOut
		cr.Err = fmt.Errorf("timed out after %s", timeout)
	case out.Err != nil:
		cr.Status = StatusFailed
		cr.Err = out.Err
	default:
		cr.Status = StatusPassed
	}

	for _, w := range warnings.ParseOutput(out.Stderr) {
		w.Test = cr.ID
		switch r.filter.Apply(w) {
		case warnings.Report:
			cr.Warnings = append(cr.Warnings, w)
		case warnings.Escalate:
			cr.Escalated = append(cr.Escalated, w)
		}
	}
	if len(cr.Escalated) > 0 && cr.Status == StatusPassed {
		cr.Status = StatusFailed
		cr.Err = fmt.Errorf("%s escalated to error", cr.Escalated[0].Category)
	}
	return cr
}
