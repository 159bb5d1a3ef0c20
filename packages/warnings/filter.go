package warnings

import (
	"fmt"
	"sync"
)

// Decision is the outcome of filtering one warning.
type Decision int

const (
	// Suppress drops the warning silently.
	Suppress Decision = iota
	// Report surfaces the warning in the session summary.
	Report
	// Escalate fails the test that emitted the warning.
	Escalate
)

// Filter applies an ordered filterwarnings rule list to captured warnings.
// Rules declared later take precedence over earlier ones. Deduplication
// state for the once/module/default actions spans the whole session, so a
// single Filter must be shared across suites. Safe for concurrent use.
type Filter struct {
	rules []*Rule

	mu          sync.Mutex
	seenOnce    map[string]bool
	seenModule  map[string]bool
	seenDefault map[string]bool
}

func NewFilter(rules []*Rule) *Filter {
	return &Filter{
		rules:       rules,
		seenOnce:    make(map[string]bool),
		seenModule:  make(map[string]bool),
		seenDefault: make(map[string]bool),
	}
}

// Apply decides what happens to the warning. Warnings matching no rule get
// the default behavior.
func (f *Filter) Apply(w *Warning) Decision {
	action := ActionDefault
	for i := len(f.rules) - 1; i >= 0; i-- {
		if f.rules[i].Matches(w) {
			action = f.rules[i].Action
			break
		}
	}

	switch action {
	case ActionError:
		return Escalate
	case ActionIgnore:
		return Suppress
	case ActionAlways:
		return Report
	case ActionOnce:
		return f.dedupe(f.seenOnce, w.Category+"\x00"+w.Message)
	case ActionModule:
		return f.dedupe(f.seenModule, w.Category+"\x00"+w.Module())
	default:
		key := fmt.Sprintf("%s\x00%s\x00%s:%d", w.Category, w.Message, w.Location, w.Line)
		return f.dedupe(f.seenDefault, key)
	}
}

func (f *Filter) dedupe(seen map[string]bool, key string) Decision {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seen[key] {
		return Suppress
	}
	seen[key] = true
	return Report
}
