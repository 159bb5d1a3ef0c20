package warnings

import (
	"fmt"
	"regexp"
	"strings"
)

// Action tells the session what to do with a matching warning.
type Action string

const (
	ActionError   Action = "error"   // escalate: the emitting test fails
	ActionIgnore  Action = "ignore"  // suppress entirely
	ActionAlways  Action = "always"  // report every occurrence
	ActionDefault Action = "default" // report once per location
	ActionModule  Action = "module"  // report once per module
	ActionOnce    Action = "once"    // report once per session
)

var validActions = map[Action]bool{
	ActionError:   true,
	ActionIgnore:  true,
	ActionAlways:  true,
	ActionDefault: true,
	ActionModule:  true,
	ActionOnce:    true,
}

// Rule is a single filterwarnings entry. The textual form is
//
//	action[:message[:category[:module]]]
//
// where message and module are regular expressions matched against the
// warning message and the emitting module, and category is an exact
// warning category name. Empty fields match everything.
type Rule struct {
	Action   Action
	Message  *regexp.Regexp
	Category string
	Module   *regexp.Regexp

	raw string
}

// ParseRule parses the textual rule form.
func ParseRule(s string) (*Rule, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return nil, fmt.Errorf("empty filter rule")
	}

	parts := strings.SplitN(raw, ":", 4)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	action := Action(parts[0])
	if !validActions[action] {
		return nil, fmt.Errorf("invalid filter action %q (valid: error, ignore, always, default, module, once)", parts[0])
	}

	rule := &Rule{Action: action, raw: raw}

	if len(parts) > 1 && parts[1] != "" {
		re, err := regexp.Compile(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid message pattern %q: %v", parts[1], err)
		}
		rule.Message = re
	}
	if len(parts) > 2 && parts[2] != "" {
		if !isCategoryName(parts[2]) {
			return nil, fmt.Errorf("invalid warning category %q", parts[2])
		}
		rule.Category = parts[2]
	}
	if len(parts) > 3 && parts[3] != "" {
		re, err := regexp.Compile(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid module pattern %q: %v", parts[3], err)
		}
		rule.Module = re
	}

	return rule, nil
}

// String returns the rule in its original textual form.
func (r *Rule) String() string {
	return r.raw
}

// Matches reports whether the warning falls under this rule.
func (r *Rule) Matches(w *Warning) bool {
	if r.Message != nil && !r.Message.MatchString(w.Message) {
		return false
	}
	if r.Category != "" && r.Category != w.Category {
		return false
	}
	if r.Module != nil && !r.Module.MatchString(w.Module()) {
		return false
	}
	return true
}

func isCategoryName(s string) bool {
	for i, c := range s {
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return s != ""
}
