package env

import (
	"os"
	"regexp"
	"sort"
	"sync"
)

var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// WarnFunc is called when a ${VAR} reference cannot be resolved.
type WarnFunc func(format string, args ...any)

// Resolver substitutes ${VAR} references in scripts and variable values.
// Explicitly set variables take precedence over the process environment.
// Safe for concurrent use by parallel workers.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{variables: make(map[string]string)}
}

// SetWarnFunc registers a callback for unresolved references.
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

// SetVariables merges vars into the resolver. Later calls override
// earlier ones for the same key.
func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

func (r *Resolver) GetVariable(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

// Resolve replaces every ${VAR} in input. Unresolved references are
// left verbatim and reported through the warn callback.
func (r *Resolver) Resolve(input string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(input)
}

func (r *Resolver) resolveLocked(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[2 : len(match)-1]

		if val, ok := r.variables[name]; ok {
			return val
		}
		if val, ok := os.LookupEnv(name); ok {
			return val
		}

		if r.warnFunc != nil {
			r.warnFunc("unresolved variable: %s", name)
		}
		return match
	})
}

// ResolveAll resolves every value of the map.
func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// Environ returns the resolver's variables as KEY=value pairs appended
// to the process environment, ready for exec.Cmd.Env.
func (r *Resolver) Environ() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.variables))
	for k := range r.variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	environ := os.Environ()
	for _, k := range keys {
		environ = append(environ, k+"="+r.resolveLocked(r.variables[k]))
	}
	return environ
}

// Clone returns an independent copy, used per worker.
func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	return clone
}
