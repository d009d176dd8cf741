package safety

import (
	"sort"
	"sync"
)

// Access is the declared effect of a registered command pattern.
type Access string

const (
	ReadAccess  Access = "READ"
	WriteAccess Access = "WRITE"
)

// Pattern pairs a shell-style glob with the access it declares. Globs
// support * and ? and match a whole command, case-insensitively, with
// runs of whitespace collapsed.
type Pattern struct {
	Glob   string
	Access Access
}

// Registry holds command patterns keyed by tool name (the first token of
// a command). Register replaces the tool's previous patterns wholesale,
// so the resolved rules never depend on registration order.
type Registry struct {
	mu       sync.Mutex
	patterns map[string][]Pattern
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{patterns: make(map[string][]Pattern)}
}

// Register installs the pattern set for a tool, replacing any previous
// registration for the same tool.
func (r *Registry) Register(tool string, patterns []Pattern) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns[tool] = append([]Pattern(nil), patterns...)
}

// Lookup returns a copy of the patterns registered for a tool, or nil.
func (r *Registry) Lookup(tool string) []Pattern {
	r.mu.Lock()
	defer r.mu.Unlock()
	pats, ok := r.patterns[tool]
	if !ok {
		return nil
	}
	return append([]Pattern(nil), pats...)
}

// Tools returns the registered tool names, sorted.
func (r *Registry) Tools() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.patterns))
	for name := range r.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
