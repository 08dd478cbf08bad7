package script

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the set of runnable scripts, keyed by name
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]*Script
}

// NewRegistry returns an empty script registry
func NewRegistry() *Registry {
	return &Registry{scripts: make(map[string]*Script)}
}

// Register adds a script. Registering a duplicate name is a programming
// error and returns an error rather than silently replacing.
func (r *Registry) Register(s *Script) error {
	if s.Name == "" {
		return fmt.Errorf("script name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.scripts[s.Name]; exists {
		return fmt.Errorf("script %q already registered", s.Name)
	}
	r.scripts[s.Name] = s
	return nil
}

// Get returns the named script, or false when it does not exist
func (r *Registry) Get(name string) (*Script, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scripts[name]
	return s, ok
}

// List returns all registered scripts sorted by name
func (r *Registry) List() []*Script {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Script, 0, len(r.scripts))
	for _, s := range r.scripts {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
