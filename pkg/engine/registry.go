package engine

import (
	"context"
	"fmt"
	"sync"
)

// Analyzer inspects one aspect of a project and returns a typed result.
type Analyzer interface {
	// Name identifies the analyzer in logs and performance stats
	Name() string
	// Section is the report slot the analyzer fills
	Section() Section
	// Analyze runs the analysis; errors are retried by the orchestrator
	Analyze(ctx context.Context, in *Input) (Result, error)
}

// Registry holds the analyzers of a run. It is built explicitly by the
// caller and passed to the orchestrator.
type Registry struct {
	mu        sync.RWMutex
	analyzers []Analyzer
	names     map[string]bool
	sections  map[Section]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		names:    make(map[string]bool),
		sections: make(map[Section]bool),
	}
}

// Register adds an analyzer. Names and sections must be unique.
func (r *Registry) Register(a Analyzer) error {
	if a == nil {
		return fmt.Errorf("cannot register nil analyzer")
	}

	name := a.Name()
	if name == "" {
		return fmt.Errorf("cannot register analyzer with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.names[name] {
		return fmt.Errorf("analyzer '%s' is already registered", name)
	}
	if r.sections[a.Section()] {
		return fmt.Errorf("section '%s' already has an analyzer", a.Section())
	}

	r.analyzers = append(r.analyzers, a)
	r.names[name] = true
	r.sections[a.Section()] = true
	return nil
}

// MustRegister is Register for fixed analyzer sets.
func (r *Registry) MustRegister(analyzers ...Analyzer) *Registry {
	for _, a := range analyzers {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
	return r
}

// Get retrieves an analyzer by name
func (r *Registry) Get(name string) (Analyzer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.analyzers {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// List returns the analyzer names in registration order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.analyzers))
	for _, a := range r.analyzers {
		names = append(names, a.Name())
	}
	return names
}

// Select returns the analyzers whose section is requested, in registration
// order.
func (r *Registry) Select(sections Sections) []Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Analyzer
	for _, a := range r.analyzers {
		if sections.Has(a.Section()) {
			out = append(out, a)
		}
	}
	return out
}
