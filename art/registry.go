package art

import (
	"fmt"
	"sort"
	"sync"
)

// Options carries the configurable parameters passed to constructors.
type Options struct {
	Width   float64
	Height  float64
	Padding float64
	Seed    int64
	// Source is an artwork-specific location, e.g. a journal path.
	Source string
}

// Constructor builds a generator from options.
type Constructor func(opts Options) (Generator, error)

// Registry maps artwork names to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register adds a constructor. Registering a name twice is an error.
func (r *Registry) Register(name string, ctor Constructor) error {
	if name == "" {
		return fmt.Errorf("artwork name is required")
	}
	if ctor == nil {
		return fmt.Errorf("artwork %q: nil constructor", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[name]; ok {
		return fmt.Errorf("artwork %q already registered", name)
	}
	r.ctors[name] = ctor
	return nil
}

// New builds the named artwork.
func (r *Registry) New(name string, opts Options) (Generator, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown artwork %q (available: %v)", name, r.Names())
	}
	gen, err := ctor(opts)
	if err != nil {
		return nil, fmt.Errorf("artwork %q: %w", name, err)
	}
	return gen, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
