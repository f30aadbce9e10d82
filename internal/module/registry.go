package module

import (
	"fmt"
	"strings"
	"sync"
)

// Config carries stage-specific settings from the pipeline definition.
type Config map[string]any

// Factory constructs a stage with the provided configuration.
type Factory func(Config) (Module, error)

// Registry maps stage ids to factories. Ids are kept in registration order,
// which for the built-ins is pipeline order.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register installs a stage factory. Ids are trimmed; a duplicate id is an
// error.
func (r *Registry) Register(id string, factory Factory) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("stage: id is required")
	}
	if factory == nil {
		return fmt.Errorf("stage %s: factory is required", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("stage %s: already registered", id)
	}
	r.factories[id] = factory
	r.order = append(r.order, id)
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(id string, factory Factory) {
	if err := r.Register(id, factory); err != nil {
		panic(err)
	}
}

// Resolve builds the stage registered under id and checks that its info
// block names the same id.
func (r *Registry) Resolve(id string, cfg Config) (Module, error) {
	id = strings.TrimSpace(id)
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("stage %s: not registered", id)
	}
	mod, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", id, err)
	}
	info := mod.Info()
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if info.ID != id {
		return nil, fmt.Errorf("stage %s: factory built %s", id, info.ID)
	}
	return mod, nil
}

// IDs lists the registered stage ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[strings.TrimSpace(id)]
	return ok
}

// Infos resolves every stage with an empty config, in registration order.
func (r *Registry) Infos() ([]Info, error) {
	ids := r.IDs()
	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		mod, err := r.Resolve(id, nil)
		if err != nil {
			return nil, err
		}
		infos = append(infos, mod.Info())
	}
	return infos, nil
}
