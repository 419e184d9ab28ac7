package widgets

import (
	"sort"
	"strings"
	"sync"
)

// DefinitionFactory returns the registration input for a widget definition.
type DefinitionFactory func() RegisterDefinitionInput

// Registry stores built-in and host-defined widget definitions.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]DefinitionFactory
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]DefinitionFactory),
	}
}

// Register adds a static definition input to the registry.
func (r *Registry) Register(input RegisterDefinitionInput) {
	r.RegisterFactory(input.Name, func() RegisterDefinitionInput { return input })
}

// RegisterFactory adds a definition factory under key. An empty key falls
// back to the name the factory produces. Later registrations replace earlier ones.
func (r *Registry) RegisterFactory(key string, factory DefinitionFactory) {
	if factory == nil {
		return
	}
	name := canonicalKey(key)
	if name == "" {
		name = canonicalKey(factory().Name)
	}
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]DefinitionFactory)
	}
	r.factories[name] = factory
}

// Lookup returns the registered input for name.
func (r *Registry) Lookup(name string) (RegisterDefinitionInput, bool) {
	r.mu.RLock()
	factory, ok := r.factories[canonicalKey(name)]
	r.mu.RUnlock()
	if !ok {
		return RegisterDefinitionInput{}, false
	}
	return factory(), true
}

// List returns all registered inputs ordered by registry key.
func (r *Registry) List() []RegisterDefinitionInput {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.factories))
	for key := range r.factories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]RegisterDefinitionInput, 0, len(keys))
	for _, key := range keys {
		out = append(out, r.factories[key]())
	}
	return out
}

func canonicalKey(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
