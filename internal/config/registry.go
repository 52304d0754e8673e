package config

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/MrWong99/arguebot/pkg/provider/llm"
)

// ErrBackendNotRegistered is returned by [Registry.CreateProvider] when no
// factory has been registered under the requested backend.
var ErrBackendNotRegistered = errors.New("config: backend not registered")

// ProviderFactory constructs an [llm.Provider] from the runner configuration.
type ProviderFactory func(RunnerConfig) (llm.Provider, error)

// Registry maps backend names to their provider constructors. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[Backend]ProviderFactory
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Backend]ProviderFactory)}
}

// Register registers a provider factory under backend.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) Register(backend Backend, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[backend] = factory
}

// Backends returns the registered backend names in sorted order.
func (r *Registry) Backends() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Backend, 0, len(r.factories))
	for b := range r.factories {
		out = append(out, b)
	}
	slices.Sort(out)
	return out
}

// CreateProvider instantiates a provider using the factory registered under
// cfg.Backend. Returns [ErrBackendNotRegistered] if no factory has been
// registered for that name.
func (r *Registry) CreateProvider(cfg RunnerConfig) (llm.Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Backend]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotRegistered, cfg.Backend)
	}
	p, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: create %q provider: %w", cfg.Backend, err)
	}
	return p, nil
}
