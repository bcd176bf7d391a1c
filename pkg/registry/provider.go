// Package registry provides the service registry the dispatch engine
// resolves handler and behavior instances through.
package registry

import (
	"fmt"
	"sync"

	"github.com/dualizor/dualizor/internal/logger"
	"github.com/dualizor/dualizor/pkg/types"
)

// Lifetime controls how a registration produces instances
type Lifetime string

const (
	// Singleton memoizes the first instance the factory produces
	Singleton Lifetime = "singleton"
	// Transient invokes the factory on every resolution
	Transient Lifetime = "transient"
)

// Factory creates a service instance
type Factory func() (any, error)

// Resolver resolves registered implementations by key. Resolution is
// safe to invoke concurrently from multiple dispatches.
type Resolver interface {
	// ResolveOne returns a single instance for the key. When multiple
	// implementations are registered under the same key, the last
	// registration wins.
	ResolveOne(key string) (any, error)

	// ResolveAll returns all instances for the key in registration
	// order. An unknown key yields an empty slice, not an error.
	ResolveAll(key string) ([]any, error)
}

// entry represents a single service registration
type entry struct {
	lifetime Lifetime
	factory  Factory

	once     sync.Once
	instance any
	initErr  error
}

func (e *entry) resolve() (any, error) {
	switch e.lifetime {
	case Transient:
		return e.factory()
	default:
		e.once.Do(func() {
			e.instance, e.initErr = e.factory()
		})
		return e.instance, e.initErr
	}
}

// Provider is an in-memory service registry. Multiple implementations
// may be registered under one key; ResolveOne returns the last one.
type Provider struct {
	mu      sync.RWMutex
	entries map[string][]*entry
	logger  *logger.Logger
	closed  bool
}

// NewProvider creates a new service registry
func NewProvider(log *logger.Logger) *Provider {
	if log == nil {
		log = logger.Global()
	}

	return &Provider{
		entries: make(map[string][]*entry),
		logger:  log.With("component", "service_registry"),
	}
}

// Register adds an implementation factory under a key
func (p *Provider) Register(key string, lifetime Lifetime, factory Factory) error {
	if key == "" {
		return types.NewError(types.ErrCodeInvalid, "registration key cannot be empty")
	}
	if factory == nil {
		return types.NewError(types.ErrCodeInvalid, "factory cannot be nil")
	}

	switch lifetime {
	case Singleton, Transient:
	default:
		return types.NewError(types.ErrCodeInvalid, fmt.Sprintf("unknown lifetime: %s", lifetime))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return types.NewError(types.ErrCodeConfigClosed, "service registry is closed")
	}

	p.entries[key] = append(p.entries[key], &entry{lifetime: lifetime, factory: factory})
	p.logger.Debug("Service registered", "key", key, "lifetime", lifetime)

	return nil
}

// Close prevents further registrations. Resolution remains available.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// ResolveOne implements Resolver
func (p *Provider) ResolveOne(key string) (any, error) {
	p.mu.RLock()
	entries := p.entries[key]
	p.mu.RUnlock()

	if len(entries) == 0 {
		return nil, types.NewError(types.ErrCodeNotFound,
			fmt.Sprintf("no implementation registered for key: %s", key))
	}

	// Last registration wins.
	return entries[len(entries)-1].resolve()
}

// ResolveAll implements Resolver
func (p *Provider) ResolveAll(key string) ([]any, error) {
	p.mu.RLock()
	entries := p.entries[key]
	p.mu.RUnlock()

	instances := make([]any, 0, len(entries))
	for i, e := range entries {
		instance, err := e.resolve()
		if err != nil {
			return nil, types.WrapError(types.ErrCodeInternal,
				fmt.Sprintf("failed to create instance %d for key: %s", i, key), err)
		}
		instances = append(instances, instance)
	}

	return instances, nil
}

// Count returns the number of implementations registered under a key
func (p *Provider) Count(key string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries[key])
}
