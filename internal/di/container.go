// Package di implements a minimal service container used to wire
// bounded contexts together without a reflection-heavy framework.
// Services are registered under string tokens and resolved lazily on
// first use, memoizing the constructed value.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of a Container, handed to factory
// functions so they can pull their own dependencies.
type ServiceRegistry interface {
	Get(token string) (any, bool)
	MustGet(token string) any
}

// Container is the full read/write service registry.
type Container interface {
	ServiceRegistry
	Register(token string, value any)
}

type container struct {
	mu       sync.RWMutex
	values   map[string]any
	builders map[string]func(ServiceRegistry) any
	building map[string]bool
}

// NewContainer returns an empty Container.
func NewContainer() Container {
	return &container{
		values:   make(map[string]any),
		builders: make(map[string]func(ServiceRegistry) any),
		building: make(map[string]bool),
	}
}

func (c *container) Register(token string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[token] = value
}

func (c *container) Get(token string) (any, bool) {
	c.mu.RLock()
	v, ok := c.values[token]
	if ok {
		c.mu.RUnlock()
		return v, true
	}
	builder, hasBuilder := c.builders[token]
	c.mu.RUnlock()
	if !hasBuilder {
		return nil, false
	}

	c.mu.Lock()
	if c.building[token] {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: circular dependency resolving token %q", token))
	}
	c.building[token] = true
	c.mu.Unlock()

	built := builder(c)

	c.mu.Lock()
	c.values[token] = built
	delete(c.building, token)
	c.mu.Unlock()

	return built, true
}

func (c *container) MustGet(token string) any {
	v, ok := c.Get(token)
	if !ok {
		panic(fmt.Sprintf("di: token %q not registered", token))
	}
	return v
}

// RegisterToken registers a lazily-built, type-checked service under
// token. The factory receives the registry so it can resolve its own
// dependencies on first access; the built value is memoized.
func RegisterToken[T any](c Container, token string, factory func(sr ServiceRegistry) T) {
	cc, ok := c.(*container)
	if !ok {
		// Fallback for Container implementations that aren't *container:
		// build eagerly, since we can't install a lazy builder.
		c.Register(token, factory(c))
		return
	}
	cc.mu.Lock()
	cc.builders[token] = func(sr ServiceRegistry) any { return factory(sr) }
	cc.mu.Unlock()
}

// Resolve fetches token from sr and type-asserts it to T, panicking
// with a descriptive message on mismatch or absence.
func Resolve[T any](sr ServiceRegistry, token string) T {
	raw := sr.MustGet(token)
	v, ok := raw.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("di: token %q is %T, not %T", token, raw, zero))
	}
	return v
}
