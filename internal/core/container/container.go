// Package container provides the fail-closed service container entity.
// A container resolves a service name iff that name was explicitly
// registered when the container was assembled, so a workflow can never
// accidentally depend on an undeclared service and any container is
// reproducible purely from its declared membership.
package container

import (
	"fmt"
	"sort"
)

// Container holds materialized service instances keyed by name.
// PRINCIPLES:
// - KISS: A map plus a closed membership check
// - SRP: Only resolution; assembly lives in the container factory
//
// A container is assembled once by a factory and read-only afterwards,
// so Resolve needs no locking.
type Container struct {
	services map[string]interface{}
	deps     map[string][]string
	agents   []string
}

// New creates an empty container.
func New() *Container {
	return &Container{
		services: make(map[string]interface{}),
		deps:     make(map[string][]string),
	}
}

// Register adds a materialized service instance. Intended for factories
// during assembly; registering twice replaces the instance.
func (c *Container) Register(name string, svc interface{}, deps []string) {
	c.services[name] = svc
	if len(deps) > 0 {
		c.deps[name] = append([]string(nil), deps...)
	}
}

// SetAgents records the agent types the container was assembled for.
func (c *Container) SetAgents(agents []string) {
	c.agents = append([]string(nil), agents...)
}

// Resolve returns the service registered under name. Names outside the
// container's declared membership fail with ErrServiceNotAvailable,
// distinct from generic not-found errors.
func (c *Container) Resolve(name string) (interface{}, error) {
	svc, ok := c.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServiceNotAvailable, name)
	}
	return svc, nil
}

// Has reports whether name is resolvable.
func (c *Container) Has(name string) bool {
	_, ok := c.services[name]
	return ok
}

// Services returns the resolvable service names in deterministic order.
func (c *Container) Services() []string {
	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Agents returns the declared agent types.
func (c *Container) Agents() []string {
	return append([]string(nil), c.agents...)
}
