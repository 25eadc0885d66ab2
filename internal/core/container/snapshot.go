// Package container provides registry snapshots for diagnostics
package container

import "sort"

// Snapshot is a structured, serializable description of a container's
// resolvable services, agents, and inter-service dependency edges. Used
// for diagnostics and for asserting reproducibility in tests; it must
// round-trip through a generic serialization format.
type Snapshot struct {
	Services     []string            `json:"services"`
	Agents       []string            `json:"agents,omitempty"`
	Dependencies map[string][]string `json:"dependencies,omitempty"`
}

// Snapshot captures the container's current registry state.
func (c *Container) Snapshot() Snapshot {
	snap := Snapshot{
		Services: c.Services(),
		Agents:   append([]string(nil), c.agents...),
	}
	if len(c.deps) > 0 {
		snap.Dependencies = make(map[string][]string, len(c.deps))
		for name, deps := range c.deps {
			sorted := append([]string(nil), deps...)
			sort.Strings(sorted)
			snap.Dependencies[name] = sorted
		}
	}
	return snap
}
