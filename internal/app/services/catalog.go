package services

import (
	"fmt"
	"sort"

	"github.com/jwwelbor/AgentMap-sub007/internal/app/dto"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/bundle"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/container"
)

// Constructor materializes one service instance. The container passed in
// already holds every dependency the definition declares, in load order.
type Constructor func(c *container.Container) (interface{}, error)

// ServiceDefinition declares one service: its name, the services it
// depends on, and how to build it. A nil Constructor declares a
// boundary service: its dependency edges participate in analysis, but
// assembling a container that needs it fails until a host registers a
// constructible definition in its place.
type ServiceDefinition struct {
	Name     string
	Requires []string
	New      Constructor
}

// ServiceCatalog is an explicit registry of service definitions and
// per-agent-type service requirements. Catalogs are constructed once at
// process start and passed by reference to whatever needs them; there is
// no ambient module-level registry.
// PRINCIPLES:
// - SRP: Only declarative knowledge; assembly lives in ContainerFactory
// - OCP: Hosts extend it by registering their own definitions
type ServiceCatalog struct {
	defs          map[string]ServiceDefinition
	agentServices map[string][]string
	baseServices  []string
}

// NewServiceCatalog creates an empty catalog.
func NewServiceCatalog() *ServiceCatalog {
	return &ServiceCatalog{
		defs:          make(map[string]ServiceDefinition),
		agentServices: make(map[string][]string),
	}
}

// RegisterService adds a service definition. Duplicate names are an
// error: definitions are declared once, at startup.
func (sc *ServiceCatalog) RegisterService(def ServiceDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("invalid service definition %q", def.Name)
	}
	if _, exists := sc.defs[def.Name]; exists {
		return fmt.Errorf("service %q already registered", def.Name)
	}
	sc.defs[def.Name] = def
	return nil
}

// ReplaceService swaps a definition, typically a host supplying the
// constructor for a boundary service the default catalog only declares.
func (sc *ServiceCatalog) ReplaceService(def ServiceDefinition) error {
	if def.Name == "" || def.New == nil {
		return fmt.Errorf("invalid service definition %q", def.Name)
	}
	sc.defs[def.Name] = def
	return nil
}

// RegisterAgent declares which services an agent type needs directly.
// Agent capabilities are declared here, not probed reflectively.
func (sc *ServiceCatalog) RegisterAgent(agentType string, services ...string) {
	sc.agentServices[agentType] = append([]string(nil), services...)
}

// SetBaseServices declares services every graph needs regardless of its
// agent mix.
func (sc *ServiceCatalog) SetBaseServices(services ...string) {
	sc.baseServices = append([]string(nil), services...)
}

// Definition returns the declaration for a service name.
func (sc *ServiceCatalog) Definition(name string) (ServiceDefinition, bool) {
	def, ok := sc.defs[name]
	return def, ok
}

// ServiceNames returns every declared service name in deterministic order.
func (sc *ServiceCatalog) ServiceNames() []string {
	names := make([]string, 0, len(sc.defs))
	for name := range sc.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ServicesForAgent returns the direct service requirements of an agent
// type. Unknown agent types need no services beyond the base set.
func (sc *ServiceCatalog) ServicesForAgent(agentType string) []string {
	return append([]string(nil), sc.agentServices[agentType]...)
}

// CatalogAnalyzer implements both analysis collaborators on top of a
// service catalog: protocol requirements from the agent declarations,
// dependency expansion from the service definitions.
type CatalogAnalyzer struct {
	catalog *ServiceCatalog
}

// NewCatalogAnalyzer creates an analyzer over the given catalog.
func NewCatalogAnalyzer(catalog *ServiceCatalog) *CatalogAnalyzer {
	return &CatalogAnalyzer{catalog: catalog}
}

// Analyze collects the distinct agent types of a node set and the union
// of their direct service requirements plus the catalog's base services.
func (a *CatalogAnalyzer) Analyze(nodes map[string]*bundle.Node) (Requirements, error) {
	agentSet := make(map[string]bool)
	serviceSet := make(map[string]bool)

	for _, s := range a.catalog.baseServices {
		serviceSet[s] = true
	}
	for _, n := range nodes {
		if n == nil || n.AgentType == "" {
			return Requirements{}, bundle.ErrInvalidAgentType
		}
		if agentSet[n.AgentType] {
			continue
		}
		agentSet[n.AgentType] = true
		for _, s := range a.catalog.agentServices[n.AgentType] {
			serviceSet[s] = true
		}
	}

	reqs := Requirements{
		Agents:   setToSorted(agentSet),
		Services: setToSorted(serviceSet),
	}
	return reqs, nil
}

// Expand walks the declared dependency edges from the direct services to
// the full transitive closure, then orders the closure so that each
// service's dependencies precede it. Ordering is deterministic: ties
// break alphabetically.
func (a *CatalogAnalyzer) Expand(services []string) ([]string, []string, error) {
	closure := make(map[string]bool)
	queue := append([]string(nil), services...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if closure[name] {
			continue
		}
		def, ok := a.catalog.Definition(name)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", dto.ErrServiceNotInCatalog, name)
		}
		closure[name] = true
		queue = append(queue, def.Requires...)
	}

	members := setToSorted(closure)

	// Kahn's algorithm over the closure subgraph.
	indegree := make(map[string]int, len(members))
	dependents := make(map[string][]string, len(members))
	for _, name := range members {
		def, _ := a.catalog.Definition(name)
		for _, dep := range def.Requires {
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for _, name := range members {
		if indegree[name] == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(members))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)
		released := dependents[name]
		sort.Strings(released)
		for _, next := range released {
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
		sort.Strings(ready)
	}

	if len(order) != len(members) {
		return nil, nil, fmt.Errorf("service dependency cycle involving %d services", len(members)-len(order))
	}
	return members, order, nil
}

func setToSorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
