package services

import (
	"fmt"

	"github.com/jwwelbor/AgentMap-sub007/internal/app/dto"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/bundle"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/container"
	"github.com/jwwelbor/AgentMap-sub007/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
)

// Fixed membership sets for the convenience containers. Each set is
// closed over its own dependencies; assembly still goes through the same
// fail-closed discipline as bundle-derived containers.
var (
	scaffoldServices = []string{
		ServiceNodeRegistry,
		ServiceFunctionResolver,
		ServicePromptService,
	}
	validationServices = []string{
		ServiceNodeRegistry,
		ServiceStateAdapter,
	}
)

// ContainerFactory assembles fail-closed service containers from a
// service catalog.
// PRINCIPLES:
// - SRP: Container assembly only; the catalog owns the declarations
// - OCP: New membership policies are new entry points, same primitive
type ContainerFactory struct {
	catalog *ServiceCatalog
	log     zerolog.Logger
}

// NewContainerFactory creates a factory over the given catalog.
func NewContainerFactory(catalog *ServiceCatalog, logger zerolog.Logger) *ContainerFactory {
	return &ContainerFactory{
		catalog: catalog,
		log:     logger.With().Str("component", "container_factory").Logger(),
	}
}

// CreateFromBundle assembles a container exposing exactly the bundle's
// required services, instantiated in the bundle's service load order so
// each service's dependencies are already materialized. Resolution of
// any undeclared name fails closed.
func (f *ContainerFactory) CreateFromBundle(b *bundle.Bundle) (*container.Container, error) {
	if b == nil {
		return nil, bundle.ErrNoNodes
	}

	order := b.ServiceLoadOrder
	if len(order) == 0 {
		// Legacy bundles carry no load order on disk; derive one from
		// the catalog's declared edges.
		analyzer := NewCatalogAnalyzer(f.catalog)
		_, derived, err := analyzer.Expand(b.RequiredServices)
		if err != nil {
			return nil, err
		}
		order = derived
	}

	c, err := f.assemble(order)
	if err != nil {
		return nil, err
	}
	c.SetAgents(b.RequiredAgents)

	metrics.IncContainersBuilt()
	f.log.Debug().
		Str("graph", b.GraphName).
		Int("services", len(order)).
		Msg("container assembled from bundle")
	return c, nil
}

// CreateFromRegistry builds a container whose resolvable set is exactly
// the keys of the given registry. This is the lowest-level primitive the
// other factory entry points are built on.
func (f *ContainerFactory) CreateFromRegistry(registry map[string]interface{}) *container.Container {
	c := container.New()
	for name, svc := range registry {
		c.Register(name, svc, nil)
	}
	return c
}

// CreateFullContainer assembles every service the catalog declares.
func (f *ContainerFactory) CreateFullContainer() (*container.Container, error) {
	var constructible []string
	for _, name := range f.catalog.ServiceNames() {
		if def, _ := f.catalog.Definition(name); def.New != nil {
			constructible = append(constructible, name)
		}
	}
	analyzer := NewCatalogAnalyzer(f.catalog)
	_, order, err := analyzer.Expand(constructible)
	if err != nil {
		return nil, err
	}
	return f.assemble(order)
}

// CreateScaffoldContainer assembles the fixed scaffolding membership.
func (f *ContainerFactory) CreateScaffoldContainer() (*container.Container, error) {
	return f.assembleFixed(scaffoldServices)
}

// CreateValidationContainer assembles the fixed validation membership.
func (f *ContainerFactory) CreateValidationContainer() (*container.Container, error) {
	return f.assembleFixed(validationServices)
}

func (f *ContainerFactory) assembleFixed(members []string) (*container.Container, error) {
	analyzer := NewCatalogAnalyzer(f.catalog)
	_, order, err := analyzer.Expand(members)
	if err != nil {
		return nil, err
	}
	return f.assemble(order)
}

// assemble materializes services in the given order. Every name must
// have a constructible catalog definition.
func (f *ContainerFactory) assemble(order []string) (*container.Container, error) {
	c := container.New()
	for _, name := range order {
		def, ok := f.catalog.Definition(name)
		if !ok || def.New == nil {
			return nil, fmt.Errorf("%w: %q", dto.ErrServiceNotInCatalog, name)
		}
		svc, err := def.New(c)
		if err != nil {
			return nil, fmt.Errorf("failed to build service %q: %w", name, err)
		}
		c.Register(name, svc, def.Requires)
	}
	return c, nil
}
