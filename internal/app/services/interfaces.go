package services

import (
	"github.com/jwwelbor/AgentMap-sub007/internal/core/bundle"
)

// Requirements is the analysis result for one node set: the agent types
// the graph instantiates and the services those agents need directly.
type Requirements struct {
	Agents   []string `json:"agents"`
	Services []string `json:"services"`
}

// RequirementsAnalyzer derives the direct agent and service requirements
// of a compiled node set. Metadata bundles are unusable without this
// analysis path; a missing analyzer is a configuration error at
// bundle-build time, never a silent degradation.
type RequirementsAnalyzer interface {
	Analyze(nodes map[string]*bundle.Node) (Requirements, error)
}

// DependencyAnalyzer expands a set of directly required services into
// the full transitive closure plus a load order in which every
// service's dependencies appear before it.
type DependencyAnalyzer interface {
	Expand(services []string) (closure []string, order []string, err error)
}
