// Package bundle provides the core compiled-graph domain entities
// following Clean Architecture principles with zero external dependencies.
package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// Format identifies the on-disk shape of a persisted bundle.
type Format string

const (
	// FormatMetadata is the current structured-document form.
	FormatMetadata Format = "metadata"
	// FormatLegacy is the opaque binary form kept for old bundle files.
	FormatLegacy Format = "legacy"
)

// Bundle is the compiled, content-hashed representation of a graph plus
// the minimal set of runtime services it needs.
// PRINCIPLES:
// - KISS: Plain data, no behavior beyond validation and lookups
// - SRP: Only responsible for the compiled-graph structure, not execution
//
// A Bundle is immutable once built. A new instance is built whenever the
// source content hash changes; consumers never mutate one in place.
type Bundle struct {
	GraphName        string              `json:"graph_name"`
	Nodes            map[string]*Node    `json:"nodes"`
	RequiredAgents   []string            `json:"required_agents"`
	RequiredServices []string            `json:"required_services"`
	// ServiceLoadOrder is a total order over exactly RequiredServices,
	// each entry's dependencies appearing earlier. It is computed once at
	// bundle-build time and never re-derived by consumers.
	ServiceLoadOrder []string            `json:"service_load_order,omitempty"`
	FunctionMappings map[string]string   `json:"function_mappings,omitempty"`
	CSVHash          string              `json:"csv_hash"`
	VersionHash      string              `json:"version_hash,omitempty"`
	Format           Format              `json:"format"`

	// BundlePath and CSVPath record where the bundle came from. They are
	// set by save/load and carried into thread metadata on interruption,
	// never serialized into the bundle document itself.
	BundlePath string `json:"-"`
	CSVPath    string `json:"-"`
}

// Validate ensures bundle integrity.
func (b *Bundle) Validate() error {
	if b.GraphName == "" {
		return ErrInvalidGraphName
	}
	if len(b.Nodes) == 0 {
		return ErrNoNodes
	}
	for name, n := range b.Nodes {
		if n == nil {
			return ErrNilNode
		}
		if n.Name != name {
			return ErrNodeNameMismatch
		}
		if err := n.Validate(); err != nil {
			return err
		}
	}
	if len(b.ServiceLoadOrder) > 0 {
		if err := b.validateLoadOrder(); err != nil {
			return err
		}
	}
	return nil
}

// validateLoadOrder checks that ServiceLoadOrder is a total order over
// exactly RequiredServices.
func (b *Bundle) validateLoadOrder() error {
	if len(b.ServiceLoadOrder) != len(b.RequiredServices) {
		return ErrLoadOrderMismatch
	}
	required := make(map[string]bool, len(b.RequiredServices))
	for _, s := range b.RequiredServices {
		required[s] = true
	}
	seen := make(map[string]bool, len(b.ServiceLoadOrder))
	for _, s := range b.ServiceLoadOrder {
		if !required[s] || seen[s] {
			return ErrLoadOrderMismatch
		}
		seen[s] = true
	}
	return nil
}

// NodeNames returns the node names in deterministic order.
func (b *Bundle) NodeNames() []string {
	names := make([]string, 0, len(b.Nodes))
	for name := range b.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasService reports whether name is part of the bundle's service closure.
func (b *Bundle) HasService(name string) bool {
	for _, s := range b.RequiredServices {
		if s == name {
			return true
		}
	}
	return false
}

// SourceHash returns the content hash the bundle was built from,
// regardless of on-disk format.
func (b *Bundle) SourceHash() string {
	if b.Format == FormatLegacy {
		return b.VersionHash
	}
	return b.CSVHash
}

// HashContent computes the deterministic content fingerprint used for
// change detection and cache invalidation. Not a security primitive.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
