package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jwwelbor/AgentMap-sub007/internal/app/dto"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/bundle"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/storage"
	"github.com/jwwelbor/AgentMap-sub007/internal/infrastructure/metrics"
	"github.com/jwwelbor/AgentMap-sub007/pkg/serialization"
	"github.com/rs/zerolog"
)

// BundleService builds, persists, loads, and validates bundles against
// source content hashes.
// PRINCIPLES:
// - SRP: Bundle lifecycle only; container assembly lives elsewhere
// - DIP: Depends on storage.DocumentStore and analyzer abstractions
type BundleService struct {
	store        storage.DocumentStore
	serializer   *serialization.Serializer
	requirements RequirementsAnalyzer
	dependencies DependencyAnalyzer
	log          zerolog.Logger
}

// NewBundleService creates a bundle service. Either analyzer may be nil;
// metadata bundle creation then fails with a configuration error.
func NewBundleService(
	store storage.DocumentStore,
	serializer *serialization.Serializer,
	requirements RequirementsAnalyzer,
	dependencies DependencyAnalyzer,
	logger zerolog.Logger,
) *BundleService {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &BundleService{
		store:        store,
		serializer:   serializer,
		requirements: requirements,
		dependencies: dependencies,
		log:          logger.With().Str("component", "bundle_service").Logger(),
	}
}

// CreateMetadataBundleFromSpec compiles a parsed node-spec collection
// into a metadata bundle for one graph.
func (s *BundleService) CreateMetadataBundleFromSpec(spec *bundle.GraphSpec, graphName, csvHash string) (*bundle.Bundle, error) {
	if spec == nil || len(spec.Graphs) == 0 {
		return nil, bundle.ErrEmptySpec
	}

	if graphName == "" {
		names := make([]string, 0, len(spec.Graphs))
		for name := range spec.Graphs {
			names = append(names, name)
		}
		sort.Strings(names)
		graphName = names[0]
	}

	nodeSpecs, ok := spec.Graphs[graphName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", bundle.ErrGraphNotFound, graphName)
	}

	nodes := make(map[string]*bundle.Node, len(nodeSpecs))
	for _, ns := range nodeSpecs {
		node, err := bundle.CompileNode(ns)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", ns.Name, err)
		}
		if _, dup := nodes[node.Name]; dup {
			return nil, fmt.Errorf("node %q: %w", node.Name, bundle.ErrNodeNameMismatch)
		}
		nodes[node.Name] = node
	}

	return s.CreateMetadataBundleFromNodes(nodes, graphName, csvHash)
}

// CreateMetadataBundleFromNodes builds a metadata bundle from already
// compiled nodes: requirement analysis, then dependency expansion into
// the full service closure plus a load order.
func (s *BundleService) CreateMetadataBundleFromNodes(nodes map[string]*bundle.Node, graphName, csvHash string) (*bundle.Bundle, error) {
	if s.requirements == nil || s.dependencies == nil {
		return nil, fmt.Errorf("%w: metadata bundles require both analyzers", dto.ErrAnalyzerMissing)
	}
	if len(nodes) == 0 {
		return nil, bundle.ErrNoNodes
	}

	reqs, err := s.requirements.Analyze(nodes)
	if err != nil {
		return nil, fmt.Errorf("requirements analysis failed: %w", err)
	}

	closure, order, err := s.dependencies.Expand(reqs.Services)
	if err != nil {
		return nil, fmt.Errorf("dependency expansion failed: %w", err)
	}

	b := &bundle.Bundle{
		GraphName:        graphName,
		Nodes:            nodes,
		RequiredAgents:   reqs.Agents,
		RequiredServices: closure,
		ServiceLoadOrder: order,
		CSVHash:          csvHash,
		Format:           bundle.FormatMetadata,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	metrics.IncBundlesBuilt()
	s.log.Debug().
		Str("graph", graphName).
		Str("csv_hash", csvHash).
		Int("services", len(closure)).
		Msg("metadata bundle built")
	return b, nil
}

// bundleDocument is the canonical on-disk shape of a metadata bundle.
// It intentionally omits the load order: the order is recomputed through
// the dependency analyzer on load.
type bundleDocument struct {
	Format           bundle.Format           `json:"format"`
	GraphName        string                  `json:"graph_name"`
	Nodes            map[string]*bundle.Node `json:"nodes"`
	RequiredAgents   []string                `json:"required_agents"`
	RequiredServices []string                `json:"required_services"`
	FunctionMappings map[string]string       `json:"function_mappings,omitempty"`
	CSVHash          string                  `json:"csv_hash"`
	VersionHash      *string                 `json:"version_hash"`
}

// legacyEnvelope is the opaque binary shape of old bundle files.
type legacyEnvelope struct {
	Graph        string                  `msgpack:"graph"`
	NodeRegistry map[string]*bundle.Node `msgpack:"node_registry"`
	VersionHash  string                  `msgpack:"version_hash"`
}

// SaveBundle persists a bundle at path. Write failure is returned to the
// caller, never swallowed: a failed save must be visible.
func (s *BundleService) SaveBundle(ctx context.Context, b *bundle.Bundle, path string) error {
	if b == nil {
		return bundle.ErrNoNodes
	}

	var data []byte
	var err error
	switch b.Format {
	case bundle.FormatLegacy:
		data, err = s.serializer.Serialize(legacyEnvelope{
			Graph:        b.GraphName,
			NodeRegistry: b.Nodes,
			VersionHash:  b.VersionHash,
		})
		if err != nil {
			return fmt.Errorf("failed to encode legacy bundle: %w", err)
		}
	case bundle.FormatMetadata, "":
		doc := bundleDocument{
			Format:           bundle.FormatMetadata,
			GraphName:        b.GraphName,
			Nodes:            b.Nodes,
			RequiredAgents:   b.RequiredAgents,
			RequiredServices: b.RequiredServices,
			FunctionMappings: b.FunctionMappings,
			CSVHash:          b.CSVHash,
		}
		data, err = json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode bundle document: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", bundle.ErrUnknownFormat, b.Format)
	}

	if err := s.store.Write(ctx, path, data, storage.ModeWrite); err != nil {
		return fmt.Errorf("failed to write bundle %q: %w", path, err)
	}
	b.BundlePath = path
	metrics.IncBundlesSaved()
	return nil
}

// LoadBundle reads a bundle from path, detecting its on-disk shape. Any
// failure (missing file, decode error, missing analyzer for the metadata
// path) is logged and reported as a nil bundle: load failures are
// expected to fall back to recompilation, unlike save failures.
func (s *BundleService) LoadBundle(ctx context.Context, path string) (*bundle.Bundle, error) {
	data, err := s.store.Read(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Debug().Str("path", path).Msg("bundle file not found")
		} else {
			s.log.Warn().Err(err).Str("path", path).Msg("bundle read failed")
		}
		return nil, nil
	}

	b, err := s.decodeBundle(data)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("bundle decode failed")
		return nil, nil
	}
	b.BundlePath = path
	metrics.IncBundlesLoaded()
	return b, nil
}

func (s *BundleService) decodeBundle(data []byte) (*bundle.Bundle, error) {
	if len(data) > 0 && data[0] == '{' {
		var doc bundleDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("metadata document decode failed: %w", err)
		}
		if doc.Format != bundle.FormatMetadata {
			return nil, fmt.Errorf("%w: %q", bundle.ErrUnknownFormat, doc.Format)
		}
		if s.dependencies == nil {
			return nil, fmt.Errorf("%w: cannot derive load order on load", dto.ErrAnalyzerMissing)
		}
		closure, order, err := s.dependencies.Expand(doc.RequiredServices)
		if err != nil {
			return nil, fmt.Errorf("load-order derivation failed: %w", err)
		}
		return &bundle.Bundle{
			GraphName:        doc.GraphName,
			Nodes:            doc.Nodes,
			RequiredAgents:   doc.RequiredAgents,
			RequiredServices: closure,
			ServiceLoadOrder: order,
			FunctionMappings: doc.FunctionMappings,
			CSVHash:          doc.CSVHash,
			Format:           bundle.FormatMetadata,
		}, nil
	}

	var env legacyEnvelope
	if err := s.serializer.Deserialize(data, &env); err != nil {
		return nil, fmt.Errorf("legacy blob decode failed: %w", err)
	}
	return &bundle.Bundle{
		GraphName:   env.Graph,
		Nodes:       env.NodeRegistry,
		VersionHash: env.VersionHash,
		Format:      bundle.FormatLegacy,
	}, nil
}

// VerifyCSV reports whether csvContent still matches the hash the bundle
// was built from. This is the sole cache-invalidation check and costs
// one hash computation, never a diff.
func (s *BundleService) VerifyCSV(b *bundle.Bundle, csvContent []byte) bool {
	if b == nil {
		return false
	}
	return bundle.HashContent(csvContent) == b.SourceHash()
}

// ValidateBundle is VerifyCSV that tolerates a nil bundle, for callers
// holding the nil result of a failed load.
func (s *BundleService) ValidateBundle(b *bundle.Bundle, csvContent []byte) bool {
	if b == nil {
		return false
	}
	return s.VerifyCSV(b, csvContent)
}
