package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/container"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/storage"
	"github.com/jwwelbor/AgentMap-sub007/pkg/serialization"
	"github.com/rs/zerolog"
)

// Standard service names wired by the default catalog. Agent-facing
// services such as "llm_service" are boundary collaborators: hosts
// register their own definitions for them.
const (
	ServiceStateAdapter     = "state_adapter"
	ServiceExecutionTracker = "execution_tracker"
	ServicePromptService    = "prompt_service"
	ServiceSerialization    = "serialization"
	ServiceCheckpoints      = "checkpoint_service"
	ServiceStorage          = "storage_service"
	ServiceCSVStorage       = "csv_storage"
	ServiceJSONStorage      = "json_storage"
	ServiceNodeRegistry     = "node_registry"
	ServiceFunctionResolver = "function_resolution"
	ServiceLLM              = "llm_service"
)

// StateAdapter merges node outputs into channel state without mutating
// the caller's map.
type StateAdapter struct{}

// Apply returns a new state with updates merged over base.
func (a *StateAdapter) Apply(base, updates map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(updates))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	return merged
}

// ExecutionTracker records node visits for one execution line. Its
// snapshot is what interruptions carry into thread metadata.
type ExecutionTracker struct {
	mu     sync.Mutex
	visits []string
}

// Track records that a node ran.
func (t *ExecutionTracker) Track(nodeName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visits = append(t.visits, nodeName)
}

// Snapshot returns a serializable view of the tracker.
func (t *ExecutionTracker) Snapshot() map[string]interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return map[string]interface{}{
		"visits": append([]string(nil), t.visits...),
		"count":  len(t.visits),
	}
}

// Restore rebuilds tracker state from a snapshot.
func (t *ExecutionTracker) Restore(snapshot map[string]interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visits = nil
	visits, _ := snapshot["visits"].([]string)
	if visits == nil {
		if raw, ok := snapshot["visits"].([]interface{}); ok {
			for _, v := range raw {
				if s, ok := v.(string); ok {
					visits = append(visits, s)
				}
			}
		}
	}
	t.visits = append(t.visits, visits...)
}

// PromptService renders node prompts by substituting {name} placeholders
// with input values.
type PromptService struct{}

// Render substitutes placeholders in prompt from values.
func (p *PromptService) Render(prompt string, values map[string]interface{}) string {
	out := prompt
	for k, v := range values {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return out
}

// NodeRegistry maps function names referenced by graph definitions to
// resolvable identifiers. It backs function_mappings resolution.
type NodeRegistry struct {
	mu       sync.RWMutex
	mappings map[string]string
}

// NewNodeRegistry creates an empty registry.
func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{mappings: make(map[string]string)}
}

// Bind registers a function mapping.
func (r *NodeRegistry) Bind(name, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings[name] = target
}

// Lookup resolves a function name.
func (r *NodeRegistry) Lookup(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target, ok := r.mappings[name]
	return target, ok
}

// collectionStore is a thin typed view over the document store for one
// storage kind (csv, json).
type collectionStore struct {
	store  storage.DocumentStore
	prefix string
}

// Infrastructure bundles the concrete backends the default catalog wires
// into service definitions.
type Infrastructure struct {
	Serializer  *serialization.Serializer
	Checkpoints checkpoint.Store
	Documents   storage.DocumentStore
	Logger      zerolog.Logger
}

// DefaultCatalog builds the standard AgentMap service catalog over the
// given infrastructure. Agent-facing services (llm_service) are left to
// the host; building a container for a bundle that requires them fails
// closed until the host registers a definition.
func DefaultCatalog(infra Infrastructure) (*ServiceCatalog, error) {
	sc := NewServiceCatalog()

	defs := []ServiceDefinition{
		{Name: ServiceStateAdapter, New: func(*container.Container) (interface{}, error) {
			return &StateAdapter{}, nil
		}},
		{Name: ServiceExecutionTracker, Requires: []string{ServiceStateAdapter}, New: func(*container.Container) (interface{}, error) {
			return &ExecutionTracker{}, nil
		}},
		{Name: ServicePromptService, New: func(*container.Container) (interface{}, error) {
			return &PromptService{}, nil
		}},
		{Name: ServiceSerialization, New: func(*container.Container) (interface{}, error) {
			return infra.Serializer, nil
		}},
		{Name: ServiceCheckpoints, Requires: []string{ServiceSerialization}, New: func(*container.Container) (interface{}, error) {
			return NewCheckpointService(infra.Checkpoints, infra.Logger), nil
		}},
		{Name: ServiceStorage, New: func(*container.Container) (interface{}, error) {
			return infra.Documents, nil
		}},
		{Name: ServiceCSVStorage, Requires: []string{ServiceStorage}, New: func(*container.Container) (interface{}, error) {
			return &collectionStore{store: infra.Documents, prefix: "csv"}, nil
		}},
		{Name: ServiceJSONStorage, Requires: []string{ServiceStorage}, New: func(*container.Container) (interface{}, error) {
			return &collectionStore{store: infra.Documents, prefix: "json"}, nil
		}},
		{Name: ServiceNodeRegistry, New: func(*container.Container) (interface{}, error) {
			return NewNodeRegistry(), nil
		}},
		{Name: ServiceFunctionResolver, Requires: []string{ServiceNodeRegistry}, New: func(c *container.Container) (interface{}, error) {
			reg, err := c.Resolve(ServiceNodeRegistry)
			if err != nil {
				return nil, err
			}
			return reg, nil
		}},
	}
	for _, def := range defs {
		if err := sc.RegisterService(def); err != nil {
			return nil, err
		}
	}

	// llm_service is a boundary collaborator: declared so requirement
	// analysis sees its dependency edges, constructible only once the
	// host replaces the definition with a real client.
	if err := sc.RegisterService(ServiceDefinition{
		Name:     ServiceLLM,
		Requires: []string{ServicePromptService},
	}); err != nil {
		return nil, err
	}

	sc.SetBaseServices(ServiceExecutionTracker, ServiceStateAdapter)

	sc.RegisterAgent("default")
	sc.RegisterAgent("echo")
	sc.RegisterAgent("input")
	sc.RegisterAgent("branching", ServiceFunctionResolver)
	sc.RegisterAgent("openai", ServiceLLM, ServicePromptService)
	sc.RegisterAgent("anthropic", ServiceLLM, ServicePromptService)
	sc.RegisterAgent("gemini", ServiceLLM, ServicePromptService)
	sc.RegisterAgent("csv_reader", ServiceCSVStorage)
	sc.RegisterAgent("csv_writer", ServiceCSVStorage)
	sc.RegisterAgent("json_reader", ServiceJSONStorage)
	sc.RegisterAgent("json_writer", ServiceJSONStorage)

	return sc, nil
}
