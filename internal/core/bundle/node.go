// Package bundle provides node definitions
package bundle

// Edge condition labels used by compiled nodes.
const (
	EdgeDefault = "default"
	EdgeSuccess = "success"
	EdgeFailure = "failure"
)

// Node represents one compiled vertex of a graph definition.
// PRINCIPLES:
// - KISS: Simple node representation
// - SRP: Only responsible for node data
type Node struct {
	Name        string            `json:"name"`
	AgentType   string            `json:"agent_type"`
	Context     string            `json:"context,omitempty"`
	Inputs      []string          `json:"inputs,omitempty"`
	Output      string            `json:"output,omitempty"`
	Prompt      string            `json:"prompt,omitempty"`
	Description string            `json:"description,omitempty"`
	// Edges maps a condition label to a target node name. Labels are
	// unique by construction of the map type.
	Edges map[string]string `json:"edges,omitempty"`
}

// NodeSpec is one row of a parsed graph definition, before compilation.
// The textual parser producing these lives outside this module; the spec
// collection is its boundary type.
type NodeSpec struct {
	Name        string
	AgentType   string
	Context     string
	Inputs      []string
	Output      string
	Prompt      string
	Description string
	// Edge is the generic next-node routing target. It is mutually
	// exclusive with SuccessNext/FailureNext; declaring both is a
	// build-time validation error, not a runtime one.
	Edge        string
	SuccessNext string
	FailureNext string
}

// GraphSpec is a parsed node-spec collection, one entry per graph name.
type GraphSpec struct {
	Graphs map[string][]NodeSpec
}

// Validate ensures node integrity.
func (n *Node) Validate() error {
	if n.Name == "" {
		return ErrInvalidNodeName
	}
	if n.AgentType == "" {
		return ErrInvalidAgentType
	}
	return nil
}

// CompileNode converts a parsed node spec into a compiled Node,
// rejecting conflicting routing declarations.
func CompileNode(spec NodeSpec) (*Node, error) {
	if spec.Edge != "" && (spec.SuccessNext != "" || spec.FailureNext != "") {
		return nil, ErrConflictingEdges
	}

	n := &Node{
		Name:        spec.Name,
		AgentType:   spec.AgentType,
		Context:     spec.Context,
		Inputs:      spec.Inputs,
		Output:      spec.Output,
		Prompt:      spec.Prompt,
		Description: spec.Description,
	}

	edges := make(map[string]string)
	if spec.Edge != "" {
		edges[EdgeDefault] = spec.Edge
	}
	if spec.SuccessNext != "" {
		edges[EdgeSuccess] = spec.SuccessNext
	}
	if spec.FailureNext != "" {
		edges[EdgeFailure] = spec.FailureNext
	}
	if len(edges) > 0 {
		n.Edges = edges
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}
