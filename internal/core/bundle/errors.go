// Package bundle defines domain-specific errors
package bundle

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	// Bundle errors
	ErrInvalidGraphName  = errors.New("invalid graph name")
	ErrNoNodes           = errors.New("bundle has no nodes")
	ErrNilNode           = errors.New("node cannot be nil")
	ErrNodeNameMismatch  = errors.New("node key does not match node name")
	ErrLoadOrderMismatch = errors.New("service load order does not cover required services")
	ErrUnknownFormat     = errors.New("unknown bundle format")

	// Node errors
	ErrInvalidNodeName  = errors.New("invalid node name")
	ErrInvalidAgentType = errors.New("invalid agent type")
	ErrConflictingEdges = errors.New("node declares both generic and success/failure edges")

	// Spec errors
	ErrEmptySpec     = errors.New("graph spec contains no graphs")
	ErrGraphNotFound = errors.New("graph not found in spec")
)
