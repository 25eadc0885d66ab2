package dto

import (
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
)

// OutcomeKind discriminates the result of one executor step.
type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeSuspended OutcomeKind = "suspended"
	OutcomeFailed    OutcomeKind = "failed"
)

// StepOutcome is the explicit result variant returned by each executor
// step. Suspension is data, not a raised condition: the orchestration
// loop matches on Kind instead of unwinding the stack.
type StepOutcome struct {
	Kind OutcomeKind `json:"kind"`

	// State is set when Kind is OutcomeCompleted.
	State map[string]interface{} `json:"state,omitempty"`

	// Request and Checkpoint are set when Kind is OutcomeSuspended.
	Request    *thread.InteractionRequest `json:"request,omitempty"`
	Checkpoint *checkpoint.Record         `json:"checkpoint,omitempty"`

	// Err is set when Kind is OutcomeFailed.
	Err error `json:"-"`
}

// Completed builds a terminal success outcome.
func Completed(state map[string]interface{}) *StepOutcome {
	return &StepOutcome{Kind: OutcomeCompleted, State: state}
}

// Suspended builds an outcome carrying the pending interaction and the
// checkpoint snapshot taken at the suspension point.
func Suspended(req *thread.InteractionRequest, cp *checkpoint.Record) *StepOutcome {
	return &StepOutcome{Kind: OutcomeSuspended, Request: req, Checkpoint: cp}
}

// Failed builds a terminal failure outcome.
func Failed(err error) *StepOutcome {
	return &StepOutcome{Kind: OutcomeFailed, Err: err}
}

// Interruption is the payload an executor hands to the interaction
// handler when a node needs external input.
type Interruption struct {
	ThreadID       string                     `json:"thread_id"`
	Request        *thread.InteractionRequest `json:"request"`
	CheckpointData thread.CheckpointData      `json:"checkpoint_data"`
	// Checkpoint is the full snapshot to persist through the checkpoint
	// service; optional when the executor has already persisted one.
	Checkpoint *checkpoint.Record `json:"checkpoint,omitempty"`
}
