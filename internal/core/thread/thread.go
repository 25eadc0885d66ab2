// Package thread provides the core entities for resumable execution
// lines: durable thread metadata and the interaction requests a paused
// thread waits on.
package thread

import (
	"time"
)

// Status is the persisted lifecycle state of an interrupted thread.
// There is no RUNNING state: absence of a metadata record means the
// thread has never been interrupted.
type Status string

const (
	StatusPaused    Status = "PAUSED"
	StatusResuming  Status = "RESUMING"
	StatusCompleted Status = "COMPLETED"
)

// CheckpointData is the execution summary captured alongside an
// interruption: the inputs in flight, the node that raised it, and a
// serialized execution-tracker snapshot.
type CheckpointData struct {
	Inputs           map[string]interface{} `json:"inputs,omitempty"`
	NodeName         string                 `json:"node_name"`
	ExecutionTracker map[string]interface{} `json:"execution_tracker,omitempty"`
}

// Metadata is the durable record of one interrupted thread.
// PRINCIPLES:
// - SRP: Only responsible for thread lifecycle data
// - KISS: Plain struct, transitions live in the interaction handler
//
// Created only by an interruption; mutated only by the two explicit
// transition operations. Retention/deletion is a collaborator policy.
type Metadata struct {
	ThreadID           string                 `json:"thread_id"`
	Status             Status                 `json:"status"`
	BundleInfo         map[string]interface{} `json:"bundle_info,omitempty"`
	CheckpointData     CheckpointData         `json:"checkpoint_data"`
	InteractionRequest *InteractionRequest    `json:"interaction_request,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// Validate ensures metadata integrity.
func (m *Metadata) Validate() error {
	if m.ThreadID == "" {
		return ErrInvalidThreadID
	}
	switch m.Status {
	case StatusPaused, StatusResuming, StatusCompleted:
	default:
		return ErrInvalidStatus
	}
	return nil
}
