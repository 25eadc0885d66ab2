// Package checkpoint provides the core checkpoint domain entities and
// interfaces following Clean Architecture principles with zero external
// dependencies.
package checkpoint

import (
	"time"
)

// Record is one persisted snapshot of execution state for one thread at
// one point in time. Records are never mutated, only appended; multiple
// records may exist per thread.
// PRINCIPLES:
// - KISS: Simple struct with clear fields
// - SRP: Only responsible for checkpoint data structure
type Record struct {
	ID              string                      `json:"id"`
	ThreadID        string                      `json:"thread_id"`
	ChannelValues   map[string]interface{}      `json:"channel_values"`
	ChannelVersions map[string]int64            `json:"channel_versions,omitempty"`
	VersionsSeen    map[string]map[string]int64 `json:"versions_seen,omitempty"`
	Metadata        map[string]interface{}      `json:"metadata,omitempty"`
	// Seq is assigned by the store on append and increases monotonically
	// per thread; GetTuple ordering relies on it.
	Seq      int64     `json:"seq"`
	StoredAt time.Time `json:"stored_at"`
}

// Config identifies the execution line a record belongs to, optionally
// narrowed to one exact record.
type Config struct {
	ThreadID     string `json:"thread_id"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
}

// Validate ensures record integrity.
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrInvalidRecordID
	}
	if r.ThreadID == "" {
		return ErrInvalidThreadID
	}
	if r.ChannelValues == nil {
		return ErrNilChannelValues
	}
	return nil
}

// Validate ensures the config carries a thread identity.
func (c Config) Validate() error {
	if c.ThreadID == "" {
		return ErrInvalidThreadID
	}
	return nil
}
