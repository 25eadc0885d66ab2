// Package thread provides thread-metadata persistence interfaces
package thread

import (
	"context"
)

// Store is the persistence contract for thread metadata (DIP).
// PRINCIPLES:
// - ISP: Interface segregation with ≤5 methods
// - DIP: Core domain depends on interface, not implementations
//
// One record exists per thread ID. Save overwrites; the baseline
// contract assumes a single active writer per thread at a time.
// Concurrent resume attempts on the same thread are an open extension
// point: no locking or versioning protocol is defined here.
type Store interface {
	// Save persists metadata, replacing any existing record for the
	// same thread ID.
	Save(ctx context.Context, meta *Metadata) error

	// Get returns the metadata for a thread, or ErrThreadNotFound.
	Get(ctx context.Context, threadID string) (*Metadata, error)

	// List returns all known thread metadata records.
	List(ctx context.Context) ([]*Metadata, error)
}
