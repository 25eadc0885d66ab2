// Package checkpoint provides checkpoint persistence interfaces
package checkpoint

import (
	"context"
)

// Store is the append-style persistence contract for checkpoint records
// (DIP - Dependency Inversion).
// PRINCIPLES:
// - ISP: Interface segregation with ≤5 methods
// - DIP: Core domain depends on interface, not implementations
//
// Operations on distinct thread IDs are fully independent and must not
// block one another. Implementations must never hold an in-process lock
// across blocking I/O.
type Store interface {
	// Append persists one record and assigns its sequence number.
	Append(ctx context.Context, record *Record) error

	// Latest returns the most recently appended record for the thread,
	// or ErrRecordNotFound when the thread has no records.
	Latest(ctx context.Context, threadID string) (*Record, error)

	// Get returns the exact record identified by thread and record ID,
	// or ErrRecordNotFound.
	Get(ctx context.Context, threadID, recordID string) (*Record, error)

	// ListByThread returns all records for a thread, oldest first.
	ListByThread(ctx context.Context, threadID string) ([]*Record, error)
}
