// Package storage defines the pluggable document-store contract the
// bundle service persists through.
package storage

import (
	"context"
)

// WriteMode selects how a write is applied to a collection.
type WriteMode string

const (
	// ModeWrite replaces the collection's content.
	ModeWrite WriteMode = "write"
	// ModeAppend appends to the collection's content.
	ModeAppend WriteMode = "append"
)

// DocumentStore is a byte-oriented store addressed by collection name
// (a file path for the filesystem adapter).
// PRINCIPLES:
// - ISP: Two methods, nothing speculative
// - DIP: Callers depend on this interface, not a backend
//
// All calls are blocking I/O against the backend; callers must never
// invoke them while holding an in-process lock.
type DocumentStore interface {
	// Write persists data under the collection. Failure is returned,
	// never swallowed.
	Write(ctx context.Context, collection string, data []byte, mode WriteMode) error

	// Read returns the collection's content, or ErrNotFound when the
	// collection does not exist.
	Read(ctx context.Context, collection string) ([]byte, error)
}
