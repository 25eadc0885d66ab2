// Package memory provides in-memory implementations of the persistence
// contracts, suitable for tests and single-process usage.
package memory

import (
	"context"
	"sync"

	"github.com/jwwelbor/AgentMap-sub007/internal/core/storage"
)

// DocumentStore implements storage.DocumentStore over a map.
// PRINCIPLES:
// - KISS: Simple map with proper concurrency
// - DIP: Implements the storage.DocumentStore interface
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string][]byte)}
}

// Write persists data under the collection.
func (s *DocumentStore) Write(_ context.Context, collection string, data []byte, mode storage.WriteMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == storage.ModeAppend {
		existing := s.docs[collection]
		combined := make([]byte, 0, len(existing)+len(data))
		combined = append(combined, existing...)
		combined = append(combined, data...)
		s.docs[collection] = combined
		return nil
	}
	s.docs[collection] = append([]byte(nil), data...)
	return nil
}

// Read returns the collection's content, or storage.ErrNotFound.
func (s *DocumentStore) Read(_ context.Context, collection string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[collection]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}
