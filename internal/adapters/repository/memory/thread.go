package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
)

// ThreadStore implements thread.Store with thread-safe in-memory storage.
type ThreadStore struct {
	mu      sync.RWMutex
	threads map[string]*thread.Metadata
}

// NewThreadStore creates an empty in-memory thread store.
func NewThreadStore() *ThreadStore {
	return &ThreadStore{threads: make(map[string]*thread.Metadata)}
}

// Save persists metadata, replacing any existing record.
func (s *ThreadStore) Save(_ context.Context, meta *thread.Metadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *meta
	s.threads[meta.ThreadID] = &stored
	return nil
}

// Get returns the metadata for a thread, or thread.ErrThreadNotFound.
func (s *ThreadStore) Get(_ context.Context, threadID string) (*thread.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.threads[threadID]
	if !ok {
		return nil, thread.ErrThreadNotFound
	}
	out := *meta
	return &out, nil
}

// List returns all known thread metadata records in deterministic order.
func (s *ThreadStore) List(_ context.Context) ([]*thread.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.threads))
	for id := range s.threads {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*thread.Metadata, 0, len(ids))
	for _, id := range ids {
		copied := *s.threads[id]
		out = append(out, &copied)
	}
	return out, nil
}
