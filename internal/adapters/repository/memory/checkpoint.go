package memory

import (
	"context"
	"sync"

	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
)

// CheckpointStore implements checkpoint.Store with thread-safe in-memory
// storage. Records for distinct threads live in independent slices, so
// operations on different threads never contend beyond the map lookup.
type CheckpointStore struct {
	mu      sync.RWMutex
	byID    map[string]map[string]*checkpoint.Record
	records map[string][]*checkpoint.Record
	seq     int64
}

// NewCheckpointStore creates an empty in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{
		byID:    make(map[string]map[string]*checkpoint.Record),
		records: make(map[string][]*checkpoint.Record),
	}
}

// Append persists one record and assigns its sequence number.
func (s *CheckpointStore) Append(_ context.Context, record *checkpoint.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	stored := *record
	stored.Seq = s.seq
	record.Seq = s.seq

	s.records[stored.ThreadID] = append(s.records[stored.ThreadID], &stored)
	if s.byID[stored.ThreadID] == nil {
		s.byID[stored.ThreadID] = make(map[string]*checkpoint.Record)
	}
	s.byID[stored.ThreadID][stored.ID] = &stored
	return nil
}

// Latest returns the most recently appended record for the thread.
func (s *CheckpointStore) Latest(_ context.Context, threadID string) (*checkpoint.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[threadID]
	if len(recs) == 0 {
		return nil, checkpoint.ErrRecordNotFound
	}
	out := *recs[len(recs)-1]
	return &out, nil
}

// Get returns the exact record identified by thread and record ID.
func (s *CheckpointStore) Get(_ context.Context, threadID, recordID string) (*checkpoint.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[threadID][recordID]
	if !ok {
		return nil, checkpoint.ErrRecordNotFound
	}
	out := *rec
	return &out, nil
}

// ListByThread returns all records for a thread, oldest first.
func (s *CheckpointStore) ListByThread(_ context.Context, threadID string) ([]*checkpoint.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[threadID]
	out := make([]*checkpoint.Record, len(recs))
	for i, rec := range recs {
		copied := *rec
		out[i] = &copied
	}
	return out, nil
}
