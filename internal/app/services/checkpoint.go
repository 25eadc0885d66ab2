package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
)

// PutResult reports the outcome of one checkpoint append. Storage
// failure is a result, not an error: checkpoint writes are expected to
// be retried by the executor, unlike bundle saves which are
// caller-fatal.
type PutResult struct {
	Success      bool   `json:"success"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Tuple is the read-side view of one checkpoint: the fully-qualified
// config, the record, and its metadata.
type Tuple struct {
	Config     checkpoint.Config      `json:"config"`
	Checkpoint *checkpoint.Record     `json:"checkpoint"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// CheckpointService implements the minimal checkpoint-saver contract
// against a pluggable record store.
// PRINCIPLES:
// - SRP: Append/read of execution snapshots only
// - DIP: Depends on checkpoint.Store abstraction
type CheckpointService struct {
	store checkpoint.Store
	log   zerolog.Logger
}

// NewCheckpointService creates a checkpoint service over a record store.
func NewCheckpointService(store checkpoint.Store, logger zerolog.Logger) *CheckpointService {
	return &CheckpointService{
		store: store,
		log:   logger.With().Str("component", "checkpoint_service").Logger(),
	}
}

// Put appends one record for the thread identified by config. The
// record keeps its ID when it has one, otherwise config.CheckpointID or
// a fresh UUID. For any sequence of Puts on one thread, GetTuple always
// reflects the most recently completed one.
func (s *CheckpointService) Put(ctx context.Context, cfg checkpoint.Config, record *checkpoint.Record, metadata map[string]interface{}) PutResult {
	if err := cfg.Validate(); err != nil {
		return PutResult{Success: false, Error: err.Error()}
	}
	if record == nil {
		return PutResult{Success: false, Error: checkpoint.ErrNilRecord.Error()}
	}

	stored := *record
	stored.ThreadID = cfg.ThreadID
	if stored.ID == "" {
		if cfg.CheckpointID != "" {
			stored.ID = cfg.CheckpointID
		} else {
			stored.ID = uuid.New().String()
		}
	}
	if stored.ChannelValues == nil {
		stored.ChannelValues = map[string]interface{}{}
	}
	if len(metadata) > 0 {
		merged := make(map[string]interface{}, len(stored.Metadata)+len(metadata))
		for k, v := range stored.Metadata {
			merged[k] = v
		}
		for k, v := range metadata {
			merged[k] = v
		}
		stored.Metadata = merged
	}
	stored.StoredAt = time.Now().UTC()

	if err := s.store.Append(ctx, &stored); err != nil {
		s.log.Warn().Err(err).Str("thread_id", cfg.ThreadID).Msg("checkpoint append failed")
		metrics.IncCheckpointFailures()
		return PutResult{Success: false, Error: err.Error()}
	}

	metrics.IncCheckpointsSaved()
	return PutResult{Success: true, CheckpointID: stored.ID}
}

// GetTuple returns the newest record for the config's thread identity,
// or the exact record when config.CheckpointID disambiguates. A thread
// with no checkpoints yields nil, not an error.
func (s *CheckpointService) GetTuple(ctx context.Context, cfg checkpoint.Config) (*Tuple, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var rec *checkpoint.Record
	var err error
	if cfg.CheckpointID != "" {
		rec, err = s.store.Get(ctx, cfg.ThreadID, cfg.CheckpointID)
	} else {
		rec, err = s.store.Latest(ctx, cfg.ThreadID)
	}
	if err != nil {
		if errors.Is(err, checkpoint.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &Tuple{
		Config:     checkpoint.Config{ThreadID: rec.ThreadID, CheckpointID: rec.ID},
		Checkpoint: rec,
		Metadata:   rec.Metadata,
	}, nil
}
