// Package postgres provides PostgreSQL-backed implementations of the
// persistence contracts, using pgx connection pools.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/pkg/serialization"
)

// CheckpointStore implements checkpoint.Store for PostgreSQL. Records
// are append-only rows ordered by a BIGSERIAL sequence.
type CheckpointStore struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
}

// NewCheckpointStore creates a PostgreSQL checkpoint store.
func NewCheckpointStore(pool *pgxpool.Pool, serializer *serialization.Serializer) *CheckpointStore {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &CheckpointStore{pool: pool, serializer: serializer}
}

// CreateTables creates the checkpoint schema if it does not exist.
func (s *CheckpointStore) CreateTables(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS checkpoints (
			seq BIGSERIAL PRIMARY KEY,
			id TEXT NOT NULL,
			thread_id TEXT NOT NULL,
			channel_values BYTEA NOT NULL,
			channel_versions JSONB,
			versions_seen JSONB,
			metadata JSONB,
			stored_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_checkpoints_thread ON checkpoints(thread_id, seq);
	`)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint tables: %w", err)
	}
	return nil
}

// Append persists one record and assigns its sequence number.
func (s *CheckpointStore) Append(ctx context.Context, record *checkpoint.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	values, err := s.serializer.Serialize(record.ChannelValues)
	if err != nil {
		return fmt.Errorf("failed to serialize channel values: %w", err)
	}
	versions, err := json.Marshal(record.ChannelVersions)
	if err != nil {
		return fmt.Errorf("failed to serialize channel versions: %w", err)
	}
	seen, err := json.Marshal(record.VersionsSeen)
	if err != nil {
		return fmt.Errorf("failed to serialize versions seen: %w", err)
	}
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO checkpoints (id, thread_id, channel_values, channel_versions, versions_seen, metadata, stored_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`, record.ID, record.ThreadID, values, versions, seen, metadata, record.StoredAt)
	if err := row.Scan(&record.Seq); err != nil {
		return fmt.Errorf("%w: %v", checkpoint.ErrAppendFailed, err)
	}
	return nil
}

// Latest returns the most recently appended record for the thread.
func (s *CheckpointStore) Latest(ctx context.Context, threadID string) (*checkpoint.Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT seq, id, thread_id, channel_values, channel_versions, versions_seen, metadata, stored_at
		FROM checkpoints WHERE thread_id = $1 ORDER BY seq DESC LIMIT 1
	`, threadID)
	return s.scan(row)
}

// Get returns the exact record identified by thread and record ID.
func (s *CheckpointStore) Get(ctx context.Context, threadID, recordID string) (*checkpoint.Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT seq, id, thread_id, channel_values, channel_versions, versions_seen, metadata, stored_at
		FROM checkpoints WHERE thread_id = $1 AND id = $2 ORDER BY seq DESC LIMIT 1
	`, threadID, recordID)
	return s.scan(row)
}

// ListByThread returns all records for a thread, oldest first.
func (s *CheckpointStore) ListByThread(ctx context.Context, threadID string) ([]*checkpoint.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT seq, id, thread_id, channel_values, channel_versions, versions_seen, metadata, stored_at
		FROM checkpoints WHERE thread_id = $1 ORDER BY seq ASC
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var out []*checkpoint.Record
	for rows.Next() {
		rec, err := s.scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *CheckpointStore) scan(row pgx.Row) (*checkpoint.Record, error) {
	rec, err := s.scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, checkpoint.ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *CheckpointStore) scanRow(row pgx.Row) (*checkpoint.Record, error) {
	var rec checkpoint.Record
	var values []byte
	var versions, seen, metadata []byte

	if err := row.Scan(&rec.Seq, &rec.ID, &rec.ThreadID, &values, &versions, &seen, &metadata, &rec.StoredAt); err != nil {
		return nil, err
	}

	rec.ChannelValues = make(map[string]interface{})
	if err := s.serializer.Deserialize(values, &rec.ChannelValues); err != nil {
		return nil, fmt.Errorf("failed to deserialize channel values: %w", err)
	}
	if len(versions) > 0 && string(versions) != "null" {
		if err := json.Unmarshal(versions, &rec.ChannelVersions); err != nil {
			return nil, fmt.Errorf("failed to deserialize channel versions: %w", err)
		}
	}
	if len(seen) > 0 && string(seen) != "null" {
		if err := json.Unmarshal(seen, &rec.VersionsSeen); err != nil {
			return nil, fmt.Errorf("failed to deserialize versions seen: %w", err)
		}
	}
	if len(metadata) > 0 && string(metadata) != "null" {
		if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("failed to deserialize metadata: %w", err)
		}
	}
	return &rec, nil
}
