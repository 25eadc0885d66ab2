package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
)

// ThreadStore implements thread.Store for PostgreSQL.
type ThreadStore struct {
	pool *pgxpool.Pool
}

// NewThreadStore creates a PostgreSQL thread-metadata store.
func NewThreadStore(pool *pgxpool.Pool) *ThreadStore {
	return &ThreadStore{pool: pool}
}

// CreateTables creates the thread-metadata schema if it does not exist.
func (s *ThreadStore) CreateTables(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS threads (
			thread_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			bundle_info JSONB,
			checkpoint_data JSONB,
			interaction_request JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create thread tables: %w", err)
	}
	return nil
}

// Save persists metadata, replacing any existing record.
func (s *ThreadStore) Save(ctx context.Context, meta *thread.Metadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}

	bundleInfo, err := json.Marshal(meta.BundleInfo)
	if err != nil {
		return fmt.Errorf("failed to serialize bundle info: %w", err)
	}
	checkpointData, err := json.Marshal(meta.CheckpointData)
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint data: %w", err)
	}
	request, err := json.Marshal(meta.InteractionRequest)
	if err != nil {
		return fmt.Errorf("failed to serialize interaction request: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO threads (thread_id, status, bundle_info, checkpoint_data, interaction_request, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (thread_id) DO UPDATE SET
			status = EXCLUDED.status,
			bundle_info = EXCLUDED.bundle_info,
			checkpoint_data = EXCLUDED.checkpoint_data,
			interaction_request = EXCLUDED.interaction_request,
			updated_at = EXCLUDED.updated_at
	`, meta.ThreadID, string(meta.Status), bundleInfo, checkpointData, request, meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save thread metadata: %w", err)
	}
	return nil
}

// Get returns the metadata for a thread, or thread.ErrThreadNotFound.
func (s *ThreadStore) Get(ctx context.Context, threadID string) (*thread.Metadata, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT thread_id, status, bundle_info, checkpoint_data, interaction_request, created_at, updated_at
		FROM threads WHERE thread_id = $1
	`, threadID)

	meta, err := scanThread(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, thread.ErrThreadNotFound
		}
		return nil, err
	}
	return meta, nil
}

// List returns all known thread metadata records.
func (s *ThreadStore) List(ctx context.Context) ([]*thread.Metadata, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT thread_id, status, bundle_info, checkpoint_data, interaction_request, created_at, updated_at
		FROM threads ORDER BY thread_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	defer rows.Close()

	var out []*thread.Metadata
	for rows.Next() {
		meta, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

func scanThread(row pgx.Row) (*thread.Metadata, error) {
	var meta thread.Metadata
	var status string
	var bundleInfo, checkpointData, request []byte

	if err := row.Scan(&meta.ThreadID, &status, &bundleInfo, &checkpointData, &request, &meta.CreatedAt, &meta.UpdatedAt); err != nil {
		return nil, err
	}

	meta.Status = thread.Status(status)
	if len(bundleInfo) > 0 && string(bundleInfo) != "null" {
		if err := json.Unmarshal(bundleInfo, &meta.BundleInfo); err != nil {
			return nil, fmt.Errorf("failed to deserialize bundle info: %w", err)
		}
	}
	if len(checkpointData) > 0 && string(checkpointData) != "null" {
		if err := json.Unmarshal(checkpointData, &meta.CheckpointData); err != nil {
			return nil, fmt.Errorf("failed to deserialize checkpoint data: %w", err)
		}
	}
	if len(request) > 0 && string(request) != "null" {
		if err := json.Unmarshal(request, &meta.InteractionRequest); err != nil {
			return nil, fmt.Errorf("failed to deserialize interaction request: %w", err)
		}
	}
	return &meta, nil
}
