package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
)

// ThreadStore implements thread.Store for SQLite. One row per thread ID;
// saves replace the existing row.
type ThreadStore struct {
	db *sql.DB
}

// NewThreadStore creates a SQLite thread-metadata store.
func NewThreadStore(db *sql.DB) *ThreadStore {
	return &ThreadStore{db: db}
}

// CreateTables creates the thread-metadata schema if it does not exist.
func (s *ThreadStore) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS threads (
			thread_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			bundle_info TEXT,
			checkpoint_data TEXT,
			interaction_request TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
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

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO threads (thread_id, status, bundle_info, checkpoint_data, interaction_request, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			status = excluded.status,
			bundle_info = excluded.bundle_info,
			checkpoint_data = excluded.checkpoint_data,
			interaction_request = excluded.interaction_request,
			updated_at = excluded.updated_at
	`, meta.ThreadID, string(meta.Status), string(bundleInfo), string(checkpointData), string(request),
		meta.CreatedAt.UnixNano(), meta.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save thread metadata: %w", err)
	}
	return nil
}

// Get returns the metadata for a thread, or thread.ErrThreadNotFound.
func (s *ThreadStore) Get(ctx context.Context, threadID string) (*thread.Metadata, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT thread_id, status, bundle_info, checkpoint_data, interaction_request, created_at, updated_at
		FROM threads WHERE thread_id = ?
	`, threadID)

	meta, err := scanThread(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, thread.ErrThreadNotFound
		}
		return nil, err
	}
	return meta, nil
}

// List returns all known thread metadata records.
func (s *ThreadStore) List(ctx context.Context) ([]*thread.Metadata, error) {
	rows, err := s.db.QueryContext(ctx, `
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

func scanThread(row rowScanner) (*thread.Metadata, error) {
	var meta thread.Metadata
	var status string
	var bundleInfo, checkpointData, request sql.NullString
	var createdAt, updatedAt int64

	if err := row.Scan(&meta.ThreadID, &status, &bundleInfo, &checkpointData, &request, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	meta.Status = thread.Status(status)
	if bundleInfo.Valid && bundleInfo.String != "null" {
		if err := json.Unmarshal([]byte(bundleInfo.String), &meta.BundleInfo); err != nil {
			return nil, fmt.Errorf("failed to deserialize bundle info: %w", err)
		}
	}
	if checkpointData.Valid && checkpointData.String != "null" {
		if err := json.Unmarshal([]byte(checkpointData.String), &meta.CheckpointData); err != nil {
			return nil, fmt.Errorf("failed to deserialize checkpoint data: %w", err)
		}
	}
	if request.Valid && request.String != "null" {
		if err := json.Unmarshal([]byte(request.String), &meta.InteractionRequest); err != nil {
			return nil, fmt.Errorf("failed to deserialize interaction request: %w", err)
		}
	}
	meta.CreatedAt = time.Unix(0, createdAt).UTC()
	meta.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &meta, nil
}
