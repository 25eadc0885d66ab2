// Package sqlite provides SQLite-backed implementations of the
// persistence contracts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/pkg/serialization"
	_ "modernc.org/sqlite"
)

// CheckpointStore implements checkpoint.Store for SQLite. Records are
// append-only rows; the AUTOINCREMENT sequence provides the monotonic
// ordering GetTuple relies on.
type CheckpointStore struct {
	db         *sql.DB
	serializer *serialization.Serializer
}

// NewCheckpointStore creates a SQLite checkpoint store.
func NewCheckpointStore(db *sql.DB, serializer *serialization.Serializer) *CheckpointStore {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &CheckpointStore{db: db, serializer: serializer}
}

// CreateTables creates the checkpoint schema if it does not exist.
func (s *CheckpointStore) CreateTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS checkpoints (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			thread_id TEXT NOT NULL,
			channel_values BLOB NOT NULL,
			channel_versions TEXT,
			versions_seen TEXT,
			metadata TEXT,
			stored_at INTEGER NOT NULL
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

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (id, thread_id, channel_values, channel_versions, versions_seen, metadata, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.ThreadID, values, string(versions), string(seen), string(metadata), record.StoredAt.UnixNano())
	if err != nil {
		return fmt.Errorf("%w: %v", checkpoint.ErrAppendFailed, err)
	}
	if seq, err := res.LastInsertId(); err == nil {
		record.Seq = seq
	}
	return nil
}

// Latest returns the most recently appended record for the thread.
func (s *CheckpointStore) Latest(ctx context.Context, threadID string) (*checkpoint.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, id, thread_id, channel_values, channel_versions, versions_seen, metadata, stored_at
		FROM checkpoints WHERE thread_id = ? ORDER BY seq DESC LIMIT 1
	`, threadID)
	return s.scan(row)
}

// Get returns the exact record identified by thread and record ID.
func (s *CheckpointStore) Get(ctx context.Context, threadID, recordID string) (*checkpoint.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT seq, id, thread_id, channel_values, channel_versions, versions_seen, metadata, stored_at
		FROM checkpoints WHERE thread_id = ? AND id = ? ORDER BY seq DESC LIMIT 1
	`, threadID, recordID)
	return s.scan(row)
}

// ListByThread returns all records for a thread, oldest first.
func (s *CheckpointStore) ListByThread(ctx context.Context, threadID string) ([]*checkpoint.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, thread_id, channel_values, channel_versions, versions_seen, metadata, stored_at
		FROM checkpoints WHERE thread_id = ? ORDER BY seq ASC
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *CheckpointStore) scan(row *sql.Row) (*checkpoint.Record, error) {
	rec, err := s.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, checkpoint.ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *CheckpointStore) scanRow(row rowScanner) (*checkpoint.Record, error) {
	var rec checkpoint.Record
	var values []byte
	var versions, seen, metadata sql.NullString
	var storedAt int64

	if err := row.Scan(&rec.Seq, &rec.ID, &rec.ThreadID, &values, &versions, &seen, &metadata, &storedAt); err != nil {
		return nil, err
	}

	rec.ChannelValues = make(map[string]interface{})
	if err := s.serializer.Deserialize(values, &rec.ChannelValues); err != nil {
		return nil, fmt.Errorf("failed to deserialize channel values: %w", err)
	}
	if versions.Valid && versions.String != "null" {
		if err := json.Unmarshal([]byte(versions.String), &rec.ChannelVersions); err != nil {
			return nil, fmt.Errorf("failed to deserialize channel versions: %w", err)
		}
	}
	if seen.Valid && seen.String != "null" {
		if err := json.Unmarshal([]byte(seen.String), &rec.VersionsSeen); err != nil {
			return nil, fmt.Errorf("failed to deserialize versions seen: %w", err)
		}
	}
	if metadata.Valid && metadata.String != "null" {
		if err := json.Unmarshal([]byte(metadata.String), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("failed to deserialize metadata: %w", err)
		}
	}
	rec.StoredAt = time.Unix(0, storedAt).UTC()
	return &rec, nil
}
