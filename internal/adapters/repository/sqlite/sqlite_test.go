package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCheckpointStore(t *testing.T) {
	ctx := context.Background()
	store := NewCheckpointStore(openTestDB(t), nil)
	require.NoError(t, store.CreateTables(ctx))

	rec := func(id, node string) *checkpoint.Record {
		return &checkpoint.Record{
			ID:       id,
			ThreadID: "t-1",
			ChannelValues: map[string]interface{}{
				"current_node": node,
			},
			ChannelVersions: map[string]int64{"current_node": 1},
			Metadata:        map[string]interface{}{"source": "loop"},
			StoredAt:        time.Now().UTC(),
		}
	}

	t.Run("append assigns monotonic sequence numbers", func(t *testing.T) {
		first := rec("cp-1", "a")
		second := rec("cp-2", "b")
		require.NoError(t, store.Append(ctx, first))
		require.NoError(t, store.Append(ctx, second))
		assert.Less(t, first.Seq, second.Seq)
	})

	t.Run("latest returns the newest record", func(t *testing.T) {
		latest, err := store.Latest(ctx, "t-1")
		require.NoError(t, err)
		assert.Equal(t, "cp-2", latest.ID)
		assert.Equal(t, "b", latest.ChannelValues["current_node"])
		assert.Equal(t, int64(1), latest.ChannelVersions["current_node"])
		assert.Equal(t, "loop", latest.Metadata["source"])
	})

	t.Run("get pins the exact record", func(t *testing.T) {
		got, err := store.Get(ctx, "t-1", "cp-1")
		require.NoError(t, err)
		assert.Equal(t, "a", got.ChannelValues["current_node"])
	})

	t.Run("list returns oldest first", func(t *testing.T) {
		recs, err := store.ListByThread(ctx, "t-1")
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "cp-1", recs[0].ID)
		assert.Equal(t, "cp-2", recs[1].ID)
	})

	t.Run("missing records", func(t *testing.T) {
		_, err := store.Latest(ctx, "empty-thread")
		assert.ErrorIs(t, err, checkpoint.ErrRecordNotFound)

		_, err = store.Get(ctx, "t-1", "cp-404")
		assert.ErrorIs(t, err, checkpoint.ErrRecordNotFound)
	})
}

func TestThreadStore(t *testing.T) {
	ctx := context.Background()
	store := NewThreadStore(openTestDB(t))
	require.NoError(t, store.CreateTables(ctx))

	now := time.Now().UTC().Truncate(time.Microsecond)
	meta := &thread.Metadata{
		ThreadID: "t-1",
		Status:   thread.StatusPaused,
		BundleInfo: map[string]interface{}{
			"bundle_path": "bundles/flow.json",
			"csv_hash":    "h1",
		},
		CheckpointData: thread.CheckpointData{NodeName: "approve"},
		InteractionRequest: &thread.InteractionRequest{
			ID:              "req-1",
			ThreadID:        "t-1",
			InteractionType: thread.InteractionApproval,
			Prompt:          "Proceed?",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.Run("save and get round-trip", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, meta))

		got, err := store.Get(ctx, "t-1")
		require.NoError(t, err)
		assert.Equal(t, thread.StatusPaused, got.Status)
		assert.Equal(t, "bundles/flow.json", got.BundleInfo["bundle_path"])
		assert.Equal(t, "approve", got.CheckpointData.NodeName)
		require.NotNil(t, got.InteractionRequest)
		assert.Equal(t, "req-1", got.InteractionRequest.ID)
		assert.Equal(t, now, got.CreatedAt)
	})

	t.Run("save replaces the existing row", func(t *testing.T) {
		meta.Status = thread.StatusResuming
		require.NoError(t, store.Save(ctx, meta))

		got, err := store.Get(ctx, "t-1")
		require.NoError(t, err)
		assert.Equal(t, thread.StatusResuming, got.Status)

		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("unknown thread", func(t *testing.T) {
		_, err := store.Get(ctx, "t-404")
		assert.ErrorIs(t, err, thread.ErrThreadNotFound)
	})

	t.Run("invalid metadata rejected before the write", func(t *testing.T) {
		err := store.Save(ctx, &thread.Metadata{ThreadID: "t-2", Status: "LIMBO"})
		assert.ErrorIs(t, err, thread.ErrInvalidStatus)
	})
}
