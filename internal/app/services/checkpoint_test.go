package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jwwelbor/AgentMap-sub007/internal/adapters/repository/memory"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCheckpointStore rejects every append, simulating a storage
// backend outage.
type failingCheckpointStore struct{}

func (f *failingCheckpointStore) Append(context.Context, *checkpoint.Record) error {
	return errors.New("disk full")
}

func (f *failingCheckpointStore) Latest(context.Context, string) (*checkpoint.Record, error) {
	return nil, checkpoint.ErrRecordNotFound
}

func (f *failingCheckpointStore) Get(context.Context, string, string) (*checkpoint.Record, error) {
	return nil, checkpoint.ErrRecordNotFound
}

func (f *failingCheckpointStore) ListByThread(context.Context, string) ([]*checkpoint.Record, error) {
	return nil, nil
}

func testRecord(id string, node string) *checkpoint.Record {
	return &checkpoint.Record{
		ID: id,
		ChannelValues: map[string]interface{}{
			"current_node": node,
		},
		ChannelVersions: map[string]int64{"current_node": 1},
	}
}

func TestCheckpointPutAndGetTuple(t *testing.T) {
	svc := NewCheckpointService(memory.NewCheckpointStore(), zerolog.Nop())
	ctx := context.Background()
	cfg := checkpoint.Config{ThreadID: "thread-1"}

	t.Run("empty thread yields nil tuple", func(t *testing.T) {
		tuple, err := svc.GetTuple(ctx, cfg)
		require.NoError(t, err)
		assert.Nil(t, tuple)
	})

	t.Run("get tuple reflects the newest put", func(t *testing.T) {
		res := svc.Put(ctx, cfg, testRecord("cp-1", "step_one"), nil)
		require.True(t, res.Success)
		assert.Equal(t, "cp-1", res.CheckpointID)

		res = svc.Put(ctx, cfg, testRecord("cp-2", "step_two"), nil)
		require.True(t, res.Success)

		tuple, err := svc.GetTuple(ctx, cfg)
		require.NoError(t, err)
		require.NotNil(t, tuple)
		assert.Equal(t, "cp-2", tuple.Checkpoint.ID)
		assert.Equal(t, "step_two", tuple.Checkpoint.ChannelValues["current_node"])
		assert.Equal(t, "thread-1", tuple.Config.ThreadID)
		assert.Equal(t, "cp-2", tuple.Config.CheckpointID)
	})

	t.Run("checkpoint id pins the exact record", func(t *testing.T) {
		tuple, err := svc.GetTuple(ctx, checkpoint.Config{ThreadID: "thread-1", CheckpointID: "cp-1"})
		require.NoError(t, err)
		require.NotNil(t, tuple)
		assert.Equal(t, "cp-1", tuple.Checkpoint.ID)
		assert.Equal(t, "step_one", tuple.Checkpoint.ChannelValues["current_node"])
	})

	t.Run("record without id gets a generated one", func(t *testing.T) {
		res := svc.Put(ctx, checkpoint.Config{ThreadID: "thread-2"}, testRecord("", "n"), nil)
		require.True(t, res.Success)
		assert.NotEmpty(t, res.CheckpointID)
	})

	t.Run("put metadata merges over record metadata", func(t *testing.T) {
		rec := testRecord("cp-m", "n")
		rec.Metadata = map[string]interface{}{"source": "loop", "step": 1}
		res := svc.Put(ctx, checkpoint.Config{ThreadID: "thread-3"}, rec, map[string]interface{}{"source": "interruption"})
		require.True(t, res.Success)

		tuple, err := svc.GetTuple(ctx, checkpoint.Config{ThreadID: "thread-3"})
		require.NoError(t, err)
		assert.Equal(t, "interruption", tuple.Metadata["source"])
		assert.Equal(t, 1, tuple.Metadata["step"])
	})
}

func TestCheckpointPutFailure(t *testing.T) {
	svc := NewCheckpointService(&failingCheckpointStore{}, zerolog.Nop())
	ctx := context.Background()

	t.Run("storage failure is a result, not a panic", func(t *testing.T) {
		res := svc.Put(ctx, checkpoint.Config{ThreadID: "t"}, testRecord("cp", "n"), nil)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "disk full")
	})

	t.Run("invalid config fails before touching the store", func(t *testing.T) {
		res := svc.Put(ctx, checkpoint.Config{}, testRecord("cp", "n"), nil)
		assert.False(t, res.Success)

		_, err := svc.GetTuple(ctx, checkpoint.Config{})
		assert.ErrorIs(t, err, checkpoint.ErrInvalidThreadID)
	})

	t.Run("nil record fails with its own error", func(t *testing.T) {
		res := svc.Put(ctx, checkpoint.Config{ThreadID: "t"}, nil, nil)
		assert.False(t, res.Success)
		assert.Equal(t, checkpoint.ErrNilRecord.Error(), res.Error)
	})
}
