package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jwwelbor/AgentMap-sub007/internal/adapters/repository/sqlite"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/storage"
	"github.com/jwwelbor/AgentMap-sub007/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageOptionsDefaultsToMemoryStores(t *testing.T) {
	opts, err := storageOptions(context.Background(), &config.Config{BundleDir: "bundles"})
	require.NoError(t, err)

	assert.NotNil(t, opts.Documents)
	assert.Nil(t, opts.Checkpoints, "no configured backend leaves the in-memory default")
	assert.Nil(t, opts.Threads)
}

func TestStorageOptionsRootsBundlesAtBundleDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	opts, err := storageOptions(ctx, &config.Config{BundleDir: dir})
	require.NoError(t, err)

	require.NoError(t, opts.Documents.Write(ctx, "flow.json", []byte("{}"), storage.ModeWrite))
	assert.FileExists(t, filepath.Join(dir, "flow.json"))
}

func TestStorageOptionsSelectsSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		BundleDir:  t.TempDir(),
		SQLitePath: filepath.Join(t.TempDir(), "state.db"),
	}

	opts, err := storageOptions(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &sqlite.CheckpointStore{}, opts.Checkpoints)
	require.IsType(t, &sqlite.ThreadStore{}, opts.Threads)

	// CreateTables already ran; the store is usable immediately.
	require.NoError(t, opts.Checkpoints.Append(ctx, &checkpoint.Record{
		ID:            "cp-1",
		ThreadID:      "t-1",
		ChannelValues: map[string]interface{}{"current_node": "start"},
	}))
	rec, err := opts.Checkpoints.Latest(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "cp-1", rec.ID)
}

func TestStorageOptionsRejectsBadPostgresDSN(t *testing.T) {
	_, err := storageOptions(context.Background(), &config.Config{
		BundleDir:   "bundles",
		PostgresDSN: "not a valid dsn",
	})
	assert.Error(t, err)
}
