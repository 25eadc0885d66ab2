package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/jwwelbor/AgentMap-sub007/internal/adapters/repository/memory"
	"github.com/jwwelbor/AgentMap-sub007/internal/app/dto"
	"github.com/jwwelbor/AgentMap-sub007/internal/app/services"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/bundle"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPresenter captures presented requests and can be told to fail.
type recordingPresenter struct {
	presented []*thread.InteractionRequest
	fail      bool
}

func (p *recordingPresenter) Present(_ context.Context, req *thread.InteractionRequest) error {
	if p.fail {
		return errors.New("notification channel down")
	}
	p.presented = append(p.presented, req)
	return nil
}

type handlerFixture struct {
	handler     *InteractionHandler
	threads     *memory.ThreadStore
	checkpoints *memory.CheckpointStore
	presenter   *recordingPresenter
}

func newHandlerFixture() *handlerFixture {
	threads := memory.NewThreadStore()
	cpStore := memory.NewCheckpointStore()
	presenter := &recordingPresenter{}
	handler := NewInteractionHandler(
		threads,
		services.NewCheckpointService(cpStore, zerolog.Nop()),
		presenter,
		zerolog.Nop(),
	)
	return &handlerFixture{handler: handler, threads: threads, checkpoints: cpStore, presenter: presenter}
}

func approvalInterruption(threadID string) *dto.Interruption {
	return &dto.Interruption{
		ThreadID: threadID,
		Request: &thread.InteractionRequest{
			NodeName:        "approve_deploy",
			InteractionType: thread.InteractionApproval,
			Prompt:          "Deploy to production?",
			Options:         []string{"approve", "reject"},
		},
		CheckpointData: thread.CheckpointData{
			Inputs:   map[string]interface{}{"build": "1.4.2"},
			NodeName: "approve_deploy",
		},
		Checkpoint: &checkpoint.Record{
			ChannelValues: map[string]interface{}{"current_node": "approve_deploy"},
		},
	}
}

func TestHandleExecutionInterruption(t *testing.T) {
	fx := newHandlerFixture()
	ctx := context.Background()

	b := &bundle.Bundle{
		GraphName:  "deploy_flow",
		Nodes:      map[string]*bundle.Node{"approve_deploy": {Name: "approve_deploy", AgentType: "input"}},
		CSVHash:    "h1",
		Format:     bundle.FormatMetadata,
		BundlePath: "bundles/deploy.json",
		CSVPath:    "workflows/deploy.csv",
	}

	meta, err := fx.handler.HandleExecutionInterruption(ctx, approvalInterruption("t-42"), b, nil)
	require.NoError(t, err)
	require.NotNil(t, meta)

	t.Run("thread is durably paused", func(t *testing.T) {
		stored, err := fx.threads.Get(ctx, "t-42")
		require.NoError(t, err)
		assert.Equal(t, thread.StatusPaused, stored.Status)
		assert.Equal(t, "h1", stored.BundleInfo["csv_hash"])
		assert.Equal(t, "bundles/deploy.json", stored.BundleInfo["bundle_path"])
		assert.Equal(t, "workflows/deploy.csv", stored.BundleInfo["csv_path"])
		assert.Equal(t, "approve_deploy", stored.CheckpointData.NodeName)
	})

	t.Run("request got an identity", func(t *testing.T) {
		require.NotNil(t, meta.InteractionRequest)
		assert.NotEmpty(t, meta.InteractionRequest.ID)
		assert.Equal(t, "t-42", meta.InteractionRequest.ThreadID)
	})

	t.Run("caller's request is not mutated", func(t *testing.T) {
		intr := approvalInterruption("t-43")
		stored, err := fx.handler.HandleExecutionInterruption(ctx, intr, b, nil)
		require.NoError(t, err)

		assert.Empty(t, intr.Request.ID, "defaults must go into a copy")
		assert.Empty(t, intr.Request.ThreadID)
		assert.NotSame(t, intr.Request, stored.InteractionRequest)
	})

	t.Run("checkpoint was persisted with interruption metadata", func(t *testing.T) {
		rec, err := fx.checkpoints.Latest(ctx, "t-42")
		require.NoError(t, err)
		assert.Equal(t, "interruption", rec.Metadata["source"])
		assert.Equal(t, "approve_deploy", rec.Metadata["node"])
	})

	t.Run("presenter was notified", func(t *testing.T) {
		require.Len(t, fx.presenter.presented, 1)
		assert.Equal(t, "Deploy to production?", fx.presenter.presented[0].Prompt)
	})
}

func TestHandleExecutionInterruptionContextWins(t *testing.T) {
	fx := newHandlerFixture()
	ctx := context.Background()

	b := &bundle.Bundle{
		GraphName: "g",
		Nodes:     map[string]*bundle.Node{"n": {Name: "n", AgentType: "input"}},
		CSVHash:   "bundle-hash",
		Format:    bundle.FormatMetadata,
	}

	meta, err := fx.handler.HandleExecutionInterruption(ctx, approvalInterruption("t-ctx"), b, map[string]interface{}{
		"csv_hash": "caller-hash",
		"tenant":   "acme",
	})
	require.NoError(t, err)

	assert.Equal(t, "caller-hash", meta.BundleInfo["csv_hash"], "caller context overrides bundle-derived keys")
	assert.Equal(t, "acme", meta.BundleInfo["tenant"])
}

func TestHandleExecutionInterruptionValidation(t *testing.T) {
	fx := newHandlerFixture()
	ctx := context.Background()

	t.Run("missing thread id", func(t *testing.T) {
		intr := approvalInterruption("")
		_, err := fx.handler.HandleExecutionInterruption(ctx, intr, nil, nil)
		assert.ErrorIs(t, err, dto.ErrMissingThreadID)

		_, err = fx.handler.HandleExecutionInterruption(ctx, nil, nil, nil)
		assert.ErrorIs(t, err, dto.ErrMissingThreadID)
	})

	t.Run("missing interaction request", func(t *testing.T) {
		intr := approvalInterruption("t-1")
		intr.Request = nil
		_, err := fx.handler.HandleExecutionInterruption(ctx, intr, nil, nil)
		assert.ErrorIs(t, err, dto.ErrMissingInteraction)
	})

	t.Run("presentation failure is an error", func(t *testing.T) {
		fx.presenter.fail = true
		_, err := fx.handler.HandleExecutionInterruption(ctx, approvalInterruption("t-2"), nil, nil)
		assert.ErrorIs(t, err, dto.ErrPresentationFailed)
		fx.presenter.fail = false
	})
}

func TestThreadTransitions(t *testing.T) {
	fx := newHandlerFixture()
	ctx := context.Background()

	_, err := fx.handler.HandleExecutionInterruption(ctx, approvalInterruption("t-42"), nil, nil)
	require.NoError(t, err)

	t.Run("paused to resuming to completed", func(t *testing.T) {
		ok, err := fx.handler.MarkThreadResuming(ctx, "t-42")
		require.NoError(t, err)
		assert.True(t, ok)

		meta, err := fx.handler.GetThreadMetadata(ctx, "t-42")
		require.NoError(t, err)
		assert.Equal(t, thread.StatusResuming, meta.Status)

		ok, err = fx.handler.MarkThreadCompleted(ctx, "t-42")
		require.NoError(t, err)
		assert.True(t, ok)

		meta, err = fx.handler.GetThreadMetadata(ctx, "t-42")
		require.NoError(t, err)
		assert.Equal(t, thread.StatusCompleted, meta.Status)
	})

	t.Run("unknown thread transitions are false without error", func(t *testing.T) {
		ok, err := fx.handler.MarkThreadResuming(ctx, "unknown-thread")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("out-of-order transitions are skipped", func(t *testing.T) {
		// t-42 is COMPLETED now; neither transition applies.
		ok, err := fx.handler.MarkThreadResuming(ctx, "t-42")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = fx.handler.MarkThreadCompleted(ctx, "t-42")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("never-interrupted thread has nil metadata", func(t *testing.T) {
		meta, err := fx.handler.GetThreadMetadata(ctx, "never-seen")
		require.NoError(t, err)
		assert.Nil(t, meta)
	})
}

func TestThreadsAreIndependent(t *testing.T) {
	fx := newHandlerFixture()
	ctx := context.Background()

	_, err := fx.handler.HandleExecutionInterruption(ctx, approvalInterruption("t-a"), nil, nil)
	require.NoError(t, err)
	_, err = fx.handler.HandleExecutionInterruption(ctx, approvalInterruption("t-b"), nil, nil)
	require.NoError(t, err)

	ok, err := fx.handler.MarkThreadResuming(ctx, "t-a")
	require.NoError(t, err)
	require.True(t, ok)

	metaB, err := fx.handler.GetThreadMetadata(ctx, "t-b")
	require.NoError(t, err)
	assert.Equal(t, thread.StatusPaused, metaB.Status, "transitioning one thread must not touch another")
}
