package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwwelbor/AgentMap-sub007/internal/app/dto"
	"github.com/jwwelbor/AgentMap-sub007/internal/app/services"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/bundle"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
	"github.com/jwwelbor/AgentMap-sub007/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
)

// InteractionHandler owns the suspend/resume state machine:
// PAUSED → RESUMING → COMPLETED. Absence of a metadata record means the
// thread has never been interrupted.
// PRINCIPLES:
// - SRP: Thread lifecycle transitions only; resumption orchestration
//   lives in ResumeCoordinator
// - DIP: Depends on thread.Store and the presenter abstraction
//
// The baseline contract assumes a single active writer per thread.
// Concurrent resume attempts on one thread have no defined locking or
// versioning protocol; that is an extension point, not an implemented
// guarantee.
type InteractionHandler struct {
	threads     thread.Store
	checkpoints *services.CheckpointService
	presenter   InteractionPresenter
	log         zerolog.Logger
}

// NewInteractionHandler creates an interaction handler.
func NewInteractionHandler(
	threads thread.Store,
	checkpoints *services.CheckpointService,
	presenter InteractionPresenter,
	logger zerolog.Logger,
) *InteractionHandler {
	return &InteractionHandler{
		threads:     threads,
		checkpoints: checkpoints,
		presenter:   presenter,
		log:         logger.With().Str("component", "interaction_handler").Logger(),
	}
}

// HandleExecutionInterruption persists why a thread paused and notifies
// the interaction surface. Bundle-derived fields merge with
// bundleContext; on key conflict bundleContext wins. Presentation
// failure is returned as an error: a thread must never end up silently
// paused with no notification path.
func (h *InteractionHandler) HandleExecutionInterruption(
	ctx context.Context,
	intr *dto.Interruption,
	b *bundle.Bundle,
	bundleContext map[string]interface{},
) (*thread.Metadata, error) {
	if intr == nil || intr.ThreadID == "" {
		return nil, dto.ErrMissingThreadID
	}
	if intr.Request == nil {
		return nil, dto.ErrMissingInteraction
	}

	// Requests are immutable once created; defaults go into a copy, never
	// the caller's struct.
	reqCopy := *intr.Request
	req := &reqCopy
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.ThreadID == "" {
		req.ThreadID = intr.ThreadID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bundleInfo := make(map[string]interface{})
	if b != nil {
		bundleInfo["csv_hash"] = b.SourceHash()
		bundleInfo["bundle_path"] = b.BundlePath
		bundleInfo["csv_path"] = b.CSVPath
	}
	for k, v := range bundleContext {
		bundleInfo[k] = v
	}

	now := time.Now().UTC()
	meta := &thread.Metadata{
		ThreadID:           intr.ThreadID,
		Status:             thread.StatusPaused,
		BundleInfo:         bundleInfo,
		CheckpointData:     intr.CheckpointData,
		InteractionRequest: req,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.threads.Save(ctx, meta); err != nil {
		return nil, fmt.Errorf("failed to persist thread metadata: %w", err)
	}

	if intr.Checkpoint != nil {
		res := h.checkpoints.Put(ctx, checkpoint.Config{ThreadID: intr.ThreadID}, intr.Checkpoint, map[string]interface{}{
			"source": "interruption",
			"node":   intr.CheckpointData.NodeName,
		})
		if !res.Success {
			// Checkpoint writes are retry-able by the executor; the
			// pause itself is already durable.
			h.log.Warn().
				Str("thread_id", intr.ThreadID).
				Str("error", res.Error).
				Msg("checkpoint persistence failed during interruption")
		}
	}

	metrics.IncInterruptions()
	h.log.Info().
		Str("thread_id", intr.ThreadID).
		Str("node", intr.CheckpointData.NodeName).
		Str("interaction_type", string(req.InteractionType)).
		Msg("thread paused for interaction")

	if err := h.presenter.Present(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrPresentationFailed, err)
	}
	return meta, nil
}

// GetThreadMetadata returns the metadata for a thread, or nil when the
// thread has never been interrupted.
func (h *InteractionHandler) GetThreadMetadata(ctx context.Context, threadID string) (*thread.Metadata, error) {
	meta, err := h.threads.Get(ctx, threadID)
	if err != nil {
		if errors.Is(err, thread.ErrThreadNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return meta, nil
}

// MarkThreadResuming transitions PAUSED → RESUMING. Unknown threads are
// a no-op false, not an error.
func (h *InteractionHandler) MarkThreadResuming(ctx context.Context, threadID string) (bool, error) {
	return h.transition(ctx, threadID, thread.StatusPaused, thread.StatusResuming)
}

// MarkThreadCompleted transitions RESUMING → COMPLETED. Unknown threads
// are a no-op false, not an error.
func (h *InteractionHandler) MarkThreadCompleted(ctx context.Context, threadID string) (bool, error) {
	return h.transition(ctx, threadID, thread.StatusResuming, thread.StatusCompleted)
}

func (h *InteractionHandler) transition(ctx context.Context, threadID string, from, to thread.Status) (bool, error) {
	meta, err := h.threads.Get(ctx, threadID)
	if err != nil {
		if errors.Is(err, thread.ErrThreadNotFound) {
			return false, nil
		}
		return false, err
	}
	if meta.Status != from {
		h.log.Warn().
			Str("thread_id", threadID).
			Str("status", string(meta.Status)).
			Str("expected", string(from)).
			Msg("thread transition skipped: unexpected status")
		return false, nil
	}

	meta.Status = to
	meta.UpdatedAt = time.Now().UTC()
	if err := h.threads.Save(ctx, meta); err != nil {
		return false, fmt.Errorf("failed to persist thread transition: %w", err)
	}

	h.log.Info().
		Str("thread_id", threadID).
		Str("status", string(to)).
		Msg("thread transitioned")
	return true, nil
}
