package usecases

import (
	"context"
	"fmt"

	"github.com/jwwelbor/AgentMap-sub007/internal/app/dto"
	"github.com/jwwelbor/AgentMap-sub007/internal/app/services"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
	"github.com/jwwelbor/AgentMap-sub007/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
)

// ResumeCoordinator drives the full resume cycle for a paused thread:
// load its metadata, rehydrate the bundle it was built from, rebuild the
// minimal container, restore the latest checkpoint, and hand control
// back to the executor.
type ResumeCoordinator struct {
	handler     *InteractionHandler
	bundles     *services.BundleService
	containers  *services.ContainerFactory
	checkpoints *services.CheckpointService
	executor    GraphExecutor
	log         zerolog.Logger
}

// NewResumeCoordinator creates a resume coordinator.
func NewResumeCoordinator(
	handler *InteractionHandler,
	bundles *services.BundleService,
	containers *services.ContainerFactory,
	checkpoints *services.CheckpointService,
	executor GraphExecutor,
	logger zerolog.Logger,
) *ResumeCoordinator {
	return &ResumeCoordinator{
		handler:     handler,
		bundles:     bundles,
		containers:  containers,
		checkpoints: checkpoints,
		executor:    executor,
		log:         logger.With().Str("component", "resume_coordinator").Logger(),
	}
}

// Resume continues an interrupted thread with the caller's response.
// A request without a thread identity is a configuration error; an
// unknown thread is ErrThreadNotFound.
func (rc *ResumeCoordinator) Resume(ctx context.Context, req *dto.ResumeRequest) (*dto.StepOutcome, error) {
	if req == nil {
		return nil, dto.ErrMissingThreadID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	meta, err := rc.handler.GetThreadMetadata(ctx, req.ThreadID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %q", thread.ErrThreadNotFound, req.ThreadID)
	}

	bundlePath, _ := meta.BundleInfo["bundle_path"].(string)
	b, err := rc.bundles.LoadBundle(ctx, bundlePath)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %q", dto.ErrBundleUnavailable, bundlePath)
	}

	c, err := rc.containers.CreateFromBundle(b)
	if err != nil {
		return nil, fmt.Errorf("container rebuild failed: %w", err)
	}

	tuple, err := rc.checkpoints.GetTuple(ctx, checkpoint.Config{ThreadID: req.ThreadID})
	if err != nil {
		return nil, err
	}
	var restored *checkpoint.Record
	if tuple != nil {
		restored = tuple.Checkpoint
	}

	ok, err := rc.handler.MarkThreadResuming(ctx, req.ThreadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: thread %q is not paused", thread.ErrInvalidStatus, req.ThreadID)
	}

	metrics.IncResumes()
	rc.log.Info().
		Str("thread_id", req.ThreadID).
		Str("graph", b.GraphName).
		Msg("resuming thread")

	outcome, err := rc.executor.Resume(ctx, b, c, restored, req.Response)
	if err != nil {
		return nil, err
	}

	if outcome != nil && outcome.Kind == dto.OutcomeCompleted {
		if _, err := rc.handler.MarkThreadCompleted(ctx, req.ThreadID); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}
