package usecases

import (
	"context"

	"github.com/jwwelbor/AgentMap-sub007/internal/app/dto"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/bundle"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/container"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
)

// GraphExecutor walks a graph's nodes using a bundle-derived container.
// Each call returns an explicit outcome variant; suspension is data, not
// a raised condition.
// PRINCIPLES:
// - DIP: The concrete executor is an external collaborator
// - OCP: Open for different execution strategies
type GraphExecutor interface {
	// Run starts execution of the bundle's graph from its entry point.
	Run(ctx context.Context, b *bundle.Bundle, c *container.Container, input map[string]interface{}) (*dto.StepOutcome, error)

	// Resume continues execution from a restored checkpoint with the
	// caller's response to the pending interaction.
	Resume(ctx context.Context, b *bundle.Bundle, c *container.Container, cp *checkpoint.Record, response map[string]interface{}) (*dto.StepOutcome, error)
}

// InteractionPresenter delivers an interaction request to whatever
// external surface collects the response (web hook, queue, console).
type InteractionPresenter interface {
	Present(ctx context.Context, req *thread.InteractionRequest) error
}
