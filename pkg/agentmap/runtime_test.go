package agentmap

import (
	"context"
	"testing"

	"github.com/jwwelbor/AgentMap-sub007/internal/app/dto"
	"github.com/jwwelbor/AgentMap-sub007/internal/app/services"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/container"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedExecutor suspends on Run and completes on Resume, imitating a
// graph that pauses once for human approval.
type scriptedExecutor struct {
	runs    int
	resumes int
}

func (e *scriptedExecutor) Run(context.Context, *Bundle, *Container, map[string]interface{}) (*StepOutcome, error) {
	e.runs++
	return dto.Suspended(&thread.InteractionRequest{
		NodeName:        "approve",
		InteractionType: thread.InteractionApproval,
		Prompt:          "Proceed?",
	}, &checkpoint.Record{
		ChannelValues: map[string]interface{}{"current_node": "approve"},
	}), nil
}

func (e *scriptedExecutor) Resume(_ context.Context, _ *Bundle, _ *Container, cp *checkpoint.Record, response map[string]interface{}) (*StepOutcome, error) {
	e.resumes++
	return dto.Completed(map[string]interface{}{
		"resumed_from": cp.ChannelValues["current_node"],
		"response":     response["decision"],
	}), nil
}

func approvalSpec() *GraphSpec {
	return &GraphSpec{Graphs: map[string][]NodeSpec{
		"release": {
			{Name: "gather", AgentType: "input", Edge: "approve"},
			{Name: "approve", AgentType: "input"},
		},
	}}
}

func TestRuntimeInterruptResumeCycle(t *testing.T) {
	executor := &scriptedExecutor{}
	rt, err := NewRuntime(Options{Executor: executor})
	require.NoError(t, err)
	ctx := context.Background()

	csv := []byte("graph,node,agent_type\nrelease,gather,input\nrelease,approve,input\n")

	// Compile and persist the bundle the way a host would on first run.
	b, err := rt.CompileBundle(approvalSpec(), "release", csv)
	require.NoError(t, err)
	require.NoError(t, rt.Bundles().SaveBundle(ctx, b, "bundles/release.json"))
	assert.True(t, rt.Bundles().VerifyCSV(b, csv))

	c, err := rt.Containers().CreateFromBundle(b)
	require.NoError(t, err)

	// First step suspends.
	outcome, err := executor.Run(ctx, b, c, map[string]interface{}{"build": "2.0.0"})
	require.NoError(t, err)
	require.Equal(t, dto.OutcomeSuspended, outcome.Kind)

	// Hand the suspension to the interaction handler.
	_, err = rt.Interactions().HandleExecutionInterruption(ctx, &Interruption{
		ThreadID:       "release-7",
		Request:        outcome.Request,
		CheckpointData: thread.CheckpointData{NodeName: "approve"},
		Checkpoint:     outcome.Checkpoint,
	}, b, nil)
	require.NoError(t, err)

	meta, err := rt.Interactions().GetThreadMetadata(ctx, "release-7")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, thread.StatusPaused, meta.Status)
	assert.Equal(t, "bundles/release.json", meta.BundleInfo["bundle_path"])

	// Resume with the approval.
	result, err := rt.Resume(ctx, &dto.ResumeRequest{ThreadID: "release-7", Response: map[string]interface{}{"decision": "approve"}})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, dto.OutcomeCompleted, result.Kind)
	assert.Equal(t, "approve", result.State["resumed_from"])
	assert.Equal(t, "approve", result.State["response"])
	assert.Equal(t, 1, executor.resumes)

	meta, err = rt.Interactions().GetThreadMetadata(ctx, "release-7")
	require.NoError(t, err)
	assert.Equal(t, thread.StatusCompleted, meta.Status)
}

func TestRuntimeResumeRequiresExecutor(t *testing.T) {
	rt, err := NewRuntime(Options{})
	require.NoError(t, err)

	_, err = rt.Resume(context.Background(), &dto.ResumeRequest{ThreadID: "t"})
	assert.ErrorIs(t, err, dto.ErrExecutorMissing)
}

func TestRuntimeHostRegistersBoundaryService(t *testing.T) {
	rt, err := NewRuntime(Options{})
	require.NoError(t, err)

	spec := &GraphSpec{Graphs: map[string][]NodeSpec{
		"chat": {{Name: "ask", AgentType: "openai"}},
	}}
	b, err := rt.CompileBundle(spec, "chat", []byte("csv"))
	require.NoError(t, err)

	// Without a host-supplied llm_service the container fails closed.
	_, err = rt.Containers().CreateFromBundle(b)
	require.Error(t, err)

	require.NoError(t, rt.Catalog().ReplaceService(services.ServiceDefinition{
		Name:     services.ServiceLLM,
		Requires: []string{services.ServicePromptService},
		New: func(*container.Container) (interface{}, error) {
			return "host-llm-client", nil
		},
	}))

	c, err := rt.Containers().CreateFromBundle(b)
	require.NoError(t, err)
	svc, err := c.Resolve(services.ServiceLLM)
	require.NoError(t, err)
	assert.Equal(t, "host-llm-client", svc)
}
