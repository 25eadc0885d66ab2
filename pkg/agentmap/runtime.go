package agentmap

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jwwelbor/AgentMap-sub007/internal/adapters/repository/memory"
	"github.com/jwwelbor/AgentMap-sub007/internal/app/dto"
	"github.com/jwwelbor/AgentMap-sub007/internal/app/services"
	"github.com/jwwelbor/AgentMap-sub007/internal/app/usecases"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/bundle"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/checkpoint"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/container"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/storage"
	"github.com/jwwelbor/AgentMap-sub007/internal/core/thread"
	"github.com/jwwelbor/AgentMap-sub007/pkg/serialization"
)

// Re-export core types for convenience so callers never import internal
// packages directly.
type (
	Bundle             = bundle.Bundle
	Node               = bundle.Node
	NodeSpec           = bundle.NodeSpec
	GraphSpec          = bundle.GraphSpec
	Container          = container.Container
	CheckpointConfig   = checkpoint.Config
	CheckpointRecord   = checkpoint.Record
	ThreadMetadata     = thread.Metadata
	InteractionRequest = thread.InteractionRequest
	Interruption       = dto.Interruption
	StepOutcome        = dto.StepOutcome
)

// Options customizes runtime construction. Zero-value fields fall back
// to in-memory defaults.
type Options struct {
	Logger      zerolog.Logger
	Documents   storage.DocumentStore
	Checkpoints checkpoint.Store
	Threads     thread.Store
	Presenter   usecases.InteractionPresenter
	Executor    usecases.GraphExecutor
}

// Runtime is a facade wiring the bundle service, container factory,
// checkpoint service, and interaction handler over one catalog.
type Runtime struct {
	catalog     *services.ServiceCatalog
	bundles     *services.BundleService
	containers  *services.ContainerFactory
	checkpoints *services.CheckpointService
	handler     *usecases.InteractionHandler
	resumer     *usecases.ResumeCoordinator
}

// noopPresenter accepts every interaction request without delivering it
// anywhere. Hosts that surface requests must supply their own presenter.
type noopPresenter struct{}

func (noopPresenter) Present(context.Context, *thread.InteractionRequest) error { return nil }

// NewRuntime constructs a runtime. Missing options default to in-memory
// stores and a presenter that accepts requests without delivering them.
func NewRuntime(opts Options) (*Runtime, error) {
	if opts.Documents == nil {
		opts.Documents = memory.NewDocumentStore()
	}
	if opts.Checkpoints == nil {
		opts.Checkpoints = memory.NewCheckpointStore()
	}
	if opts.Threads == nil {
		opts.Threads = memory.NewThreadStore()
	}
	if opts.Presenter == nil {
		opts.Presenter = noopPresenter{}
	}

	serializer := serialization.DefaultSerializer()
	catalog, err := services.DefaultCatalog(services.Infrastructure{
		Serializer:  serializer,
		Checkpoints: opts.Checkpoints,
		Documents:   opts.Documents,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	analyzer := services.NewCatalogAnalyzer(catalog)
	bundles := services.NewBundleService(opts.Documents, serializer, analyzer, analyzer, opts.Logger)
	containers := services.NewContainerFactory(catalog, opts.Logger)
	checkpoints := services.NewCheckpointService(opts.Checkpoints, opts.Logger)
	handler := usecases.NewInteractionHandler(opts.Threads, checkpoints, opts.Presenter, opts.Logger)

	rt := &Runtime{
		catalog:     catalog,
		bundles:     bundles,
		containers:  containers,
		checkpoints: checkpoints,
		handler:     handler,
	}
	if opts.Executor != nil {
		rt.resumer = usecases.NewResumeCoordinator(handler, bundles, containers, checkpoints, opts.Executor, opts.Logger)
	}
	return rt, nil
}

// Catalog exposes the service catalog so hosts can register their own
// service definitions (llm_service and friends) before building
// containers.
func (rt *Runtime) Catalog() *services.ServiceCatalog { return rt.catalog }

// Bundles exposes the bundle service.
func (rt *Runtime) Bundles() *services.BundleService { return rt.bundles }

// Containers exposes the container factory.
func (rt *Runtime) Containers() *services.ContainerFactory { return rt.containers }

// Checkpoints exposes the checkpoint service.
func (rt *Runtime) Checkpoints() *services.CheckpointService { return rt.checkpoints }

// Interactions exposes the interaction handler.
func (rt *Runtime) Interactions() *usecases.InteractionHandler { return rt.handler }

// Resume continues an interrupted thread. It requires an Executor to
// have been supplied at construction.
func (rt *Runtime) Resume(ctx context.Context, req *dto.ResumeRequest) (*dto.StepOutcome, error) {
	if rt.resumer == nil {
		return nil, dto.ErrExecutorMissing
	}
	return rt.resumer.Resume(ctx, req)
}

// CompileBundle builds a metadata bundle for one graph of a spec, using
// the content itself for the hash.
func (rt *Runtime) CompileBundle(spec *bundle.GraphSpec, graphName string, csvContent []byte) (*bundle.Bundle, error) {
	return rt.bundles.CreateMetadataBundleFromSpec(spec, graphName, bundle.HashContent(csvContent))
}
