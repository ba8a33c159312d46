package renderorchestrator

import (
	"log/slog"

	httpadapter "postcard/contexts/content-pipeline/render-orchestrator/adapters/http"
	"postcard/contexts/content-pipeline/render-orchestrator/adapters/memory"
	"postcard/contexts/content-pipeline/render-orchestrator/application"
	"postcard/contexts/content-pipeline/render-orchestrator/application/workers"
	"postcard/contexts/content-pipeline/render-orchestrator/ports"
)

// Module is the composition surface for the render orchestrator.
// Runtime wiring consumes Handler for HTTP and ScriptConsumer for the
// event loop; Store is exposed for tests/inspection.
type Module struct {
	Handler        httpadapter.Handler
	ScriptConsumer workers.ScriptConsumer
	Store          *memory.Store
}

type Dependencies struct {
	Jobs     ports.JobRepository
	Provider ports.SceneProvider
	Events   ports.EventPublisher
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// NewModule wires the render service against explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Jobs:     deps.Jobs,
		Provider: deps.Provider,
		Events:   deps.Events,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			Renders: service,
			Logger:  deps.Logger,
		},
		ScriptConsumer: workers.ScriptConsumer{
			Renders: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the render service against the in-memory store.
// This is the developer bootstrap path until Postgres is configured.
func NewInMemoryModule(provider ports.SceneProvider, events ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Jobs:     store,
		Provider: provider,
		Events:   events,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
