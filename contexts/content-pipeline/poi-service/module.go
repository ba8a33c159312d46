package poiservice

import (
	"log/slog"

	httpadapter "postcard/contexts/content-pipeline/poi-service/adapters/http"
	"postcard/contexts/content-pipeline/poi-service/adapters/memory"
	"postcard/contexts/content-pipeline/poi-service/application"
	"postcard/contexts/content-pipeline/poi-service/ports"
)

// Module is the composition surface for the POI catalog. Runtime wiring
// consumes Handler; Store is exposed for tests/inspection.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	POIs   ports.POIRepository
	Events ports.EventPublisher
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// NewModule wires the POI service against explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		POIs:   deps.POIs,
		Events: deps.Events,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			POIs:   service,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the POI service against the in-memory store.
// This is the developer bootstrap path until Postgres is configured.
func NewInMemoryModule(events ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		POIs:   store,
		Events: events,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
