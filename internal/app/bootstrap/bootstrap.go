package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	poiservice "postcard/contexts/content-pipeline/poi-service"
	poievents "postcard/contexts/content-pipeline/poi-service/adapters/events"
	poipostgres "postcard/contexts/content-pipeline/poi-service/adapters/postgres"
	renderorchestrator "postcard/contexts/content-pipeline/render-orchestrator"
	renderevents "postcard/contexts/content-pipeline/render-orchestrator/adapters/events"
	renderpostgres "postcard/contexts/content-pipeline/render-orchestrator/adapters/postgres"
	"postcard/contexts/content-pipeline/render-orchestrator/adapters/provider"
	contractsv1 "postcard/contracts/gen/events/v1"
	"postcard/internal/platform/config"
	"postcard/internal/platform/db"
	"postcard/internal/platform/httpserver"
	"postcard/internal/platform/messaging"
	"postcard/internal/platform/metrics"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server    *httpserver.Server
	publisher *messaging.Publisher
	postgres  *db.Postgres
	logger    *slog.Logger
}

type WorkerApp struct {
	loop      *messaging.Loop
	topic     string
	group     string
	publisher *messaging.Publisher
	bus       *messaging.Bus
	postgres  *db.Postgres
	logger    *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	sink := metrics.NewPrometheusSink(prometheus.DefaultRegisterer)

	bus := messaging.NewBus(cfg.KafkaBrokers, logger)
	publisher := messaging.NewPublisher(bus, sink, logger)

	sceneProvider := provider.Select(cfg.ProviderMode, cfg.ProviderAPIURL, cfg.ProviderAPIKey, logger)

	var (
		pois    poiservice.Module
		renders renderorchestrator.Module
		pg      *db.Postgres
	)
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(poipostgres.Migrate, renderpostgres.Migrate); err != nil {
			_ = pg.Close()
			return nil, err
		}
		pois = poiservice.NewModule(poiservice.Dependencies{
			POIs:   poipostgres.NewRepository(pg.DB, logger),
			Events: poievents.NewPublisher(publisher),
			Clock:  poipostgres.SystemClock{},
			IDGen:  poipostgres.UUIDGenerator{},
			Logger: logger,
		})
		renders = renderorchestrator.NewModule(renderorchestrator.Dependencies{
			Jobs:     renderpostgres.NewRepository(pg.DB, logger),
			Provider: sceneProvider,
			Events:   renderevents.NewPublisher(publisher),
			Clock:    renderpostgres.SystemClock{},
			IDGen:    renderpostgres.UUIDGenerator{},
			Logger:   logger,
		})
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory stores",
			"event", "bootstrap_memory_fallback",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		pois = poiservice.NewInMemoryModule(poievents.NewPublisher(publisher), logger)
		renders = renderorchestrator.NewInMemoryModule(sceneProvider, renderevents.NewPublisher(publisher), logger)
	}

	var health httpserver.HealthChecker
	if pg != nil {
		health = pg
	}
	server := httpserver.New(pois, renders, health, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:    server,
		publisher: publisher,
		postgres:  pg,
		logger:    logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	sink := metrics.NewPrometheusSink(prometheus.DefaultRegisterer)

	bus := messaging.NewBus(cfg.KafkaBrokers, logger)
	publisher := messaging.NewPublisher(bus, sink, logger)

	sceneProvider := provider.Select(cfg.ProviderMode, cfg.ProviderAPIURL, cfg.ProviderAPIKey, logger)

	var (
		renders renderorchestrator.Module
		pg      *db.Postgres
	)
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(renderpostgres.Migrate); err != nil {
			_ = pg.Close()
			return nil, err
		}
		renders = renderorchestrator.NewModule(renderorchestrator.Dependencies{
			Jobs:     renderpostgres.NewRepository(pg.DB, logger),
			Provider: sceneProvider,
			Events:   renderevents.NewPublisher(publisher),
			Clock:    renderpostgres.SystemClock{},
			IDGen:    renderpostgres.UUIDGenerator{},
			Logger:   logger,
		})
	} else {
		logger.Warn("POSTGRES_DSN not set, using in-memory stores",
			"event", "bootstrap_memory_fallback",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		renders = renderorchestrator.NewInMemoryModule(sceneProvider, renderevents.NewPublisher(publisher), logger)
	}

	dedup, err := messaging.NewDedup(cfg.DedupCapacity)
	if err != nil {
		return nil, err
	}

	loop := &messaging.Loop{
		Subscriber: bus,
		Handlers: map[string]messaging.Handler{
			contractsv1.ScriptGenerated: renders.ScriptConsumer.HandleScriptGenerated,
		},
		Dedup:       dedup,
		DeadLetters: publisher,
		MaxRetries:  cfg.MaxRetries,
		BackoffBase: cfg.BackoffBase,
		Metrics:     sink,
		Logger:      logger,
	}

	return &WorkerApp{
		loop:      loop,
		topic:     cfg.ConsumeTopic,
		group:     cfg.ConsumerGroup,
		publisher: publisher,
		bus:       bus,
		postgres:  pg,
		logger:    logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.publisher != nil {
		_ = a.publisher.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"topic", w.topic,
		"group", w.group,
	)
	return w.loop.Run(ctx, w.topic, w.group)
}

func (w *WorkerApp) Close() error {
	if w.publisher != nil {
		_ = w.publisher.Close()
	}
	if w.bus != nil {
		w.bus.Shutdown()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
