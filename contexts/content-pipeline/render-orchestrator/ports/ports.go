package ports

import (
	"context"
	"time"

	"postcard/contexts/content-pipeline/render-orchestrator/domain/entities"
	contractsv1 "postcard/contracts/gen/events/v1"
)

// JobListFilter defines read-side filtering/pagination for render jobs.
// Page is 1-based; PageSize is clamped to 1..100 by the application layer.
type JobListFilter struct {
	POIID    string
	Page     int
	PageSize int
}

// JobRepository owns render job and scene persistence. The consumer loop is
// the only writer for jobs it creates, but HTTP-triggered operations may
// mutate the same row; implementations serialize writes per job.
type JobRepository interface {
	CreateJob(ctx context.Context, job entities.RenderJob) error
	UpdateJob(ctx context.Context, job entities.RenderJob) error
	GetJob(ctx context.Context, jobID string) (entities.RenderJob, error)
	ListJobs(ctx context.Context, filter JobListFilter) ([]entities.RenderJob, int, error)

	CreateScene(ctx context.Context, scene entities.RenderScene) error
	UpdateScene(ctx context.Context, scene entities.RenderScene) error
	ListScenes(ctx context.Context, jobID string) ([]entities.RenderScene, error)
}

// SceneOutput is what a generation provider returns for one scene.
type SceneOutput struct {
	OutputPath string
	Provider   string
	Cost       float64
}

// SceneProvider generates a single scene video from a prompt. The live
// implementation degrades to stub output on transport failure rather than
// returning an error; an error return fails the whole job.
type SceneProvider interface {
	GenerateScene(ctx context.Context, prompt string, durationSeconds float64) (SceneOutput, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher emits pipeline events on the video topic. Publishing is
// fire-and-forget: broker trouble degrades to logging and must never abort
// the render transaction, so there is no error return.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, payload map[string]any)
}

// Clock allows deterministic testing of timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts job/scene identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
