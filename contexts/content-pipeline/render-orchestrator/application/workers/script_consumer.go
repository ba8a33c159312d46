package workers

import (
	"context"
	"log/slog"

	application "postcard/contexts/content-pipeline/render-orchestrator/application"
	"postcard/contexts/content-pipeline/render-orchestrator/domain/entities"
	"postcard/contexts/content-pipeline/render-orchestrator/ports"
)

// ScriptConsumer bridges the platform consumer loop to the render
// orchestrator: one handler per understood event type on video.events.
type ScriptConsumer struct {
	Renders application.Service
	Logger  *slog.Logger
}

// HandleScriptGenerated creates and processes a render job from the event
// payload. A job that ends up failed (provider trouble) still acknowledges
// the event; only payload/persistence errors bubble into the retry budget.
func (c ScriptConsumer) HandleScriptGenerated(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	logger.Info("script.generated received",
		"event", "script_generated_received",
		"module", "content-pipeline/render-orchestrator",
		"layer", "worker",
		"event_id", event.EventID,
		"correlation_id", event.CorrelationID,
	)

	job, err := c.Renders.CreateFromScriptEvent(ctx, event.Payload)
	if err != nil {
		logger.Error("render job creation failed",
			"event", "script_generated_handler_failed",
			"module", "content-pipeline/render-orchestrator",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	if job.Status == entities.JobStatusFailed {
		logger.Warn("render job finished failed, awaiting explicit retry",
			"event", "script_generated_job_failed",
			"module", "content-pipeline/render-orchestrator",
			"layer", "worker",
			"event_id", event.EventID,
			"render_job_id", job.JobID,
			"error_message", job.ErrorMessage,
		)
	}
	return nil
}
