package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"postcard/contexts/content-pipeline/render-orchestrator/domain/entities"
	domainerrors "postcard/contexts/content-pipeline/render-orchestrator/domain/errors"
	"postcard/contexts/content-pipeline/render-orchestrator/ports"
	contractsv1 "postcard/contracts/gen/events/v1"
	"postcard/internal/shared/workflow"
)

// DefaultSceneCount is used when the script event carries neither a scene
// count nor a scene list; generation proceeds even with incomplete
// upstream data.
const DefaultSceneCount = 6

const defaultSceneDurationSeconds = 5.0

// Service is the render-job state machine. The scene loop runs inside
// CreateFromScriptEvent; voiceover/publish/retry are the explicit
// HTTP-triggered operations.
type Service struct {
	Jobs     ports.JobRepository
	Provider ports.SceneProvider
	Events   ports.EventPublisher
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

type sceneSpec struct {
	SceneNumber     int
	Title           string
	VisualPrompt    string
	DurationSeconds float64
}

// CreateFromScriptEvent creates a render job from a script.generated
// payload and immediately drives the scene loop. A provider failure is
// recorded on the job (status failed, error_message set) and reported in
// the returned job rather than as an error, so the consumer acknowledges
// the event instead of retrying into duplicate jobs. The error return is
// reserved for payload/persistence problems.
func (s Service) CreateFromScriptEvent(ctx context.Context, payload map[string]any) (entities.RenderJob, error) {
	logger := ResolveLogger(s.Logger)

	scriptID := stringField(payload, "script_id")
	poiID := stringField(payload, "poi_id")
	if scriptID == "" || poiID == "" {
		return entities.RenderJob{}, domainerrors.ErrInvalidScriptEvent
	}

	scenes := sceneSpecs(payload)

	jobID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.RenderJob{}, err
	}
	job := entities.RenderJob{
		JobID:       jobID,
		POIID:       poiID,
		ScriptID:    scriptID,
		Status:      entities.JobStatusPending,
		TotalScenes: len(scenes),
		CreatedAt:   s.now(),
	}
	if err := s.Jobs.CreateJob(ctx, job); err != nil {
		return entities.RenderJob{}, err
	}

	logger.Info("render job created",
		"event", "render_job_created",
		"module", "content-pipeline/render-orchestrator",
		"layer", "application",
		"render_job_id", job.JobID,
		"script_id", scriptID,
		"poi_id", poiID,
		"total_scenes", job.TotalScenes,
	)

	return s.processScenes(ctx, job, scenes)
}

// processScenes runs the per-job pipeline: pending → processing → completed
// on success, → failed on the first provider error (fail-fast, no partial
// completion). Scenes already completed keep their status for diagnostics.
func (s Service) processScenes(ctx context.Context, job entities.RenderJob, scenes []sceneSpec) (entities.RenderJob, error) {
	logger := ResolveLogger(s.Logger)

	job.Status = entities.JobStatusProcessing
	if err := s.Jobs.UpdateJob(ctx, job); err != nil {
		return entities.RenderJob{}, err
	}

	for _, spec := range scenes {
		sceneID, err := s.IDGen.NewID(ctx)
		if err != nil {
			return entities.RenderJob{}, err
		}
		scene := entities.RenderScene{
			SceneID:         sceneID,
			JobID:           job.JobID,
			SceneNumber:     spec.SceneNumber,
			Title:           spec.Title,
			VisualPrompt:    spec.VisualPrompt,
			DurationSeconds: spec.DurationSeconds,
			Status:          entities.SceneStatusPending,
			CreatedAt:       s.now(),
		}
		if err := s.Jobs.CreateScene(ctx, scene); err != nil {
			return entities.RenderJob{}, err
		}

		output, err := s.Provider.GenerateScene(ctx, scene.VisualPrompt, scene.DurationSeconds)
		if err != nil {
			job.Status = entities.JobStatusFailed
			job.ErrorMessage = err.Error()
			if updateErr := s.Jobs.UpdateJob(ctx, job); updateErr != nil {
				return entities.RenderJob{}, updateErr
			}
			logger.Error("scene generation failed, render job failed",
				"event", "render_job_failed",
				"module", "content-pipeline/render-orchestrator",
				"layer", "application",
				"render_job_id", job.JobID,
				"scene_number", scene.SceneNumber,
				"error", err.Error(),
			)
			return job, nil
		}

		scene.Status = entities.SceneStatusCompleted
		scene.OutputPath = output.OutputPath
		scene.Provider = output.Provider
		scene.Cost = output.Cost
		if err := s.Jobs.UpdateScene(ctx, scene); err != nil {
			return entities.RenderJob{}, err
		}

		job.CompletedScenes++
		if err := s.Jobs.UpdateJob(ctx, job); err != nil {
			return entities.RenderJob{}, err
		}

		s.Events.Publish(ctx, contractsv1.RenderSceneGenerated, job.POIID, map[string]any{
			"render_job_id": job.JobID,
			"scene_id":      scene.SceneID,
			"scene_number":  scene.SceneNumber,
			"poi_id":        job.POIID,
		})
	}

	now := s.now()
	job.Status = entities.JobStatusCompleted
	job.CompletedAt = &now
	job.OutputPath = fmt.Sprintf("/data/renders/%s/final.mp4", job.JobID)
	if err := s.Jobs.UpdateJob(ctx, job); err != nil {
		return entities.RenderJob{}, err
	}

	s.Events.Publish(ctx, contractsv1.RenderCompleted, job.POIID, map[string]any{
		"render_job_id": job.JobID,
		"poi_id":        job.POIID,
		"script_id":     job.ScriptID,
		"total_scenes":  job.TotalScenes,
	})

	logger.Info("render job completed",
		"event", "render_job_completed",
		"module", "content-pipeline/render-orchestrator",
		"layer", "application",
		"render_job_id", job.JobID,
		"completed_scenes", job.CompletedScenes,
	)
	return job, nil
}

// AttachVoiceover associates a narration track with a job. Legal in any job
// status: narration may be prepared before or after the render completes.
func (s Service) AttachVoiceover(ctx context.Context, jobID string, voiceoverID string, audioPath string) (entities.RenderJob, error) {
	job, err := s.Jobs.GetJob(ctx, jobID)
	if err != nil {
		return entities.RenderJob{}, err
	}
	job.VoiceoverID = voiceoverID
	job.VoiceoverAudioPath = audioPath
	if err := s.Jobs.UpdateJob(ctx, job); err != nil {
		return entities.RenderJob{}, err
	}

	ResolveLogger(s.Logger).Info("voiceover attached",
		"event", "render_voiceover_attached",
		"module", "content-pipeline/render-orchestrator",
		"layer", "application",
		"render_job_id", jobID,
		"voiceover_id", voiceoverID,
		"audio_path", audioPath,
	)
	return job, nil
}

// PublishVideo stamps a deterministic delivery URL on a completed job and
// emits video.published. Re-invocation after success proceeds again; only
// non-completed jobs are rejected.
func (s Service) PublishVideo(ctx context.Context, jobID string) (entities.RenderJob, error) {
	job, err := s.Jobs.GetJob(ctx, jobID)
	if err != nil {
		return entities.RenderJob{}, err
	}
	if job.Status != entities.JobStatusCompleted {
		return entities.RenderJob{}, fmt.Errorf("%w (current: %s)", domainerrors.ErrJobNotPublishable, job.Status)
	}

	now := s.now()
	job.PublishedURL = fmt.Sprintf("https://cdn.poi-video.example.com/videos/%s/final.mp4", job.JobID)
	job.PublishedAt = &now
	if err := s.Jobs.UpdateJob(ctx, job); err != nil {
		return entities.RenderJob{}, err
	}

	s.Events.Publish(ctx, contractsv1.VideoPublished, job.POIID, map[string]any{
		"render_job_id":        job.JobID,
		"poi_id":               job.POIID,
		"script_id":            job.ScriptID,
		"published_url":        job.PublishedURL,
		"voiceover_audio_path": job.VoiceoverAudioPath,
	})

	ResolveLogger(s.Logger).Info("video published",
		"event", "render_video_published",
		"module", "content-pipeline/render-orchestrator",
		"layer", "application",
		"render_job_id", job.JobID,
		"published_url", job.PublishedURL,
	)
	return job, nil
}

// RetryRender resets a failed job to pending. Re-driving the scene loop is
// a separate explicit step, not automatic.
func (s Service) RetryRender(ctx context.Context, jobID string) (entities.RenderJob, error) {
	job, err := s.Jobs.GetJob(ctx, jobID)
	if err != nil {
		return entities.RenderJob{}, err
	}
	if err := workflow.CheckTransition(job.Status, entities.JobStatusPending, workflow.RenderRetryTable); err != nil {
		return entities.RenderJob{}, err
	}

	job.Status = entities.JobStatusPending
	job.CompletedScenes = 0
	job.ErrorMessage = ""
	if err := s.Jobs.UpdateJob(ctx, job); err != nil {
		return entities.RenderJob{}, err
	}

	ResolveLogger(s.Logger).Info("render job reset for retry",
		"event", "render_job_retried",
		"module", "content-pipeline/render-orchestrator",
		"layer", "application",
		"render_job_id", job.JobID,
	)
	return job, nil
}

func (s Service) GetRender(ctx context.Context, jobID string) (entities.RenderJob, error) {
	return s.Jobs.GetJob(ctx, jobID)
}

func (s Service) GetScenes(ctx context.Context, jobID string) ([]entities.RenderScene, error) {
	if _, err := s.Jobs.GetJob(ctx, jobID); err != nil {
		return nil, err
	}
	return s.Jobs.ListScenes(ctx, jobID)
}

func (s Service) ListRenders(ctx context.Context, filter ports.JobListFilter) ([]entities.RenderJob, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	return s.Jobs.ListJobs(ctx, filter)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func stringField(payload map[string]any, key string) string {
	value, _ := payload[key].(string)
	return strings.TrimSpace(value)
}

// intField tolerates both JSON numbers (float64) and native ints.
func intField(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func floatField(payload map[string]any, key string) float64 {
	switch v := payload[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// sceneSpecs resolves the scene list from the event payload. When the event
// omits scene data, placeholder scenes are synthesized from scene_count (or
// DefaultSceneCount) so generation proceeds with incomplete upstream data.
func sceneSpecs(payload map[string]any) []sceneSpec {
	rawScenes, _ := payload["scenes"].([]any)
	specs := make([]sceneSpec, 0, len(rawScenes))
	for i, raw := range rawScenes {
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		spec := sceneSpec{
			SceneNumber:     intField(fields, "scene_number"),
			Title:           stringField(fields, "title"),
			VisualPrompt:    stringField(fields, "visual_prompt"),
			DurationSeconds: floatField(fields, "duration_seconds"),
		}
		if spec.SceneNumber <= 0 {
			spec.SceneNumber = i + 1
		}
		if spec.Title == "" {
			spec.Title = fmt.Sprintf("Scene %d", spec.SceneNumber)
		}
		if spec.DurationSeconds <= 0 {
			spec.DurationSeconds = defaultSceneDurationSeconds
		}
		specs = append(specs, spec)
	}

	if len(specs) == 0 {
		count := intField(payload, "scene_count")
		if count <= 0 {
			count = DefaultSceneCount
		}
		for i := 1; i <= count; i++ {
			specs = append(specs, sceneSpec{
				SceneNumber:     i,
				Title:           fmt.Sprintf("Scene %d", i),
				DurationSeconds: defaultSceneDurationSeconds,
			})
		}
		return specs
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].SceneNumber < specs[j].SceneNumber })
	return specs
}
