package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"postcard/contexts/content-pipeline/render-orchestrator/adapters/memory"
	"postcard/contexts/content-pipeline/render-orchestrator/domain/entities"
	domainerrors "postcard/contexts/content-pipeline/render-orchestrator/domain/errors"
	"postcard/contexts/content-pipeline/render-orchestrator/ports"
	contractsv1 "postcard/contracts/gen/events/v1"
	"postcard/internal/shared/workflow"
)

type scriptedProvider struct {
	calls   int
	failOn  int
	failErr error
}

func (p *scriptedProvider) GenerateScene(_ context.Context, _ string, _ float64) (ports.SceneOutput, error) {
	p.calls++
	if p.failOn > 0 && p.calls == p.failOn {
		return ports.SceneOutput{}, p.failErr
	}
	return ports.SceneOutput{
		OutputPath: fmt.Sprintf("/data/renders/test_%d.mp4", p.calls),
		Provider:   "stub",
		Cost:       0,
	}, nil
}

type publishedEvent struct {
	EventType string
	Key       string
	Payload   map[string]any
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, key string, payload map[string]any) {
	p.events = append(p.events, publishedEvent{EventType: eventType, Key: key, Payload: payload})
}

func (p *recordingPublisher) byType(eventType string) []publishedEvent {
	var out []publishedEvent
	for _, event := range p.events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type sequenceIDs struct {
	next int
}

func (g *sequenceIDs) NewID(_ context.Context) (string, error) {
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

func newTestService(provider ports.SceneProvider) (Service, *memory.Store, *recordingPublisher) {
	store := memory.NewStore()
	events := &recordingPublisher{}
	service := Service{
		Jobs:     store,
		Provider: provider,
		Events:   events,
		Clock:    fixedClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
		IDGen:    &sequenceIDs{},
	}
	return service, store, events
}

func scriptPayload(sceneCount int) map[string]any {
	scenes := make([]any, 0, sceneCount)
	for i := 1; i <= sceneCount; i++ {
		scenes = append(scenes, map[string]any{
			"scene_number":     float64(i),
			"title":            fmt.Sprintf("Aerial view %d", i),
			"visual_prompt":    fmt.Sprintf("drone shot %d", i),
			"duration_seconds": 4.0,
		})
	}
	return map[string]any{
		"script_id": "script-1",
		"poi_id":    "poi-1",
		"scenes":    scenes,
	}
}

func TestCreateFromScriptEventRendersAllScenes(t *testing.T) {
	service, store, events := newTestService(&scriptedProvider{})

	job, err := service.CreateFromScriptEvent(context.Background(), scriptPayload(3))
	if err != nil {
		t.Fatalf("expected render to succeed, got %v", err)
	}
	if job.Status != entities.JobStatusCompleted {
		t.Fatalf("expected completed job, got %q", job.Status)
	}
	if job.CompletedScenes != 3 || job.TotalScenes != 3 {
		t.Fatalf("expected 3/3 scenes, got %d/%d", job.CompletedScenes, job.TotalScenes)
	}
	if job.OutputPath != fmt.Sprintf("/data/renders/%s/final.mp4", job.JobID) {
		t.Fatalf("unexpected output path %q", job.OutputPath)
	}
	if job.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}

	scenes, err := store.ListScenes(context.Background(), job.JobID)
	if err != nil {
		t.Fatalf("list scenes: %v", err)
	}
	if len(scenes) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(scenes))
	}
	for i, scene := range scenes {
		if scene.SceneNumber != i+1 {
			t.Fatalf("expected scene %d in order, got %d", i+1, scene.SceneNumber)
		}
		if scene.Status != entities.SceneStatusCompleted {
			t.Fatalf("scene %d: expected completed, got %q", scene.SceneNumber, scene.Status)
		}
	}

	if got := len(events.byType(contractsv1.RenderSceneGenerated)); got != 3 {
		t.Fatalf("expected 3 scene events, got %d", got)
	}
	completed := events.byType(contractsv1.RenderCompleted)
	if len(completed) != 1 {
		t.Fatalf("expected 1 completed event, got %d", len(completed))
	}
	if completed[0].Key != "poi-1" {
		t.Fatalf("expected events keyed by poi id, got %q", completed[0].Key)
	}
}

func TestCreateFromScriptEventRejectsMissingIdentifiers(t *testing.T) {
	service, _, _ := newTestService(&scriptedProvider{})

	for _, payload := range []map[string]any{
		{"poi_id": "poi-1"},
		{"script_id": "script-1"},
		{"script_id": "  ", "poi_id": "poi-1"},
	} {
		if _, err := service.CreateFromScriptEvent(context.Background(), payload); !errors.Is(err, domainerrors.ErrInvalidScriptEvent) {
			t.Fatalf("payload %v: expected ErrInvalidScriptEvent, got %v", payload, err)
		}
	}
}

func TestCreateFromScriptEventSynthesizesPlaceholderScenes(t *testing.T) {
	service, store, _ := newTestService(&scriptedProvider{})

	job, err := service.CreateFromScriptEvent(context.Background(), map[string]any{
		"script_id":   "script-1",
		"poi_id":      "poi-1",
		"scene_count": float64(2),
	})
	if err != nil {
		t.Fatalf("expected render to succeed, got %v", err)
	}
	if job.TotalScenes != 2 {
		t.Fatalf("expected 2 placeholder scenes, got %d", job.TotalScenes)
	}

	scenes, _ := store.ListScenes(context.Background(), job.JobID)
	if scenes[0].Title != "Scene 1" || scenes[1].Title != "Scene 2" {
		t.Fatalf("unexpected placeholder titles: %q, %q", scenes[0].Title, scenes[1].Title)
	}
	if scenes[0].DurationSeconds != 5.0 {
		t.Fatalf("expected default duration 5.0, got %v", scenes[0].DurationSeconds)
	}
}

func TestCreateFromScriptEventDefaultsSceneCount(t *testing.T) {
	service, _, _ := newTestService(&scriptedProvider{})

	job, err := service.CreateFromScriptEvent(context.Background(), map[string]any{
		"script_id": "script-1",
		"poi_id":    "poi-1",
	})
	if err != nil {
		t.Fatalf("expected render to succeed, got %v", err)
	}
	if job.TotalScenes != DefaultSceneCount {
		t.Fatalf("expected %d scenes, got %d", DefaultSceneCount, job.TotalScenes)
	}
}

func TestProviderFailureMarksJobFailedWithoutError(t *testing.T) {
	provider := &scriptedProvider{failOn: 2, failErr: errors.New("gpu capacity exhausted")}
	service, _, events := newTestService(provider)

	job, err := service.CreateFromScriptEvent(context.Background(), scriptPayload(3))
	if err != nil {
		t.Fatalf("provider failure must not surface as handler error, got %v", err)
	}
	if job.Status != entities.JobStatusFailed {
		t.Fatalf("expected failed job, got %q", job.Status)
	}
	if !strings.Contains(job.ErrorMessage, "gpu capacity exhausted") {
		t.Fatalf("expected error message recorded, got %q", job.ErrorMessage)
	}
	if job.CompletedScenes != 1 {
		t.Fatalf("expected 1 completed scene before failure, got %d", job.CompletedScenes)
	}
	if got := len(events.byType(contractsv1.RenderCompleted)); got != 0 {
		t.Fatalf("failed job must not emit completed event, got %d", got)
	}
}

func TestPublishVideoRequiresCompletedJob(t *testing.T) {
	provider := &scriptedProvider{failOn: 1, failErr: errors.New("boom")}
	service, _, _ := newTestService(provider)

	job, err := service.CreateFromScriptEvent(context.Background(), scriptPayload(1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.PublishVideo(context.Background(), job.JobID); !errors.Is(err, domainerrors.ErrJobNotPublishable) {
		t.Fatalf("expected ErrJobNotPublishable, got %v", err)
	}
}

func TestPublishVideoStampsDeliveryURL(t *testing.T) {
	service, _, events := newTestService(&scriptedProvider{})

	job, err := service.CreateFromScriptEvent(context.Background(), scriptPayload(1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.AttachVoiceover(context.Background(), job.JobID, "vo-1", "/data/audio/vo-1.mp3"); err != nil {
		t.Fatalf("attach voiceover: %v", err)
	}

	published, err := service.PublishVideo(context.Background(), job.JobID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	wantURL := fmt.Sprintf("https://cdn.poi-video.example.com/videos/%s/final.mp4", job.JobID)
	if published.PublishedURL != wantURL {
		t.Fatalf("expected %q, got %q", wantURL, published.PublishedURL)
	}
	if published.PublishedAt == nil {
		t.Fatal("expected published_at to be set")
	}

	items := events.byType(contractsv1.VideoPublished)
	if len(items) != 1 {
		t.Fatalf("expected 1 video.published event, got %d", len(items))
	}
	if items[0].Payload["voiceover_audio_path"] != "/data/audio/vo-1.mp3" {
		t.Fatalf("expected voiceover path in event, got %v", items[0].Payload["voiceover_audio_path"])
	}
}

func TestRetryRenderResetsFailedJobOnly(t *testing.T) {
	provider := &scriptedProvider{failOn: 2, failErr: errors.New("boom")}
	service, _, _ := newTestService(provider)

	failed, err := service.CreateFromScriptEvent(context.Background(), scriptPayload(3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reset, err := service.RetryRender(context.Background(), failed.JobID)
	if err != nil {
		t.Fatalf("retry of failed job: %v", err)
	}
	if reset.Status != entities.JobStatusPending {
		t.Fatalf("expected pending after retry, got %q", reset.Status)
	}
	if reset.CompletedScenes != 0 || reset.ErrorMessage != "" {
		t.Fatalf("expected progress and error cleared, got %d, %q", reset.CompletedScenes, reset.ErrorMessage)
	}

	completedService, _, _ := newTestService(&scriptedProvider{})
	completed, err := completedService.CreateFromScriptEvent(context.Background(), scriptPayload(1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := completedService.RetryRender(context.Background(), completed.JobID); !errors.Is(err, workflow.ErrTransitionDenied) {
		t.Fatalf("expected ErrTransitionDenied for completed job, got %v", err)
	}
}

func TestAttachVoiceoverWorksInAnyStatus(t *testing.T) {
	provider := &scriptedProvider{failOn: 1, failErr: errors.New("boom")}
	service, _, _ := newTestService(provider)

	failed, err := service.CreateFromScriptEvent(context.Background(), scriptPayload(1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	job, err := service.AttachVoiceover(context.Background(), failed.JobID, "vo-9", "/data/audio/vo-9.mp3")
	if err != nil {
		t.Fatalf("attach on failed job: %v", err)
	}
	if job.VoiceoverID != "vo-9" || job.VoiceoverAudioPath != "/data/audio/vo-9.mp3" {
		t.Fatalf("voiceover not recorded: %q, %q", job.VoiceoverID, job.VoiceoverAudioPath)
	}
}

func TestGetRenderUnknownJob(t *testing.T) {
	service, _, _ := newTestService(&scriptedProvider{})
	if _, err := service.GetRender(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrRenderNotFound) {
		t.Fatalf("expected ErrRenderNotFound, got %v", err)
	}
	if _, err := service.GetScenes(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrRenderNotFound) {
		t.Fatalf("expected ErrRenderNotFound for scenes, got %v", err)
	}
}

func TestListRendersClampsPagination(t *testing.T) {
	service, _, _ := newTestService(&scriptedProvider{})

	for i := 0; i < 3; i++ {
		payload := scriptPayload(1)
		payload["poi_id"] = "poi-list"
		if _, err := service.CreateFromScriptEvent(context.Background(), payload); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	items, total, err := service.ListRenders(context.Background(), ports.JobListFilter{
		POIID:    "poi-list",
		Page:     0,
		PageSize: -5,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items with defaulted page size, got %d", len(items))
	}

	page2, _, err := service.ListRenders(context.Background(), ports.JobListFilter{
		POIID:    "poi-list",
		Page:     2,
		PageSize: 2,
	})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2) != 1 {
		t.Fatalf("expected 1 item on page 2, got %d", len(page2))
	}
}
