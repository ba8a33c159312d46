package unit

import (
	"context"
	"fmt"
	"testing"
	"time"

	renderorchestrator "postcard/contexts/content-pipeline/render-orchestrator"
	renderevents "postcard/contexts/content-pipeline/render-orchestrator/adapters/events"
	"postcard/contexts/content-pipeline/render-orchestrator/adapters/provider"
	renderports "postcard/contexts/content-pipeline/render-orchestrator/ports"
	contractsv1 "postcard/contracts/gen/events/v1"
	"postcard/internal/platform/messaging"
	"postcard/internal/platform/metrics"
)

func renderListAll() renderports.JobListFilter {
	return renderports.JobListFilter{Page: 1, PageSize: 20}
}

// The full in-process pipeline: a script.generated event on video.events is
// consumed by the loop, drives the scene loop to completion, and the job's
// own render.* events land back on the same topic.
func TestScriptGeneratedDrivesRenderToCompletion(t *testing.T) {
	ctx := context.Background()

	bus := messaging.NewBus(nil, nil)
	defer bus.Shutdown()

	ch, err := bus.Subscribe(contractsv1.TopicVideoEvents, "pipeline-test-cg")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	publisher := messaging.NewPublisher(bus, metrics.NewNoopSink(), nil)
	module := renderorchestrator.NewInMemoryModule(provider.Stub{}, renderevents.NewPublisher(publisher), nil)

	dedup, err := messaging.NewDedup(messaging.DefaultDedupCapacity)
	if err != nil {
		t.Fatalf("dedup: %v", err)
	}
	loop := &messaging.Loop{
		Subscriber: bus,
		Handlers: map[string]messaging.Handler{
			contractsv1.ScriptGenerated: module.ScriptConsumer.HandleScriptGenerated,
		},
		Dedup:       dedup,
		DeadLetters: publisher,
		Sleep:       func(_ time.Duration) {},
	}

	scenes := make([]any, 0, 3)
	for i := 1; i <= 3; i++ {
		scenes = append(scenes, map[string]any{
			"scene_number":  float64(i),
			"title":         fmt.Sprintf("Scene %d", i),
			"visual_prompt": fmt.Sprintf("prompt %d", i),
		})
	}
	publisher.Publish(ctx, messaging.PublishInput{
		Topic:     contractsv1.TopicVideoEvents,
		EventType: contractsv1.ScriptGenerated,
		Key:       "poi-1",
		Payload: map[string]any{
			"script_id": "script-1",
			"poi_id":    "poi-1",
			"scenes":    scenes,
		},
	})

	scriptMsg := <-ch
	loop.Process(ctx, scriptMsg)

	jobs, total, err := module.Store.ListJobs(ctx, renderListAll())
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected exactly one job, got %d", total)
	}
	job := jobs[0]
	if job.Status != "completed" {
		t.Fatalf("expected completed job, got %q", job.Status)
	}
	if job.CompletedScenes != 3 {
		t.Fatalf("expected 3 completed scenes, got %d", job.CompletedScenes)
	}

	counts := map[string]int{}
	for i := 0; i < 4; i++ {
		msg := <-ch
		event, err := contractsv1.Unmarshal(msg.Value)
		if err != nil {
			t.Fatalf("decode published event: %v", err)
		}
		counts[event.EventType]++
	}
	if counts[contractsv1.RenderSceneGenerated] != 3 {
		t.Fatalf("expected 3 scene events, got %d", counts[contractsv1.RenderSceneGenerated])
	}
	if counts[contractsv1.RenderCompleted] != 1 {
		t.Fatalf("expected 1 completed event, got %d", counts[contractsv1.RenderCompleted])
	}

	// Redelivery of the same message must not create a second job.
	loop.Process(ctx, scriptMsg)
	_, total, err = module.Store.ListJobs(ctx, renderListAll())
	if err != nil {
		t.Fatalf("list jobs after redelivery: %v", err)
	}
	if total != 1 {
		t.Fatalf("duplicate delivery created extra jobs: %d", total)
	}

	// Explicit publish stamps the delivery URL and emits video.published.
	resp, err := module.Handler.PublishVideoHandler(ctx, job.JobID)
	if err != nil {
		t.Fatalf("publish video: %v", err)
	}
	wantURL := fmt.Sprintf("https://cdn.poi-video.example.com/videos/%s/final.mp4", job.JobID)
	if resp.PublishedURL != wantURL {
		t.Fatalf("expected %q, got %q", wantURL, resp.PublishedURL)
	}

	msg := <-ch
	event, err := contractsv1.Unmarshal(msg.Value)
	if err != nil {
		t.Fatalf("decode video.published: %v", err)
	}
	if event.EventType != contractsv1.VideoPublished {
		t.Fatalf("expected video.published, got %q", event.EventType)
	}
}
