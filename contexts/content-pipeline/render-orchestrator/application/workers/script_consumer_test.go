package workers

import (
	"context"
	"errors"
	"testing"

	"postcard/contexts/content-pipeline/render-orchestrator/adapters/memory"
	"postcard/contexts/content-pipeline/render-orchestrator/application"
	domainerrors "postcard/contexts/content-pipeline/render-orchestrator/domain/errors"
	"postcard/contexts/content-pipeline/render-orchestrator/ports"
	contractsv1 "postcard/contracts/gen/events/v1"
)

type stubProvider struct {
	err error
}

func (p stubProvider) GenerateScene(_ context.Context, _ string, _ float64) (ports.SceneOutput, error) {
	if p.err != nil {
		return ports.SceneOutput{}, p.err
	}
	return ports.SceneOutput{OutputPath: "/data/renders/stub.mp4", Provider: "stub"}, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(_ context.Context, _ string, _ string, _ map[string]any) {}

func newConsumer(provider ports.SceneProvider) (ScriptConsumer, *memory.Store) {
	store := memory.NewStore()
	service := application.Service{
		Jobs:     store,
		Provider: provider,
		Events:   nopPublisher{},
		Clock:    store,
		IDGen:    store,
	}
	return ScriptConsumer{Renders: service}, store
}

func scriptEvent(payload map[string]any) ports.EventEnvelope {
	return contractsv1.New(contractsv1.ScriptGenerated, payload, "corr-1")
}

func TestHandleScriptGeneratedCreatesJob(t *testing.T) {
	consumer, store := newConsumer(stubProvider{})

	err := consumer.HandleScriptGenerated(context.Background(), scriptEvent(map[string]any{
		"script_id":   "script-1",
		"poi_id":      "poi-1",
		"scene_count": float64(2),
	}))
	if err != nil {
		t.Fatalf("expected event handled, got %v", err)
	}

	jobs, total, err := store.ListJobs(context.Background(), ports.JobListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if total != 1 || len(jobs) != 1 {
		t.Fatalf("expected exactly one job, got %d", total)
	}
}

func TestHandleScriptGeneratedRejectsBadPayload(t *testing.T) {
	consumer, _ := newConsumer(stubProvider{})

	err := consumer.HandleScriptGenerated(context.Background(), scriptEvent(map[string]any{
		"poi_id": "poi-1",
	}))
	if !errors.Is(err, domainerrors.ErrInvalidScriptEvent) {
		t.Fatalf("expected ErrInvalidScriptEvent, got %v", err)
	}
}

func TestHandleScriptGeneratedAcknowledgesProviderFailure(t *testing.T) {
	consumer, store := newConsumer(stubProvider{err: errors.New("provider down")})

	err := consumer.HandleScriptGenerated(context.Background(), scriptEvent(map[string]any{
		"script_id":   "script-1",
		"poi_id":      "poi-1",
		"scene_count": float64(1),
	}))
	if err != nil {
		t.Fatalf("provider failure must not trigger event retry, got %v", err)
	}

	jobs, _, err := store.ListJobs(context.Background(), ports.JobListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected the failed job persisted, got %d jobs", len(jobs))
	}
	if jobs[0].ErrorMessage == "" {
		t.Fatal("expected error message recorded on failed job")
	}
}
