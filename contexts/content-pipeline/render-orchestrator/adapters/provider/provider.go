package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"postcard/contexts/content-pipeline/render-orchestrator/ports"
)

// Stub returns placeholder data without any external call. It is the
// default provider and the fallback target of the live one.
type Stub struct{}

func (Stub) GenerateScene(_ context.Context, prompt string, durationSeconds float64) (ports.SceneOutput, error) {
	_ = prompt
	_ = durationSeconds
	sceneRef := uuid.NewString()[:8]
	return ports.SceneOutput{
		OutputPath: fmt.Sprintf("/data/renders/stub_%s.mp4", sceneRef),
		Provider:   "stub",
		Cost:       0,
	}, nil
}

// Live calls the real generation API. Any transport error, non-2xx
// response, or open circuit degrades to the stub's output instead of
// propagating, matching the degraded-mode contract of the rest of the
// core.
type Live struct {
	apiURL  string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewLive(apiURL string, apiKey string, logger *slog.Logger) *Live {
	if logger == nil {
		logger = slog.Default()
	}
	return &Live{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 120 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "scene-provider",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
		logger: logger,
	}
}

type generationRequest struct {
	Prompt   string `json:"prompt"`
	Duration int    `json:"duration"`
	Model    string `json:"model"`
}

type generationResponse struct {
	OutputURL string  `json:"output_url"`
	Cost      float64 `json:"cost"`
}

func (l *Live) GenerateScene(ctx context.Context, prompt string, durationSeconds float64) (ports.SceneOutput, error) {
	if l.apiKey == "" {
		l.logger.Error("provider api key not set, falling back to stub",
			"event", "provider_missing_key",
			"module", "content-pipeline/render-orchestrator",
			"layer", "adapter",
		)
		return Stub{}.GenerateScene(ctx, prompt, durationSeconds)
	}

	result, err := l.breaker.Execute(func() (any, error) {
		return l.callAPI(ctx, prompt, durationSeconds)
	})
	if err != nil {
		l.logger.Error("provider call failed, falling back to stub",
			"event", "provider_fallback",
			"module", "content-pipeline/render-orchestrator",
			"layer", "adapter",
			"error", err.Error(),
		)
		return Stub{}.GenerateScene(ctx, prompt, durationSeconds)
	}
	return result.(ports.SceneOutput), nil
}

func (l *Live) callAPI(ctx context.Context, prompt string, durationSeconds float64) (ports.SceneOutput, error) {
	body, err := json.Marshal(generationRequest{
		Prompt:   prompt,
		Duration: int(durationSeconds),
		Model:    "gen-3",
	})
	if err != nil {
		return ports.SceneOutput{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.apiURL+"/generations", bytes.NewReader(body))
	if err != nil {
		return ports.SceneOutput{}, err
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return ports.SceneOutput{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ports.SceneOutput{}, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var decoded generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.SceneOutput{}, err
	}
	return ports.SceneOutput{
		OutputPath: decoded.OutputURL,
		Provider:   "runway",
		Cost:       decoded.Cost,
	}, nil
}

// Select picks the provider implementation for the configured mode.
func Select(mode string, apiURL string, apiKey string, logger *slog.Logger) ports.SceneProvider {
	if mode == "live" {
		return NewLive(apiURL, apiKey, logger)
	}
	return Stub{}
}

var (
	_ ports.SceneProvider = Stub{}
	_ ports.SceneProvider = (*Live)(nil)
)
