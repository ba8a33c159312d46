package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrMalformedEvent marks a message body that cannot be decoded into a
// valid Envelope. Consumers treat it as a retryable failure.
var ErrMalformedEvent = errors.New("malformed event")

// SchemaVersion is the envelope version this runtime produces. Consumers
// accept higher versions best-effort.
const SchemaVersion = 1

// Topics every producer/consumer in the pipeline shares.
const (
	TopicPOIEvents   = "poi.events"
	TopicAssetEvents = "asset.events"
	TopicVideoEvents = "video.events"
	TopicDLQEvents   = "dlq.events"
)

// Event types carried on the topics above.
const (
	POICreated       = "poi.created"
	POIUpdated       = "poi.updated"
	POIStatusChanged = "poi.status_changed"
	POIValidated     = "poi.validated"
	POIPublished     = "poi.published"
	POIArchived      = "poi.archived"

	AssetCreated = "asset.created"
	AssetUpdated = "asset.updated"

	ScriptGenerated        = "script.generated"
	TranscriptionCompleted = "transcription.completed"
	VoiceoverCompleted     = "voiceover.completed"
	RenderSceneGenerated   = "render.scene.generated"
	RenderCompleted        = "render.completed"
	VideoPublished         = "video.published"

	DLQMessageFailed = "dlq.message_failed"
)

// Envelope is the canonical, versioned event envelope for cross-runtime use.
// Serialization stays plain UTF-8 JSON so any consumer language and broker
// tooling can read it.
type Envelope struct {
	EventID       string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	OccurredAt    time.Time      `json:"occurred_at"`
	SchemaVersion int            `json:"schema_version"`
	CorrelationID string         `json:"correlation_id"`
	Payload       map[string]any `json:"payload"`
}

// New builds an Envelope with a fresh event id and the current UTC time.
// The event id is immutable for the lifetime of the logical occurrence;
// republishing for retry mints a new one.
func New(eventType string, payload map[string]any, correlationID string) Envelope {
	if payload == nil {
		payload = map[string]any{}
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		OccurredAt:    time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		CorrelationID: correlationID,
		Payload:       payload,
	}
}

// Marshal encodes the envelope as one JSON object per message body.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes raw message bytes into an Envelope. Missing or
// ill-typed required fields yield an error wrapping ErrMalformedEvent.
// Schema versions above the current one are accepted as-is.
func Unmarshal(raw []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if e.EventID == "" {
		return Envelope{}, fmt.Errorf("%w: missing event_id", ErrMalformedEvent)
	}
	if e.EventType == "" {
		return Envelope{}, fmt.Errorf("%w: missing event_type", ErrMalformedEvent)
	}
	if e.OccurredAt.IsZero() {
		return Envelope{}, fmt.Errorf("%w: missing occurred_at", ErrMalformedEvent)
	}
	if e.SchemaVersion < 1 {
		return Envelope{}, fmt.Errorf("%w: schema_version must be >= 1", ErrMalformedEvent)
	}
	if e.Payload == nil {
		e.Payload = map[string]any{}
	}
	return e, nil
}
