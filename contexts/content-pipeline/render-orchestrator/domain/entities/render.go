package entities

import "time"

// Render job statuses. pending is initial; completed and failed are
// terminal unless an explicit retry moves failed back to pending.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Scene statuses. A scene failure fails the whole job, so scenes never
// carry a failed status of their own.
const (
	SceneStatusPending   = "pending"
	SceneStatusCompleted = "completed"
)

// RenderJob is created when a script.generated event is consumed and
// mutated by the scene loop plus the explicit voiceover/publish/retry
// operations. Jobs are never deleted by this core.
type RenderJob struct {
	JobID    string
	POIID    string
	ScriptID string
	Status   string

	TotalScenes     int
	CompletedScenes int

	OutputPath         string
	VoiceoverID        string
	VoiceoverAudioPath string
	PublishedURL       string
	PublishedAt        *time.Time
	ErrorMessage       string

	CreatedAt   time.Time
	CompletedAt *time.Time
}

// RenderScene is one atomic unit of generated content, exclusively owned
// by its job. SceneNumber is 1-based and contiguous within the job.
type RenderScene struct {
	SceneID     string
	JobID       string
	SceneNumber int

	Title           string
	VisualPrompt    string
	DurationSeconds float64

	Status     string
	OutputPath string
	Provider   string
	Cost       float64

	CreatedAt time.Time
}
