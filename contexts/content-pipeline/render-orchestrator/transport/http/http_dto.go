package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SceneDTO struct {
	SceneID         string  `json:"scene_id"`
	JobID           string  `json:"job_id"`
	SceneNumber     int     `json:"scene_number"`
	Title           string  `json:"title"`
	VisualPrompt    string  `json:"visual_prompt"`
	DurationSeconds float64 `json:"duration_seconds"`
	Status          string  `json:"status"`
	OutputPath      string  `json:"output_path,omitempty"`
	Provider        string  `json:"provider,omitempty"`
	Cost            float64 `json:"cost"`
	CreatedAt       string  `json:"created_at"`
}

type RenderJobDTO struct {
	JobID              string `json:"job_id"`
	POIID              string `json:"poi_id"`
	ScriptID           string `json:"script_id"`
	Status             string `json:"status"`
	TotalScenes        int    `json:"total_scenes"`
	CompletedScenes    int    `json:"completed_scenes"`
	OutputPath         string `json:"output_path,omitempty"`
	VoiceoverID        string `json:"voiceover_id,omitempty"`
	VoiceoverAudioPath string `json:"voiceover_audio_path,omitempty"`
	PublishedURL       string `json:"published_url,omitempty"`
	PublishedAt        string `json:"published_at,omitempty"`
	ErrorMessage       string `json:"error_message,omitempty"`
	CreatedAt          string `json:"created_at"`
	CompletedAt        string `json:"completed_at,omitempty"`
}

type GetRenderResponse struct {
	Job RenderJobDTO `json:"job"`
}

type ListScenesResponse struct {
	Items []SceneDTO `json:"items"`
}

type ListRendersResponse struct {
	Items      []RenderJobDTO `json:"items"`
	Pagination PaginationDTO  `json:"pagination"`
}

type PaginationDTO struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

type AttachVoiceoverRequest struct {
	VoiceoverID string `json:"voiceover_id"`
	AudioPath   string `json:"audio_path"`
}

type PublishVideoResponse struct {
	Job          RenderJobDTO `json:"job"`
	PublishedURL string       `json:"published_url"`
}

type RetryRenderResponse struct {
	Job RenderJobDTO `json:"job"`
}
