package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"postcard/contexts/content-pipeline/render-orchestrator/application"
	"postcard/contexts/content-pipeline/render-orchestrator/domain/entities"
	"postcard/contexts/content-pipeline/render-orchestrator/ports"
	httptransport "postcard/contexts/content-pipeline/render-orchestrator/transport/http"
)

type Handler struct {
	Renders application.Service
	Logger  *slog.Logger
}

func (h Handler) GetRenderHandler(ctx context.Context, jobID string) (httptransport.GetRenderResponse, error) {
	job, err := h.Renders.GetRender(ctx, jobID)
	if err != nil {
		return httptransport.GetRenderResponse{}, err
	}
	return httptransport.GetRenderResponse{Job: mapJob(job)}, nil
}

func (h Handler) ListScenesHandler(ctx context.Context, jobID string) (httptransport.ListScenesResponse, error) {
	scenes, err := h.Renders.GetScenes(ctx, jobID)
	if err != nil {
		return httptransport.ListScenesResponse{}, err
	}
	items := make([]httptransport.SceneDTO, 0, len(scenes))
	for _, scene := range scenes {
		items = append(items, mapScene(scene))
	}
	return httptransport.ListScenesResponse{Items: items}, nil
}

func (h Handler) ListRendersHandler(
	ctx context.Context,
	poiID string,
	page int,
	pageSize int,
) (httptransport.ListRendersResponse, error) {
	jobs, total, err := h.Renders.ListRenders(ctx, ports.JobListFilter{
		POIID:    poiID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return httptransport.ListRendersResponse{}, err
	}
	items := make([]httptransport.RenderJobDTO, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, mapJob(job))
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return httptransport.ListRendersResponse{
		Items: items,
		Pagination: httptransport.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

func (h Handler) AttachVoiceoverHandler(
	ctx context.Context,
	jobID string,
	req httptransport.AttachVoiceoverRequest,
) (httptransport.GetRenderResponse, error) {
	job, err := h.Renders.AttachVoiceover(ctx, jobID, req.VoiceoverID, req.AudioPath)
	if err != nil {
		return httptransport.GetRenderResponse{}, err
	}
	return httptransport.GetRenderResponse{Job: mapJob(job)}, nil
}

func (h Handler) PublishVideoHandler(ctx context.Context, jobID string) (httptransport.PublishVideoResponse, error) {
	job, err := h.Renders.PublishVideo(ctx, jobID)
	if err != nil {
		return httptransport.PublishVideoResponse{}, err
	}
	return httptransport.PublishVideoResponse{
		Job:          mapJob(job),
		PublishedURL: job.PublishedURL,
	}, nil
}

func (h Handler) RetryRenderHandler(ctx context.Context, jobID string) (httptransport.RetryRenderResponse, error) {
	job, err := h.Renders.RetryRender(ctx, jobID)
	if err != nil {
		return httptransport.RetryRenderResponse{}, err
	}
	return httptransport.RetryRenderResponse{Job: mapJob(job)}, nil
}

func mapJob(item entities.RenderJob) httptransport.RenderJobDTO {
	return httptransport.RenderJobDTO{
		JobID:              item.JobID,
		POIID:              item.POIID,
		ScriptID:           item.ScriptID,
		Status:             item.Status,
		TotalScenes:        item.TotalScenes,
		CompletedScenes:    item.CompletedScenes,
		OutputPath:         item.OutputPath,
		VoiceoverID:        item.VoiceoverID,
		VoiceoverAudioPath: item.VoiceoverAudioPath,
		PublishedURL:       item.PublishedURL,
		PublishedAt:        formatOptionalTime(item.PublishedAt),
		ErrorMessage:       item.ErrorMessage,
		CreatedAt:          item.CreatedAt.UTC().Format(time.RFC3339),
		CompletedAt:        formatOptionalTime(item.CompletedAt),
	}
}

func mapScene(item entities.RenderScene) httptransport.SceneDTO {
	return httptransport.SceneDTO{
		SceneID:         item.SceneID,
		JobID:           item.JobID,
		SceneNumber:     item.SceneNumber,
		Title:           item.Title,
		VisualPrompt:    item.VisualPrompt,
		DurationSeconds: item.DurationSeconds,
		Status:          item.Status,
		OutputPath:      item.OutputPath,
		Provider:        item.Provider,
		Cost:            item.Cost,
		CreatedAt:       item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatOptionalTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
