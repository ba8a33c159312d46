package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"postcard/contexts/content-pipeline/render-orchestrator/domain/entities"
	domainerrors "postcard/contexts/content-pipeline/render-orchestrator/domain/errors"
	"postcard/contexts/content-pipeline/render-orchestrator/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateJob(ctx context.Context, job entities.RenderJob) error {
	row := jobModelFromEntity(job)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	return nil
}

func (r *Repository) UpdateJob(ctx context.Context, job entities.RenderJob) error {
	result := r.db.WithContext(ctx).
		Model(&jobModel{}).
		Where("job_id = ?", strings.TrimSpace(job.JobID)).
		Updates(jobUpdatesFromEntity(job))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRenderNotFound
	}
	return nil
}

func (r *Repository) GetJob(ctx context.Context, jobID string) (entities.RenderJob, error) {
	var row jobModel
	err := r.db.WithContext(ctx).
		Where("job_id = ?", strings.TrimSpace(jobID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RenderJob{}, domainerrors.ErrRenderNotFound
		}
		return entities.RenderJob{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListJobs(ctx context.Context, filter ports.JobListFilter) ([]entities.RenderJob, int, error) {
	tx := r.db.WithContext(ctx).Model(&jobModel{})
	if strings.TrimSpace(filter.POIID) != "" {
		tx = tx.Where("poi_id = ?", strings.TrimSpace(filter.POIID))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var rows []jobModel
	if err := tx.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).
		Error; err != nil {
		return nil, 0, err
	}

	items := make([]entities.RenderJob, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, int(total), nil
}

func (r *Repository) CreateScene(ctx context.Context, scene entities.RenderScene) error {
	row := sceneModelFromEntity(scene)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateScene
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateScene(ctx context.Context, scene entities.RenderScene) error {
	result := r.db.WithContext(ctx).
		Model(&sceneModel{}).
		Where("scene_id = ?", strings.TrimSpace(scene.SceneID)).
		Updates(map[string]any{
			"status":      scene.Status,
			"output_path": strings.TrimSpace(scene.OutputPath),
			"provider":    strings.TrimSpace(scene.Provider),
			"cost":        scene.Cost,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRenderNotFound
	}
	return nil
}

func (r *Repository) ListScenes(ctx context.Context, jobID string) ([]entities.RenderScene, error) {
	var rows []sceneModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", strings.TrimSpace(jobID)).
		Order("scene_number ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.RenderScene, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

type jobModel struct {
	JobID              string     `gorm:"column:job_id;primaryKey"`
	POIID              string     `gorm:"column:poi_id"`
	ScriptID           string     `gorm:"column:script_id"`
	Status             string     `gorm:"column:status"`
	TotalScenes        int        `gorm:"column:total_scenes"`
	CompletedScenes    int        `gorm:"column:completed_scenes"`
	OutputPath         string     `gorm:"column:output_path"`
	VoiceoverID        string     `gorm:"column:voiceover_id"`
	VoiceoverAudioPath string     `gorm:"column:voiceover_audio_path"`
	PublishedURL       string     `gorm:"column:published_url"`
	PublishedAt        *time.Time `gorm:"column:published_at"`
	ErrorMessage       string     `gorm:"column:error_message"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	CompletedAt        *time.Time `gorm:"column:completed_at"`
}

func (jobModel) TableName() string {
	return "render_jobs"
}

func jobModelFromEntity(item entities.RenderJob) jobModel {
	return jobModel{
		JobID:              strings.TrimSpace(item.JobID),
		POIID:              strings.TrimSpace(item.POIID),
		ScriptID:           strings.TrimSpace(item.ScriptID),
		Status:             item.Status,
		TotalScenes:        item.TotalScenes,
		CompletedScenes:    item.CompletedScenes,
		OutputPath:         strings.TrimSpace(item.OutputPath),
		VoiceoverID:        strings.TrimSpace(item.VoiceoverID),
		VoiceoverAudioPath: strings.TrimSpace(item.VoiceoverAudioPath),
		PublishedURL:       strings.TrimSpace(item.PublishedURL),
		PublishedAt:        normalizeOptionalTime(item.PublishedAt),
		ErrorMessage:       item.ErrorMessage,
		CreatedAt:          item.CreatedAt.UTC(),
		CompletedAt:        normalizeOptionalTime(item.CompletedAt),
	}
}

func jobUpdatesFromEntity(item entities.RenderJob) map[string]any {
	row := jobModelFromEntity(item)
	return map[string]any{
		"status":               row.Status,
		"total_scenes":         row.TotalScenes,
		"completed_scenes":     row.CompletedScenes,
		"output_path":          row.OutputPath,
		"voiceover_id":         row.VoiceoverID,
		"voiceover_audio_path": row.VoiceoverAudioPath,
		"published_url":        row.PublishedURL,
		"published_at":         row.PublishedAt,
		"error_message":        row.ErrorMessage,
		"completed_at":         row.CompletedAt,
	}
}

func (m jobModel) toEntity() entities.RenderJob {
	return entities.RenderJob{
		JobID:              m.JobID,
		POIID:              m.POIID,
		ScriptID:           m.ScriptID,
		Status:             m.Status,
		TotalScenes:        m.TotalScenes,
		CompletedScenes:    m.CompletedScenes,
		OutputPath:         m.OutputPath,
		VoiceoverID:        m.VoiceoverID,
		VoiceoverAudioPath: m.VoiceoverAudioPath,
		PublishedURL:       m.PublishedURL,
		PublishedAt:        normalizeOptionalTime(m.PublishedAt),
		ErrorMessage:       m.ErrorMessage,
		CreatedAt:          m.CreatedAt.UTC(),
		CompletedAt:        normalizeOptionalTime(m.CompletedAt),
	}
}

type sceneModel struct {
	SceneID         string    `gorm:"column:scene_id;primaryKey"`
	JobID           string    `gorm:"column:job_id;uniqueIndex:ux_render_scenes_job_number"`
	SceneNumber     int       `gorm:"column:scene_number;uniqueIndex:ux_render_scenes_job_number"`
	Title           string    `gorm:"column:title"`
	VisualPrompt    string    `gorm:"column:visual_prompt"`
	DurationSeconds float64   `gorm:"column:duration_seconds"`
	Status          string    `gorm:"column:status"`
	OutputPath      string    `gorm:"column:output_path"`
	Provider        string    `gorm:"column:provider"`
	Cost            float64   `gorm:"column:cost"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (sceneModel) TableName() string {
	return "render_scenes"
}

func sceneModelFromEntity(item entities.RenderScene) sceneModel {
	return sceneModel{
		SceneID:         strings.TrimSpace(item.SceneID),
		JobID:           strings.TrimSpace(item.JobID),
		SceneNumber:     item.SceneNumber,
		Title:           strings.TrimSpace(item.Title),
		VisualPrompt:    item.VisualPrompt,
		DurationSeconds: item.DurationSeconds,
		Status:          item.Status,
		OutputPath:      strings.TrimSpace(item.OutputPath),
		Provider:        strings.TrimSpace(item.Provider),
		Cost:            item.Cost,
		CreatedAt:       item.CreatedAt.UTC(),
	}
}

func (m sceneModel) toEntity() entities.RenderScene {
	return entities.RenderScene{
		SceneID:         m.SceneID,
		JobID:           m.JobID,
		SceneNumber:     m.SceneNumber,
		Title:           m.Title,
		VisualPrompt:    m.VisualPrompt,
		DurationSeconds: m.DurationSeconds,
		Status:          m.Status,
		OutputPath:      m.OutputPath,
		Provider:        m.Provider,
		Cost:            m.Cost,
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.JobRepository = (*Repository)(nil)
