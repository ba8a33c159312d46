package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"postcard/contexts/content-pipeline/render-orchestrator/domain/entities"
	domainerrors "postcard/contexts/content-pipeline/render-orchestrator/domain/errors"
	"postcard/contexts/content-pipeline/render-orchestrator/ports"
)

// Store is the in-memory JobRepository used by tests and the developer
// bootstrap path. All methods copy on the way in and out.
type Store struct {
	mu     sync.RWMutex
	jobs   map[string]entities.RenderJob
	scenes map[string][]entities.RenderScene
}

func NewStore() *Store {
	return &Store{
		jobs:   make(map[string]entities.RenderJob),
		scenes: make(map[string][]entities.RenderScene),
	}
}

func (s *Store) CreateJob(_ context.Context, job entities.RenderJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.JobID] = job
	return nil
}

func (s *Store) UpdateJob(_ context.Context, job entities.RenderJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.JobID]; !ok {
		return domainerrors.ErrRenderNotFound
	}
	s.jobs[job.JobID] = job
	return nil
}

func (s *Store) GetJob(_ context.Context, jobID string) (entities.RenderJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return entities.RenderJob{}, domainerrors.ErrRenderNotFound
	}
	return job, nil
}

func (s *Store) ListJobs(_ context.Context, filter ports.JobListFilter) ([]entities.RenderJob, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]entities.RenderJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.POIID != "" && job.POIID != filter.POIID {
			continue
		}
		matched = append(matched, job)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].JobID > matched[j].JobID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	start := (page - 1) * size
	if start >= total {
		return []entities.RenderJob{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return append([]entities.RenderJob(nil), matched[start:end]...), total, nil
}

func (s *Store) CreateScene(_ context.Context, scene entities.RenderScene) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.scenes[scene.JobID] {
		if existing.SceneNumber == scene.SceneNumber {
			return domainerrors.ErrDuplicateScene
		}
	}
	s.scenes[scene.JobID] = append(s.scenes[scene.JobID], scene)
	return nil
}

func (s *Store) UpdateScene(_ context.Context, scene entities.RenderScene) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.scenes[scene.JobID]
	for i, existing := range items {
		if existing.SceneID == scene.SceneID {
			items[i] = scene
			return nil
		}
	}
	return domainerrors.ErrRenderNotFound
}

func (s *Store) ListScenes(_ context.Context, jobID string) ([]entities.RenderScene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := append([]entities.RenderScene(nil), s.scenes[jobID]...)
	sort.Slice(items, func(i, j int) bool { return items[i].SceneNumber < items[j].SceneNumber })
	return items, nil
}

// Now implements ports.Clock for the in-memory wiring.
func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// NewID implements ports.IDGenerator for the in-memory wiring.
func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var (
	_ ports.JobRepository = (*Store)(nil)
	_ ports.Clock         = (*Store)(nil)
	_ ports.IDGenerator   = (*Store)(nil)
)
