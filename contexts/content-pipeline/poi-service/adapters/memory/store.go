package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"postcard/contexts/content-pipeline/poi-service/domain/entities"
	domainerrors "postcard/contexts/content-pipeline/poi-service/domain/errors"
	"postcard/contexts/content-pipeline/poi-service/ports"
)

// Store is the in-memory POIRepository used by tests and the developer
// bootstrap path.
type Store struct {
	mu   sync.RWMutex
	pois map[string]entities.POI
}

func NewStore() *Store {
	return &Store{pois: make(map[string]entities.POI)}
}

func (s *Store) Create(_ context.Context, poi entities.POI) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pois[poi.POIID] = clonePOI(poi)
	return nil
}

func (s *Store) Update(_ context.Context, poi entities.POI) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pois[poi.POIID]; !ok {
		return domainerrors.ErrPOINotFound
	}
	s.pois[poi.POIID] = clonePOI(poi)
	return nil
}

func (s *Store) Get(_ context.Context, poiID string) (entities.POI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poi, ok := s.pois[poiID]
	if !ok {
		return entities.POI{}, domainerrors.ErrPOINotFound
	}
	return clonePOI(poi), nil
}

func (s *Store) List(_ context.Context, filter ports.POIListFilter) ([]entities.POI, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.POI, 0, len(s.pois))
	for _, poi := range s.pois {
		if filter.Status != "" && poi.Status != filter.Status {
			continue
		}
		items = append(items, clonePOI(poi))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].POIID < items[j].POIID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	total := len(items)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []entities.POI{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return items[start:end], total, nil
}

// Now implements ports.Clock for the in-memory wiring.
func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// NewID implements ports.IDGenerator for the in-memory wiring.
func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func clonePOI(poi entities.POI) entities.POI {
	poi.Tags = append([]string(nil), poi.Tags...)
	return poi
}

var (
	_ ports.POIRepository = (*Store)(nil)
	_ ports.Clock         = (*Store)(nil)
	_ ports.IDGenerator   = (*Store)(nil)
)
