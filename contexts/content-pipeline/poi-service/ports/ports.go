package ports

import (
	"context"
	"time"

	"postcard/contexts/content-pipeline/poi-service/domain/entities"
)

// POIListFilter defines read-side filtering/pagination. Page is 1-based;
// PageSize is clamped to 1..100 by the application layer.
type POIListFilter struct {
	Status   string
	Page     int
	PageSize int
}

type POIRepository interface {
	Create(ctx context.Context, poi entities.POI) error
	Update(ctx context.Context, poi entities.POI) error
	Get(ctx context.Context, poiID string) (entities.POI, error)
	List(ctx context.Context, filter POIListFilter) ([]entities.POI, int, error)
}

// EventPublisher emits poi.* events. Publishing is fire-and-forget:
// broker trouble degrades to logging and never fails the write.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, payload map[string]any)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
