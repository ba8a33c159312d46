package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"postcard/contexts/content-pipeline/poi-service/domain/entities"
	domainerrors "postcard/contexts/content-pipeline/poi-service/domain/errors"
	"postcard/contexts/content-pipeline/poi-service/ports"
	contractsv1 "postcard/contracts/gen/events/v1"
	"postcard/internal/shared/workflow"
)

// Service owns POI writes and the editorial lifecycle. Every successful
// state change emits a poi.* event keyed by the POI id.
type Service struct {
	POIs   ports.POIRepository
	Events ports.EventPublisher
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

type CreatePOIInput struct {
	Name        string
	Description string
	Latitude    float64
	Longitude   float64
	Address     string
	Tags        []string
}

// UpdatePOIInput carries a partial update; nil fields are left untouched.
type UpdatePOIInput struct {
	Name        *string
	Description *string
	Latitude    *float64
	Longitude   *float64
	Address     *string
	Tags        *[]string
}

func (s Service) Create(ctx context.Context, input CreatePOIInput) (entities.POI, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return entities.POI{}, domainerrors.ErrInvalidPOIInput
	}
	if !coordinatesInRange(input.Latitude, input.Longitude) {
		return entities.POI{}, domainerrors.ErrInvalidCoordinates
	}

	poiID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.POI{}, err
	}
	now := s.now()
	poi := entities.POI{
		POIID:       poiID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Address:     strings.TrimSpace(input.Address),
		Tags:        append([]string(nil), input.Tags...),
		Status:      entities.POIStatusDraft,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.POIs.Create(ctx, poi); err != nil {
		return entities.POI{}, err
	}

	s.Events.Publish(ctx, contractsv1.POICreated, poi.POIID, map[string]any{
		"poi_id": poi.POIID,
		"name":   poi.Name,
		"status": poi.Status,
	})

	ResolveLogger(s.Logger).Info("poi created",
		"event", "poi_created",
		"module", "content-pipeline/poi-service",
		"layer", "application",
		"poi_id", poi.POIID,
	)
	return poi, nil
}

// Update applies a partial edit. Editing an already-published POI bumps
// Version so consumers can detect stale derived videos.
func (s Service) Update(ctx context.Context, poiID string, input UpdatePOIInput) (entities.POI, error) {
	poi, err := s.POIs.Get(ctx, poiID)
	if err != nil {
		return entities.POI{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return entities.POI{}, domainerrors.ErrInvalidPOIInput
		}
		poi.Name = name
	}
	if input.Description != nil {
		poi.Description = strings.TrimSpace(*input.Description)
	}
	if input.Latitude != nil {
		poi.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		poi.Longitude = *input.Longitude
	}
	if !coordinatesInRange(poi.Latitude, poi.Longitude) {
		return entities.POI{}, domainerrors.ErrInvalidCoordinates
	}
	if input.Address != nil {
		poi.Address = strings.TrimSpace(*input.Address)
	}
	if input.Tags != nil {
		poi.Tags = append([]string(nil), (*input.Tags)...)
	}

	if poi.Status == entities.POIStatusPublished {
		poi.Version++
	}
	poi.UpdatedAt = s.now()
	if err := s.POIs.Update(ctx, poi); err != nil {
		return entities.POI{}, err
	}

	s.Events.Publish(ctx, contractsv1.POIUpdated, poi.POIID, map[string]any{
		"poi_id":  poi.POIID,
		"name":    poi.Name,
		"status":  poi.Status,
		"version": poi.Version,
	})
	return poi, nil
}

// Validate moves a draft POI to validated after checking that the record
// is complete enough to generate content from.
func (s Service) Validate(ctx context.Context, poiID string) (entities.POI, error) {
	return s.transition(ctx, poiID, entities.POIStatusValidated, contractsv1.POIValidated, func(poi entities.POI) error {
		if strings.TrimSpace(poi.Name) == "" || strings.TrimSpace(poi.Description) == "" {
			return domainerrors.ErrInvalidPOIInput
		}
		if !coordinatesInRange(poi.Latitude, poi.Longitude) {
			return domainerrors.ErrInvalidCoordinates
		}
		return nil
	})
}

// Publish moves a validated POI to published, making it eligible for the
// generation pipeline.
func (s Service) Publish(ctx context.Context, poiID string) (entities.POI, error) {
	return s.transition(ctx, poiID, entities.POIStatusPublished, contractsv1.POIPublished, nil)
}

// Archive retires a published POI.
func (s Service) Archive(ctx context.Context, poiID string) (entities.POI, error) {
	return s.transition(ctx, poiID, entities.POIStatusArchived, contractsv1.POIArchived, nil)
}

// RevertToDraft sends a validated POI back for editing.
func (s Service) RevertToDraft(ctx context.Context, poiID string) (entities.POI, error) {
	return s.transition(ctx, poiID, entities.POIStatusDraft, contractsv1.POIStatusChanged, nil)
}

func (s Service) transition(
	ctx context.Context,
	poiID string,
	target string,
	eventType string,
	check func(entities.POI) error,
) (entities.POI, error) {
	poi, err := s.POIs.Get(ctx, poiID)
	if err != nil {
		return entities.POI{}, err
	}
	if err := workflow.CheckTransition(poi.Status, target, workflow.POITable); err != nil {
		return entities.POI{}, err
	}
	if check != nil {
		if err := check(poi); err != nil {
			return entities.POI{}, err
		}
	}

	previous := poi.Status
	poi.Status = target
	poi.UpdatedAt = s.now()
	if err := s.POIs.Update(ctx, poi); err != nil {
		return entities.POI{}, err
	}

	s.Events.Publish(ctx, eventType, poi.POIID, map[string]any{
		"poi_id":          poi.POIID,
		"previous_status": previous,
		"status":          poi.Status,
		"version":         poi.Version,
	})

	ResolveLogger(s.Logger).Info("poi status changed",
		"event", "poi_status_changed",
		"module", "content-pipeline/poi-service",
		"layer", "application",
		"poi_id", poi.POIID,
		"from", previous,
		"to", poi.Status,
	)
	return poi, nil
}

func (s Service) Get(ctx context.Context, poiID string) (entities.POI, error) {
	return s.POIs.Get(ctx, poiID)
}

func (s Service) List(ctx context.Context, filter ports.POIListFilter) ([]entities.POI, int, error) {
	switch filter.Status {
	case "", entities.POIStatusDraft, entities.POIStatusValidated, entities.POIStatusPublished, entities.POIStatusArchived:
	default:
		return nil, 0, domainerrors.ErrInvalidListFilter
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	return s.POIs.List(ctx, filter)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func coordinatesInRange(latitude float64, longitude float64) bool {
	return latitude >= -90 && latitude <= 90 && longitude >= -180 && longitude <= 180
}
