package entities

import "time"

const (
	POIStatusDraft     = "draft"
	POIStatusValidated = "validated"
	POIStatusPublished = "published"
	POIStatusArchived  = "archived"
)

// POI is a point of interest the pipeline generates videos for. Version
// increments on every update to an already-published POI so downstream
// consumers can detect stale derived content.
type POI struct {
	POIID       string
	Name        string
	Description string
	Latitude    float64
	Longitude   float64
	Address     string
	Tags        []string
	Status      string
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
