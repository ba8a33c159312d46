package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"postcard/contexts/content-pipeline/poi-service/adapters/memory"
	"postcard/contexts/content-pipeline/poi-service/domain/entities"
	domainerrors "postcard/contexts/content-pipeline/poi-service/domain/errors"
	"postcard/contexts/content-pipeline/poi-service/ports"
	contractsv1 "postcard/contracts/gen/events/v1"
	"postcard/internal/shared/workflow"
)

type publishedEvent struct {
	EventType string
	Key       string
	Payload   map[string]any
}

type recordingPublisher struct {
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, key string, payload map[string]any) {
	p.events = append(p.events, publishedEvent{EventType: eventType, Key: key, Payload: payload})
}

func (p *recordingPublisher) last() publishedEvent {
	if len(p.events) == 0 {
		return publishedEvent{}
	}
	return p.events[len(p.events)-1]
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type sequenceIDs struct {
	next int
}

func (g *sequenceIDs) NewID(_ context.Context) (string, error) {
	g.next++
	return fmt.Sprintf("poi-%d", g.next), nil
}

func newTestService() (Service, *recordingPublisher) {
	events := &recordingPublisher{}
	service := Service{
		POIs:   memory.NewStore(),
		Events: events,
		Clock:  fixedClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
		IDGen:  &sequenceIDs{},
	}
	return service, events
}

func validInput() CreatePOIInput {
	return CreatePOIInput{
		Name:        "Eiffel Tower",
		Description: "Wrought-iron lattice tower in Paris",
		Latitude:    48.8584,
		Longitude:   2.2945,
		Address:     "Champ de Mars",
		Tags:        []string{"landmark"},
	}
}

func createPublished(t *testing.T, service Service) entities.POI {
	t.Helper()
	poi, err := service.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.Validate(context.Background(), poi.POIID); err != nil {
		t.Fatalf("validate: %v", err)
	}
	published, err := service.Publish(context.Background(), poi.POIID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	return published
}

func TestCreatePOIStartsAsDraft(t *testing.T) {
	service, events := newTestService()

	poi, err := service.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if poi.Status != entities.POIStatusDraft {
		t.Fatalf("expected draft, got %q", poi.Status)
	}
	if poi.Version != 1 {
		t.Fatalf("expected version 1, got %d", poi.Version)
	}
	if events.last().EventType != contractsv1.POICreated {
		t.Fatalf("expected poi.created event, got %q", events.last().EventType)
	}
	if events.last().Key != poi.POIID {
		t.Fatalf("expected event keyed by poi id, got %q", events.last().Key)
	}
}

func TestCreatePOIRejectsBadInput(t *testing.T) {
	service, _ := newTestService()

	blank := validInput()
	blank.Name = "   "
	if _, err := service.Create(context.Background(), blank); !errors.Is(err, domainerrors.ErrInvalidPOIInput) {
		t.Fatalf("expected ErrInvalidPOIInput, got %v", err)
	}

	outOfRange := validInput()
	outOfRange.Latitude = 91
	if _, err := service.Create(context.Background(), outOfRange); !errors.Is(err, domainerrors.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	service, events := newTestService()

	poi := createPublished(t, service)
	if poi.Status != entities.POIStatusPublished {
		t.Fatalf("expected published, got %q", poi.Status)
	}
	if events.last().EventType != contractsv1.POIPublished {
		t.Fatalf("expected poi.published event, got %q", events.last().EventType)
	}

	archived, err := service.Archive(context.Background(), poi.POIID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived.Status != entities.POIStatusArchived {
		t.Fatalf("expected archived, got %q", archived.Status)
	}
}

func TestIllegalTransitionsAreDenied(t *testing.T) {
	service, _ := newTestService()

	poi, err := service.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// draft can only move to validated
	if _, err := service.Publish(context.Background(), poi.POIID); !errors.Is(err, workflow.ErrTransitionDenied) {
		t.Fatalf("expected ErrTransitionDenied for draft->published, got %v", err)
	}
	if _, err := service.Archive(context.Background(), poi.POIID); !errors.Is(err, workflow.ErrTransitionDenied) {
		t.Fatalf("expected ErrTransitionDenied for draft->archived, got %v", err)
	}

	archivedPOI := createPublished(t, service)
	if _, err := service.Archive(context.Background(), archivedPOI.POIID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if _, err := service.Validate(context.Background(), archivedPOI.POIID); !errors.Is(err, workflow.ErrTransitionDenied) {
		t.Fatalf("expected archived to be terminal, got %v", err)
	}
}

func TestRevertToDraftFromValidated(t *testing.T) {
	service, _ := newTestService()

	poi, err := service.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.Validate(context.Background(), poi.POIID); err != nil {
		t.Fatalf("validate: %v", err)
	}

	reverted, err := service.RevertToDraft(context.Background(), poi.POIID)
	if err != nil {
		t.Fatalf("revert: %v", err)
	}
	if reverted.Status != entities.POIStatusDraft {
		t.Fatalf("expected draft after revert, got %q", reverted.Status)
	}
}

func TestValidateRequiresCompleteRecord(t *testing.T) {
	service, _ := newTestService()

	input := validInput()
	input.Description = ""
	poi, err := service.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.Validate(context.Background(), poi.POIID); !errors.Is(err, domainerrors.ErrInvalidPOIInput) {
		t.Fatalf("expected ErrInvalidPOIInput for missing description, got %v", err)
	}
}

func TestUpdateBumpsVersionOnlyWhenPublished(t *testing.T) {
	service, events := newTestService()

	poi, err := service.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Tour Eiffel"
	updated, err := service.Update(context.Background(), poi.POIID, UpdatePOIInput{Name: &newName})
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("draft update must not bump version, got %d", updated.Version)
	}

	published := createPublished(t, service)
	updated, err = service.Update(context.Background(), published.POIID, UpdatePOIInput{Name: &newName})
	if err != nil {
		t.Fatalf("update published: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("published update must bump version, got %d", updated.Version)
	}
	if events.last().EventType != contractsv1.POIUpdated {
		t.Fatalf("expected poi.updated event, got %q", events.last().EventType)
	}
}

func TestUpdateRejectsOutOfRangeCoordinates(t *testing.T) {
	service, _ := newTestService()

	poi, err := service.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	badLongitude := 181.0
	if _, err := service.Update(context.Background(), poi.POIID, UpdatePOIInput{Longitude: &badLongitude}); !errors.Is(err, domainerrors.ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	createPublished(t, service)

	published, total, err := service.List(context.Background(), ports.POIListFilter{Status: entities.POIStatusPublished})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(published) != 1 {
		t.Fatalf("expected 1 published poi, got %d", total)
	}

	if _, _, err := service.List(context.Background(), ports.POIListFilter{Status: "bogus"}); !errors.Is(err, domainerrors.ErrInvalidListFilter) {
		t.Fatalf("expected ErrInvalidListFilter, got %v", err)
	}
}

func TestGetUnknownPOI(t *testing.T) {
	service, _ := newTestService()
	if _, err := service.Get(context.Background(), "missing"); !errors.Is(err, domainerrors.ErrPOINotFound) {
		t.Fatalf("expected ErrPOINotFound, got %v", err)
	}
}
