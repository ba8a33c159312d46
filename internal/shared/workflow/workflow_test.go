package workflow

import (
	"errors"
	"strings"
	"testing"
)

func TestPOITableEdges(t *testing.T) {
	legal := [][2]string{
		{"draft", "validated"},
		{"validated", "published"},
		{"validated", "draft"},
		{"published", "archived"},
	}
	for _, edge := range legal {
		if err := CheckTransition(edge[0], edge[1], POITable); err != nil {
			t.Fatalf("expected %s→%s legal, got %v", edge[0], edge[1], err)
		}
	}

	illegal := [][2]string{
		{"draft", "published"},
		{"draft", "archived"},
		{"published", "draft"},
		{"archived", "draft"},
		{"archived", "published"},
	}
	for _, edge := range illegal {
		if err := CheckTransition(edge[0], edge[1], POITable); !errors.Is(err, ErrTransitionDenied) {
			t.Fatalf("expected %s→%s denied, got %v", edge[0], edge[1], err)
		}
	}
}

func TestRenderRetryTableEdges(t *testing.T) {
	if err := CheckTransition("failed", "pending", RenderRetryTable); err != nil {
		t.Fatalf("expected failed→pending legal, got %v", err)
	}
	if err := CheckTransition("completed", "pending", RenderRetryTable); !errors.Is(err, ErrTransitionDenied) {
		t.Fatalf("expected completed→pending denied, got %v", err)
	}
}

func TestTransitionErrorListsAllowedTargets(t *testing.T) {
	err := CheckTransition("validated", "archived", POITable)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransitionError, got %T", err)
	}
	msg := te.Error()
	if !strings.Contains(msg, "published") || !strings.Contains(msg, "draft") {
		t.Fatalf("expected allowed targets in message, got %q", msg)
	}
}

func TestCheckTransitionUnknownStatusDenied(t *testing.T) {
	err := CheckTransition("bogus", "validated", POITable)
	if !errors.Is(err, ErrTransitionDenied) {
		t.Fatalf("expected denial for unknown status, got %v", err)
	}
	if !strings.Contains(err.Error(), "none") {
		t.Fatalf("expected empty allowed set reported as none, got %q", err.Error())
	}
}
