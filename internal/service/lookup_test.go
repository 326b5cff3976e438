package service

import (
	"context"
	"errors"
	"testing"

	"github.com/persistorai/pathfinder/internal/models"
)

func routeStage() map[string]any {
	return map[string]any{
		"$bidirectionalGraphLookup": map[string]any{
			"from":             "graph",
			"as":               "route",
			"connectFromField": "connections._id",
			"connectToField":   "_id",
			"startWith":        "$from",
			"target":           "$to",
		},
	}
}

func TestLookupService_Lookup(t *testing.T) {
	pub := &mockPublisher{}
	settings := DefaultSettings()
	settings.LookupSingleShot = false
	svc := NewLookupService(diamondStore(), settings, pub, quietLogger())

	res, err := svc.Lookup(context.Background(), models.LookupRequest{
		Stage: routeStage(),
		Documents: []models.Document{
			{"from": "A", "to": "D"},
			{"from": "D", "to": "A"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(res.Results))
	}

	if route, _ := res.Results[0]["route"].([]any); len(route) != 3 {
		t.Errorf("first route = %v, want 3 records", res.Results[0]["route"])
	}

	if route, _ := res.Results[1]["route"].([]any); len(route) != 0 {
		t.Errorf("reverse route = %v, want empty", res.Results[1]["route"])
	}

	if len(pub.events) != 1 || pub.types[0] != models.EventLookupCompleted || pub.events[0].Inputs != 2 {
		t.Errorf("unexpected events %v %+v", pub.types, pub.events)
	}
}

func TestLookupService_SingleShotDefault(t *testing.T) {
	svc := NewLookupService(diamondStore(), DefaultSettings(), nil, quietLogger())

	res, err := svc.Lookup(context.Background(), models.LookupRequest{
		Stage:     routeStage(),
		Documents: []models.Document{{"from": "A", "to": "D"}, {"from": "B", "to": "D"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Results) != 1 {
		t.Errorf("single-shot lookup returned %d results, want 1", len(res.Results))
	}
}

func TestLookupService_InvalidStage(t *testing.T) {
	svc := NewLookupService(diamondStore(), DefaultSettings(), nil, quietLogger())

	_, err := svc.Lookup(context.Background(), models.LookupRequest{
		Stage:     map[string]any{"$bidirectionalGraphLookup": map[string]any{"from": "graph"}},
		Documents: []models.Document{{}},
	})
	if !errors.Is(err, models.ErrInvalidStageSpec) {
		t.Fatalf("expected ErrInvalidStageSpec, got %v", err)
	}
}
