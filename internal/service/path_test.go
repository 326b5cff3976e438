package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/models"
)

func TestPathService_Algorithms(t *testing.T) {
	tests := []struct {
		algorithm models.Algorithm
		weight    string
		wantNodes []string
	}{
		{algorithm: models.AlgorithmBFS, wantNodes: []string{"A", "B", "D"}},
		{algorithm: models.AlgorithmWeighted, weight: "w", wantNodes: []string{"A", "C", "D"}},
		{algorithm: models.AlgorithmBidirectional},
		{algorithm: models.AlgorithmBatch},
	}

	for _, tc := range tests {
		t.Run(string(tc.algorithm), func(t *testing.T) {
			pub := &mockPublisher{}
			svc := NewPathService(diamondStore(), DefaultSettings(), pub, quietLogger())

			path, err := svc.FindPath(context.Background(), models.PathRequest{
				Collection:     "graph",
				Algorithm:      tc.algorithm,
				Start:          "A",
				End:            "D",
				AdjacencyField: "connections",
				WeightField:    tc.weight,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !path.Found || path.Depth != 2 {
				t.Fatalf("path = %+v, want found at depth 2", path)
			}

			if tc.wantNodes != nil {
				for i, k := range path.Keys("_id") {
					if string(k) != tc.wantNodes[i] {
						t.Errorf("nodes = %v, want %v", path.Keys("_id"), tc.wantNodes)
						break
					}
				}
			}

			if len(pub.events) != 1 || pub.types[0] != models.EventSearchCompleted {
				t.Fatalf("expected one search.completed event, got %v", pub.types)
			}

			if evt := pub.events[0]; evt.Collection != "graph" || !evt.Found || evt.Algorithm != tc.algorithm {
				t.Errorf("unexpected event %+v", evt)
			}
		})
	}
}

func TestPathService_DefaultDepth(t *testing.T) {
	settings := DefaultSettings()
	settings.DefaultMaxDepth = 1
	svc := NewPathService(diamondStore(), settings, nil, quietLogger())

	req := models.PathRequest{Collection: "graph", Start: "A", End: "D", AdjacencyField: "connections"}

	path, err := svc.FindPath(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if path.Found {
		t.Error("expected depth 1 default to cut the search")
	}

	req.MaxDepth = ptr(2)

	path, err = svc.FindPath(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !path.Found {
		t.Error("expected explicit max_depth to override the default")
	}
}

func TestPathService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     models.PathRequest
		memory  int64
		wantErr error
	}{
		{
			name:    "invalid request",
			req:     models.PathRequest{Collection: "graph", Start: "A", AdjacencyField: "connections"},
			wantErr: models.ErrMissingEnd,
		},
		{
			name:    "unknown collection",
			req:     models.PathRequest{Collection: "nope", Start: "A", End: "D", AdjacencyField: "connections"},
			wantErr: models.ErrCollectionNotFound,
		},
		{
			name:    "memory ceiling",
			req:     models.PathRequest{Collection: "graph", Start: "A", End: "D", AdjacencyField: "connections"},
			memory:  16,
			wantErr: models.ErrMemoryLimitExceeded,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			settings := DefaultSettings()
			if tc.memory > 0 {
				settings.MaxMemoryBytes = tc.memory
			}

			pub := &mockPublisher{}
			svc := NewPathService(diamondStore(), settings, pub, quietLogger())

			_, err := svc.FindPath(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			if len(pub.events) != 0 {
				t.Errorf("expected no events on error, got %v", pub.types)
			}
		})
	}
}

func TestPathService_LogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer

	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)

	svc := NewPathService(diamondStore(), DefaultSettings(), nil, log)
	ctx := models.WithRequestID(context.Background(), "req-42")

	_, err := svc.FindPath(ctx, models.PathRequest{
		Collection: "graph", Start: "A", End: "D", AdjacencyField: "connections",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]bool{}

	dec := json.NewDecoder(&buf)
	for dec.More() {
		var entry map[string]any
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decoding log line: %v", err)
		}

		msg, _ := entry["msg"].(string)
		if entry["request_id"] != "req-42" {
			t.Errorf("log %q missing request_id: %v", msg, entry)
		}

		seen[msg] = true
	}

	for _, msg := range []string{"path.find", "pathfind.bfs"} {
		if !seen[msg] {
			t.Errorf("expected a %q log entry, got %v", msg, seen)
		}
	}
}
