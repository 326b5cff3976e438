package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/memstore"
	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

// mockPublisher records published events.
type mockPublisher struct {
	mu     sync.Mutex
	events []models.Event
	types  []string
}

func (m *mockPublisher) BroadcastEvent(eventType string, data json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var evt models.Event
	_ = json.Unmarshal(data, &evt)

	m.types = append(m.types, eventType)
	m.events = append(m.events, evt)
}

// mockBackend records calls and returns configured responses.
type mockBackend struct {
	mu    sync.Mutex
	calls []string

	upsert func(ctx context.Context, collection string, docs []models.Document) (int, error)
	get    func(ctx context.Context, collection string, key models.NodeKey) (models.Document, error)
}

func (m *mockBackend) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockBackend) Collection(context.Context, string) (pathfind.NodeStore, error) {
	m.record("Collection")
	return nil, models.ErrCollectionNotFound
}

func (m *mockBackend) Upsert(ctx context.Context, collection string, docs []models.Document) (int, error) {
	m.record("Upsert")
	return m.upsert(ctx, collection, docs)
}

func (m *mockBackend) Get(ctx context.Context, collection string, key models.NodeKey) (models.Document, error) {
	m.record("Get")
	return m.get(ctx, collection, key)
}

func (m *mockBackend) Ping(context.Context) error { return nil }

func (m *mockBackend) Close() error { return nil }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}

// diamondStore holds A->{B,C}, B->D, C->D with weights favouring C.
func diamondStore() *memstore.Store {
	s := memstore.New("")
	_, _ = s.Upsert(context.Background(), "graph", []models.Document{
		{"_id": "A", "connections": []any{
			map[string]any{"_id": "B", "w": 5.0},
			map[string]any{"_id": "C", "w": 1.0},
		}},
		{"_id": "B", "connections": []any{map[string]any{"_id": "D", "w": 1.0}}},
		{"_id": "C", "connections": []any{map[string]any{"_id": "D", "w": 1.0}}},
		{"_id": "D", "connections": []any{}},
	})

	return s
}

func ptr[T any](v T) *T { return &v }
