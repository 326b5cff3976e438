// Package store is the PostgreSQL document store. Documents live in a single
// JSONB table partitioned by collection name; adjacency lookups are answered
// with GIN-indexed containment queries.
//
// Shared helpers (pool, logger, query timeout, change notification) live in
// the Base struct and are embedded by the collection handles.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/persistorai/pathfinder/internal/db"
	"github.com/persistorai/pathfinder/internal/dbpool"
	"github.com/persistorai/pathfinder/internal/domain"
	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for the store and its collections.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// notify sends a pg_notify on the documents_changed channel (best-effort, post-commit).
func (b *Base) notify(collection, op string, count int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, _ := json.Marshal(map[string]any{ //nolint:errcheck // static keys, cannot fail.
		"collection": collection,
		"op":         op,
		"count":      count,
	})
	if _, err := b.Pool.Exec(ctx, "SELECT pg_notify($1, $2)", db.ListenChannel, string(payload)); err != nil {
		b.Log.WithError(err).Warn("failed to send " + op + " notification for " + collection)
	}
}

// Store is a domain.Backend over the documents table.
type Store struct {
	Base
	keyField string
	group    singleflight.Group
}

var _ domain.Backend = (*Store)(nil)

// New creates a Store whose documents are keyed by keyField.
func New(base Base, keyField string) *Store {
	if keyField == "" {
		keyField = models.DefaultKeyField
	}

	return &Store{Base: base, keyField: keyField}
}

// Collection returns a handle on name, or models.ErrCollectionNotFound when
// no document has been loaded into it.
func (s *Store) Collection(ctx context.Context, name string) (pathfind.NodeStore, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var exists bool

	err := s.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM documents WHERE collection = $1)", name,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking collection %s: %w", name, err)
	}

	if !exists {
		return nil, models.ErrCollectionNotFound
	}

	return &Collection{Base: s.Base, store: s, name: name}, nil
}

// Get returns one document.
func (s *Store) Get(ctx context.Context, collection string, key models.NodeKey) (models.Document, error) {
	c := &Collection{Base: s.Base, store: s, name: collection}

	return c.FetchByKey(ctx, key)
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.HealthCheck(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	s.Pool.Close()

	return nil
}
