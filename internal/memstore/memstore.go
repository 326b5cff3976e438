// Package memstore is an in-memory document store. It serves tests and
// single-process deployments that load their graph at startup.
package memstore

import (
	"context"
	"sync"

	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

// Store holds named collections in memory.
type Store struct {
	mu          sync.RWMutex
	keyField    string
	collections map[string]*Collection
}

// New creates an empty store keyed by keyField.
func New(keyField string) *Store {
	if keyField == "" {
		keyField = models.DefaultKeyField
	}

	return &Store{keyField: keyField, collections: make(map[string]*Collection)}
}

// Collection returns the named collection or models.ErrCollectionNotFound.
func (s *Store) Collection(_ context.Context, name string) (pathfind.NodeStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, models.ErrCollectionNotFound
	}

	return c, nil
}

// Upsert inserts or replaces documents, creating the collection on first use.
func (s *Store) Upsert(_ context.Context, collection string, docs []models.Document) (int, error) {
	s.mu.Lock()
	c, ok := s.collections[collection]
	if !ok {
		c = &Collection{keyField: s.keyField, docs: make(map[models.NodeKey]models.Document)}
		s.collections[collection] = c
	}
	s.mu.Unlock()

	return c.put(docs)
}

// Get returns one document.
func (s *Store) Get(ctx context.Context, collection string, key models.NodeKey) (models.Document, error) {
	c, err := s.Collection(ctx, collection)
	if err != nil {
		return nil, err
	}

	return c.FetchByKey(ctx, key)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Collection is one named set of documents.
type Collection struct {
	mu       sync.RWMutex
	keyField string
	docs     map[models.NodeKey]models.Document
	order    []models.NodeKey
}

var (
	_ pathfind.NodeStore = (*Collection)(nil)
	_ pathfind.Scanner   = (*Collection)(nil)
)

func (c *Collection) put(docs []models.Document) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0

	for i, d := range docs {
		k, ok := d.Key(c.keyField)
		if !ok {
			return n, models.InvalidArgument("document %d has no %s", i, c.keyField)
		}

		if _, exists := c.docs[k]; !exists {
			c.order = append(c.order, k)
		}

		c.docs[k] = d.Clone()
		n++
	}

	return n, nil
}

// FetchByKey returns a copy of the document with key.
func (c *Collection) FetchByKey(_ context.Context, key models.NodeKey) (models.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.docs[key]
	if !ok {
		return nil, models.ErrNodeNotFound
	}

	return d.Clone(), nil
}

// FetchManyByKeys returns the documents that exist among keys.
func (c *Collection) FetchManyByKeys(_ context.Context, keys []models.NodeKey) ([]models.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Document, 0, len(keys))

	for _, k := range keys {
		if d, ok := c.docs[k]; ok {
			out = append(out, d.Clone())
		}
	}

	return out, nil
}

// FetchByReverseAdjacency scans the collection in insertion order.
func (c *Collection) FetchByReverseAdjacency(
	_ context.Context, key models.NodeKey, field, embeddedKey string, restrict models.Filter,
) ([]models.Document, error) {
	if embeddedKey == "" {
		embeddedKey = c.keyField
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Document

	for _, k := range c.order {
		d := c.docs[k]
		if pathfind.References(d, field, embeddedKey, key) && restrict.Matches(d) {
			out = append(out, d.Clone())
		}
	}

	return out, nil
}

// Scan calls fn for every document in insertion order.
func (c *Collection) Scan(ctx context.Context, fn func(models.Document) error) error {
	c.mu.RLock()
	docs := make([]models.Document, 0, len(c.order))
	for _, k := range c.order {
		docs = append(docs, c.docs[k].Clone())
	}
	c.mu.RUnlock()

	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := fn(d); err != nil {
			return err
		}
	}

	return nil
}

// Len returns the number of documents.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.docs)
}
