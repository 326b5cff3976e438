package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

// Collection is a handle on one named collection.
type Collection struct {
	Base
	store *Store
	name  string
}

var (
	_ pathfind.NodeStore = (*Collection)(nil)
	_ pathfind.Scanner   = (*Collection)(nil)
)

// FetchByKey returns the document with key. Concurrent fetches of the same
// key share one round trip.
func (c *Collection) FetchByKey(ctx context.Context, key models.NodeKey) (models.Document, error) {
	val, err, _ := c.store.group.Do(c.name+"\x00"+string(key), func() (any, error) {
		qctx, cancel := withTimeout(ctx)
		defer cancel()

		doc, err := scanDocument(c.Pool.QueryRow(qctx,
			"SELECT doc FROM documents WHERE collection = $1 AND id = $2", c.name, string(key),
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, models.ErrNodeNotFound
			}

			return nil, fmt.Errorf("fetching %s/%s: %w", c.name, key, err)
		}

		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	doc, ok := val.(models.Document)
	if !ok {
		return nil, fmt.Errorf("store: unexpected singleflight result type %T", val)
	}

	// Shared results must not alias between callers.
	return doc.Clone(), nil
}

// FetchManyByKeys returns the documents that exist among keys, ordered by key.
func (c *Collection) FetchManyByKeys(ctx context.Context, keys []models.NodeKey) ([]models.Document, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = string(k)
	}

	rows, err := c.Pool.Query(ctx,
		"SELECT doc FROM documents WHERE collection = $1 AND id = ANY($2) ORDER BY id", c.name, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching %d documents from %s: %w", len(keys), c.name, err)
	}

	return collectDocuments(rows)
}

// FetchByReverseAdjacency returns the documents referencing key through field.
func (c *Collection) FetchByReverseAdjacency(
	ctx context.Context, key models.NodeKey, field, embeddedKey string, restrict models.Filter,
) ([]models.Document, error) {
	if embeddedKey == "" {
		embeddedKey = c.store.keyField
	}

	sql, args, err := reverseAdjacencyQuery(c.name, field, embeddedKey, key, restrict)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := c.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("reverse adjacency on %s.%s: %w", c.name, field, err)
	}

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, err
	}

	out := docs[:0]

	for _, d := range docs {
		if pathfind.References(d, field, embeddedKey, key) && restrict.Matches(d) {
			out = append(out, d)
		}
	}

	return out, nil
}

// Scan streams the whole collection ordered by key.
func (c *Collection) Scan(ctx context.Context, fn func(models.Document) error) error {
	rows, err := c.Pool.Query(ctx, "SELECT doc FROM documents WHERE collection = $1 ORDER BY id", c.name)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", c.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return fmt.Errorf("scanning document: %w", err)
		}

		if err := fn(doc); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s: %w", c.name, err)
	}

	return nil
}
