// Package pathfind finds paths between records of a document store that offers
// only point lookups and predicate queries. It provides breadth-first search,
// weighted shortest-path search and two bidirectional variants that share one
// search state, reconstruction routine and memory accounting.
//
// Every invocation owns its frontier and visited state. An Engine may be shared
// by concurrent callers.
package pathfind

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/models"
)

// Defaults applied by DefaultOptions.
const (
	DefaultMaxDepth         = 10
	DefaultMemoryLimitBytes = 100 * 1024 * 1024
)

// Options configure an Engine.
type Options struct {
	// KeyField names the attribute holding a record's own key.
	KeyField string

	// MemoryLimitBytes caps visited plus frontier state. Zero disables the ceiling.
	MemoryLimitBytes int64

	// StopAtFirstMeeting ends a client-driven bidirectional search at the first
	// crossing instead of continuing until no shorter crossing can exist.
	StopAtFirstMeeting bool
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		KeyField:           models.DefaultKeyField,
		MemoryLimitBytes:   DefaultMemoryLimitBytes,
		StopAtFirstMeeting: true,
	}
}

// Engine runs searches against one NodeStore.
type Engine struct {
	store NodeStore
	opts  Options
	log   logrus.FieldLogger
}

// New creates an Engine.
func New(store NodeStore, opts Options, log logrus.FieldLogger) *Engine {
	if opts.KeyField == "" {
		opts.KeyField = models.DefaultKeyField
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Engine{store: store, opts: opts, log: log}
}

func (e *Engine) track(stats *models.SearchStats) *trackedStore {
	return &trackedStore{NodeStore: e.store, stats: stats}
}

// keyFieldFor returns field, or the engine key field when field is empty.
func (e *Engine) keyFieldFor(field string) string {
	if field == "" {
		return e.opts.KeyField
	}

	return field
}

// fetchOne looks up the record whose field equals key. Lookups on the engine
// key field use the store's point lookup.
func (e *Engine) fetchOne(ctx context.Context, ts *trackedStore, key models.NodeKey, field string) (models.Document, error) {
	if field == e.opts.KeyField {
		return ts.FetchByKey(ctx, key)
	}

	docs, err := ts.FetchByReverseAdjacency(ctx, key, field, "", nil)
	if err != nil {
		return nil, err
	}

	for _, d := range docs {
		if k, ok := d.Key(field); ok && k == key {
			return d, nil
		}
	}

	return nil, models.ErrNodeNotFound
}

func validateField(name, field string) error {
	if _, ok := models.FieldPath(field); !ok {
		return models.InvalidArgument("%s must be a non-empty field path", name)
	}

	return nil
}

func validateDepth(maxDepth int) error {
	if maxDepth < 0 {
		return models.InvalidArgument("maxDepth must be non-negative")
	}

	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNodeNotFound)
}

func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("search canceled: %w", err)
	}

	return nil
}
