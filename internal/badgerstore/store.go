// Package badgerstore is an embedded document store on BadgerDB. Besides the
// documents it keeps an incoming reference index so reverse adjacency lookups
// are prefix scans instead of collection scans.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/domain"
	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

// maxBatchDocuments bounds the documents written per transaction to stay
// under badger's transaction size limit.
const maxBatchDocuments = 100

// Config holds configuration for a badger-backed store.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is true.
	Path string

	// InMemory disables persistence. Used by tests.
	InMemory bool

	SyncWrites bool

	// KeyField names the document attribute used as the key.
	KeyField string

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum discardable ratio before GC rewrites a file.
	GCDiscardRatio float64
}

// Store is a domain.Backend over BadgerDB.
type Store struct {
	db       *badger.DB
	log      *logrus.Logger
	keyField string

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

var _ domain.Backend = (*Store)(nil)

// Open opens or creates a store.
func Open(cfg Config, log *logrus.Logger) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badgerstore: path is required for persistent database")
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	var opts badger.Options

	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}

		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(log.WithField("component", "badger"))

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	keyField := cfg.KeyField
	if keyField == "" {
		keyField = models.DefaultKeyField
	}

	s := &Store{db: db, log: log, keyField: keyField, stop: make(chan struct{}), done: make(chan struct{})}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		ratio := cfg.GCDiscardRatio
		if ratio <= 0 || ratio >= 1 {
			ratio = 0.5
		}

		go s.runGC(cfg.GCInterval, ratio)
	} else {
		close(s.done)
	}

	return s, nil
}

func (s *Store) runGC(interval time.Duration, ratio float64) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			// ErrNoRewrite means nothing was worth collecting.
			if err := s.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.log.WithError(err).Warn("badger value log GC failed")
			}
		}
	}
}

// Close stops GC and closes the database. Safe to call more than once.
func (s *Store) Close() error {
	var err error

	s.once.Do(func() {
		close(s.stop)
		<-s.done
		err = s.db.Close()
	})

	return err
}

// Ping reports whether the database is open.
func (s *Store) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badgerstore: database closed")
	}

	return nil
}

// Collection returns a handle on name, or models.ErrCollectionNotFound when
// the collection holds no documents.
func (s *Store) Collection(_ context.Context, name string) (pathfind.NodeStore, error) {
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		prefix := docPrefix(name)
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(prefix)
		found = it.ValidForPrefix(prefix)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("checking collection %s: %w", name, err)
	}

	if !found {
		return nil, models.ErrCollectionNotFound
	}

	return &Collection{store: s, name: name}, nil
}

// Get returns one document.
func (s *Store) Get(ctx context.Context, collection string, key models.NodeKey) (models.Document, error) {
	return (&Collection{store: s, name: collection}).FetchByKey(ctx, key)
}

// Upsert inserts or replaces documents and maintains the reference index.
func (s *Store) Upsert(ctx context.Context, collection string, docs []models.Document) (int, error) {
	if !safeComponent(collection) {
		return 0, models.InvalidArgument("collection name contains a NUL byte")
	}

	for i, d := range docs {
		k, ok := d.Key(s.keyField)
		if !ok {
			return 0, models.InvalidArgument("document %d has no %s", i, s.keyField)
		}

		if !safeComponent(string(k)) {
			return 0, models.InvalidArgument("document %d key contains a NUL byte", i)
		}
	}

	total := 0

	for start := 0; start < len(docs); start += maxBatchDocuments {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		batch := docs[start:min(start+maxBatchDocuments, len(docs))]

		err := s.db.Update(func(txn *badger.Txn) error {
			for _, d := range batch {
				if err := s.put(txn, collection, d); err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			return total, fmt.Errorf("upserting documents into %s: %w", collection, err)
		}

		total += len(batch)
	}

	s.log.WithFields(logrus.Fields{"collection": collection, "count": total}).Debug("badger upsert")

	return total, nil
}

func (s *Store) put(txn *badger.Txn, collection string, d models.Document) error {
	id, _ := d.Key(s.keyField)
	key := docKey(collection, id)

	// Drop index entries of the document being replaced.
	item, err := txn.Get(key)

	switch {
	case err == nil:
		var old models.Document

		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &old) }); err != nil {
			return fmt.Errorf("decoding %s: %w", id, err)
		}

		for _, r := range references(old, s.keyField) {
			if err := txn.Delete(refKey(collection, r.path, r.target, id)); err != nil {
				return err
			}
		}
	case !errors.Is(err, badger.ErrKeyNotFound):
		return err
	}

	b, err := json.Marshal(d)
	if err != nil {
		return models.InvalidArgument("document %s is not encodable: %v", id, err)
	}

	if err := txn.Set(key, b); err != nil {
		return err
	}

	for _, r := range references(d, s.keyField) {
		if err := txn.Set(refKey(collection, r.path, r.target, id), nil); err != nil {
			return err
		}
	}

	return nil
}

// Collection is a handle on one named collection.
type Collection struct {
	store *Store
	name  string
}

var (
	_ pathfind.NodeStore = (*Collection)(nil)
	_ pathfind.Scanner   = (*Collection)(nil)
)

func decode(item *badger.Item) (models.Document, error) {
	var doc models.Document

	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	return doc, nil
}

// FetchByKey returns the document with key.
func (c *Collection) FetchByKey(_ context.Context, key models.NodeKey) (models.Document, error) {
	var doc models.Document

	err := c.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(c.name, key))
		if err != nil {
			return err
		}

		doc, err = decode(item)

		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.ErrNodeNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", c.name, key, err)
	}

	return doc, nil
}

// FetchManyByKeys returns the documents that exist among keys, ordered by key.
func (c *Collection) FetchManyByKeys(_ context.Context, keys []models.NodeKey) ([]models.Document, error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	out := make([]models.Document, 0, len(sorted))

	err := c.store.db.View(func(txn *badger.Txn) error {
		for _, k := range sorted {
			item, err := txn.Get(docKey(c.name, k))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}

			if err != nil {
				return err
			}

			doc, err := decode(item)
			if err != nil {
				return err
			}

			out = append(out, doc)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %d documents from %s: %w", len(keys), c.name, err)
	}

	return out, nil
}

// FetchByReverseAdjacency scans the reference index for key at field. The
// index records embedded entries under the store key field, so any other
// embeddedKey also scans field.embeddedKey and re-checks each hit.
func (c *Collection) FetchByReverseAdjacency(
	_ context.Context, key models.NodeKey, field, embeddedKey string, restrict models.Filter,
) ([]models.Document, error) {
	if _, ok := models.FieldPath(field); !ok {
		return nil, models.InvalidArgument("invalid field path %q", field)
	}

	if !safeComponent(string(key)) {
		return nil, nil
	}

	paths := []string{field}
	custom := embeddedKey != "" && embeddedKey != c.store.keyField

	if custom {
		if _, ok := models.FieldPath(embeddedKey); !ok {
			return nil, models.InvalidArgument("invalid embedded key path %q", embeddedKey)
		}

		paths = append(paths, field+"."+embeddedKey)
	}

	var out []models.Document

	err := c.store.db.View(func(txn *badger.Txn) error {
		seen := make(map[models.NodeKey]struct{})

		var ids []models.NodeKey

		for _, path := range paths {
			prefix := refPrefix(c.name, path, key)

			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = prefix

			it := txn.NewIterator(opts)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				id := idFromKey(it.Item().Key())
				if _, dup := seen[id]; dup {
					continue
				}

				seen[id] = struct{}{}
				ids = append(ids, id)
			}
			it.Close()
		}

		if custom {
			slices.Sort(ids)
		}

		for _, id := range ids {
			item, err := txn.Get(docKey(c.name, id))
			if err != nil {
				return fmt.Errorf("reference to missing document %s: %w", id, err)
			}

			doc, err := decode(item)
			if err != nil {
				return err
			}

			if custom && !pathfind.References(doc, field, embeddedKey, key) {
				continue
			}

			if restrict.Matches(doc) {
				out = append(out, doc)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reverse adjacency on %s.%s: %w", c.name, field, err)
	}

	return out, nil
}

// Scan streams the whole collection ordered by key.
func (c *Collection) Scan(ctx context.Context, fn func(models.Document) error) error {
	return c.store.db.View(func(txn *badger.Txn) error {
		prefix := docPrefix(c.name)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			doc, err := decode(it.Item())
			if err != nil {
				return err
			}

			if err := fn(doc); err != nil {
				return err
			}
		}

		return nil
	})
}
