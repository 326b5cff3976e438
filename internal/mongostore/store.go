// Package mongostore serves searches from MongoDB collections. Reverse
// adjacency lookups are plain equality filters, which MongoDB already applies
// through arrays and embedded records.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/persistorai/pathfinder/internal/domain"
	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

const defaultQueryTimeout = 30 * time.Second

// Config selects the deployment and database.
type Config struct {
	URI      string
	Database string
	KeyField string
}

// Store is a domain.Backend over one MongoDB database.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	log      *logrus.Logger
	keyField string
}

var _ domain.Backend = (*Store)(nil)

// Connect dials the deployment and verifies it answers.
func Connect(ctx context.Context, cfg Config, log *logrus.Logger) (*Store, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, errors.New("mongostore: uri and database are required")
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	keyField := cfg.KeyField
	if keyField == "" {
		keyField = models.DefaultKeyField
	}

	return &Store{client: client, db: client.Database(cfg.Database), log: log, keyField: keyField}, nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// Collection returns a handle on name, or models.ErrCollectionNotFound.
func (s *Store) Collection(ctx context.Context, name string) (pathfind.NodeStore, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return nil, fmt.Errorf("listing collection %s: %w", name, err)
	}

	if len(names) == 0 {
		return nil, models.ErrCollectionNotFound
	}

	return &Collection{coll: s.db.Collection(name), keyField: s.keyField}, nil
}

// Get returns one document.
func (s *Store) Get(ctx context.Context, collection string, key models.NodeKey) (models.Document, error) {
	c := &Collection{coll: s.db.Collection(collection), keyField: s.keyField}

	return c.FetchByKey(ctx, key)
}

// Upsert replaces documents by key, inserting the missing ones.
func (s *Store) Upsert(ctx context.Context, collection string, docs []models.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	writes := make([]mongo.WriteModel, 0, len(docs))

	for i, d := range docs {
		k, ok := d.Get(s.keyField)
		if _, valid := models.KeyOf(k); !ok || !valid {
			return 0, models.InvalidArgument("document %d has no %s", i, s.keyField)
		}

		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: s.keyField, Value: k}}).
			SetReplacement(bson.M(d)).
			SetUpsert(true))
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	// Ordered so a key repeated in the input keeps its last document.
	res, err := s.db.Collection(collection).BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, fmt.Errorf("upserting documents into %s: %w", collection, err)
	}

	n := int(res.UpsertedCount + res.MatchedCount)

	s.log.WithFields(logrus.Fields{"collection": collection, "count": n}).Debug("mongo upsert")

	return n, nil
}

// Ping checks the primary answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.client.Disconnect(ctx)
}

// Collection is a handle on one MongoDB collection.
type Collection struct {
	coll     *mongo.Collection
	keyField string
}

var (
	_ pathfind.NodeStore = (*Collection)(nil)
	_ pathfind.Scanner   = (*Collection)(nil)
)

func (c *Collection) byKey() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: c.keyField, Value: 1}})
}

// FetchByKey returns the document with key.
func (c *Collection) FetchByKey(ctx context.Context, key models.NodeKey) (models.Document, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var m bson.M

	err := c.coll.FindOne(ctx, keyFilter(c.keyField, []models.NodeKey{key})).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNodeNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("fetching %s/%s: %w", c.coll.Name(), key, err)
	}

	return toDocument(m), nil
}

// FetchManyByKeys returns the documents that exist among keys, ordered by key.
func (c *Collection) FetchManyByKeys(ctx context.Context, keys []models.NodeKey) ([]models.Document, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	return c.find(ctx, keyFilter(c.keyField, keys))
}

// FetchByReverseAdjacency returns the documents referencing key through field.
func (c *Collection) FetchByReverseAdjacency(
	ctx context.Context, key models.NodeKey, field, embeddedKey string, restrict models.Filter,
) ([]models.Document, error) {
	if _, ok := models.FieldPath(field); !ok {
		return nil, models.InvalidArgument("invalid field path %q", field)
	}

	if embeddedKey == "" {
		embeddedKey = c.keyField
	} else if _, ok := models.FieldPath(embeddedKey); !ok {
		return nil, models.InvalidArgument("invalid embedded key path %q", embeddedKey)
	}

	for p := range restrict {
		if _, ok := models.FieldPath(p); !ok {
			return nil, models.InvalidArgument("invalid restrict path %q", p)
		}
	}

	return c.find(ctx, reverseFilter(field, embeddedKey, key, restrict))
}

func (c *Collection) find(ctx context.Context, filter bson.D) ([]models.Document, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cur, err := c.coll.Find(ctx, filter, c.byKey())
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", c.coll.Name(), err)
	}
	defer cur.Close(ctx)

	var out []models.Document

	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decoding document: %w", err)
		}

		out = append(out, toDocument(m))
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", c.coll.Name(), err)
	}

	return out, nil
}

// Scan streams the whole collection ordered by key.
func (c *Collection) Scan(ctx context.Context, fn func(models.Document) error) error {
	cur, err := c.coll.Find(ctx, bson.D{}, c.byKey())
	if err != nil {
		return fmt.Errorf("scanning %s: %w", c.coll.Name(), err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return fmt.Errorf("decoding document: %w", err)
		}

		if err := fn(toDocument(m)); err != nil {
			return err
		}
	}

	return cur.Err()
}
