package pathfind

import (
	"context"

	"github.com/persistorai/pathfinder/internal/models"
)

// NodeStore is the read-only document store a search traverses. Implementations
// must be safe for concurrent use; the engine itself keeps no state between calls.
type NodeStore interface {
	// FetchByKey returns the record whose key field equals key, or models.ErrNodeNotFound.
	FetchByKey(ctx context.Context, key models.NodeKey) (models.Document, error)

	// FetchManyByKeys returns the records for keys. Missing keys are silently absent.
	FetchManyByKeys(ctx context.Context, keys []models.NodeKey) ([]models.Document, error)

	// FetchByReverseAdjacency returns every record whose field equals key, is an array
	// containing key, or is an array containing an embedded record whose embeddedKey
	// equals key. An empty embeddedKey means the store key field. A non-empty
	// restrict filter is AND-ed with the predicate.
	FetchByReverseAdjacency(
		ctx context.Context, key models.NodeKey, field, embeddedKey string, restrict models.Filter,
	) ([]models.Document, error)
}

// Scanner is implemented by stores that can stream a whole collection in one read.
type Scanner interface {
	Scan(ctx context.Context, fn func(models.Document) error) error
}

// Catalog resolves collection names to node stores.
type Catalog interface {
	Collection(ctx context.Context, name string) (NodeStore, error)
}

// trackedStore counts store round trips for one invocation.
type trackedStore struct {
	NodeStore
	stats *models.SearchStats
}

func (t *trackedStore) FetchByKey(ctx context.Context, key models.NodeKey) (models.Document, error) {
	t.stats.StoreQueries++

	return t.NodeStore.FetchByKey(ctx, key)
}

func (t *trackedStore) FetchManyByKeys(ctx context.Context, keys []models.NodeKey) ([]models.Document, error) {
	t.stats.StoreQueries++

	return t.NodeStore.FetchManyByKeys(ctx, keys)
}

func (t *trackedStore) FetchByReverseAdjacency(
	ctx context.Context, key models.NodeKey, field, embeddedKey string, restrict models.Filter,
) ([]models.Document, error) {
	t.stats.StoreQueries++

	return t.NodeStore.FetchByReverseAdjacency(ctx, key, field, embeddedKey, restrict)
}
