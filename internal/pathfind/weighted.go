package pathfind

import (
	"container/heap"
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/models"
)

// FindWeightedPath returns the minimum-cost path from start to end with at most
// maxDepth hops. Edge weights are read from weightField inside embedded
// adjacency entries; raw key entries and entries without a weight weigh 1.
// idField is accepted for call-shape parity with the other searches and is
// ignored: records and embedded entries are keyed by the engine key field.
//
// Weights must be non-negative: a negative weight anywhere in the loaded edge
// index fails with models.ErrNegativeWeight. A node's cost is fixed the first
// time it is popped, so with a hop bound a cheaper but longer route may shadow
// a shorter one.
func (e *Engine) FindWeightedPath(
	ctx context.Context, start, end models.NodeKey, connectField, _, weightField string, maxDepth int,
) (*models.Path, error) {
	if err := validateField("connectField", connectField); err != nil {
		return nil, err
	}

	if err := validateField("weightField", weightField); err != nil {
		return nil, err
	}

	if err := validateDepth(maxDepth); err != nil {
		return nil, err
	}

	var stats models.SearchStats

	idx := &edgeIndex{
		ts:           e.track(&stats),
		connectField: connectField,
		entryKey:     e.opts.KeyField,
		recordKey:    e.opts.KeyField,
		weightField:  weightField,
		edges:        make(map[models.NodeKey][]edge),
		records:      make(map[models.NodeKey]models.Document),
		mem:          meter{limit: e.opts.MemoryLimitBytes},
	}

	if err := idx.load(ctx, e.store, start, maxDepth); err != nil {
		return nil, err
	}

	if err := idx.checkWeights(); err != nil {
		return nil, err
	}

	stats.VisitedBytes = idx.mem.visited

	if _, ok := idx.records[start]; !ok {
		return notFound(stats), nil
	}

	r := &dijkstraRunner{idx: idx, end: end, maxDepth: maxDepth, done: make(map[models.NodeKey]bool)}
	best, err := r.run(ctx, start)
	stats.NodesVisited = len(r.done)
	stats.Rounds = r.pops

	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"start":         start,
		"end":           end,
		"found":         best != nil,
		"indexed_nodes": len(idx.records),
		"store_queries": stats.StoreQueries,
	}).Debug("pathfind.weighted")

	if best == nil {
		return notFound(stats), nil
	}

	p, ok := assemble(best.path, idx.records)
	if !ok {
		return notFound(stats), nil
	}

	p.WithWeights(best.weights)
	p.Stats = stats

	return p, nil
}

// edgeIndex is the in-memory adjacency list built before the search.
type edgeIndex struct {
	ts           *trackedStore
	connectField string
	entryKey     string
	recordKey    string
	weightField  string

	edges   map[models.NodeKey][]edge
	records map[models.NodeKey]models.Document
	mem     meter
}

// load builds the index with one bulk scan when the store supports it, and
// otherwise level by level with one multi-key fetch per hop.
func (x *edgeIndex) load(ctx context.Context, store NodeStore, start models.NodeKey, maxDepth int) error {
	if sc, ok := store.(Scanner); ok {
		x.ts.stats.StoreQueries++

		err := sc.Scan(ctx, func(doc models.Document) error {
			return x.add(doc)
		})
		if err != nil {
			return fmt.Errorf("scanning edges: %w", err)
		}

		return nil
	}

	level := []models.NodeKey{start}
	seen := map[models.NodeKey]bool{start: true}

	for hop := 0; hop <= maxDepth && len(level) > 0; hop++ {
		if err := canceled(ctx); err != nil {
			return err
		}

		docs, err := x.ts.FetchManyByKeys(ctx, level)
		if err != nil {
			return fmt.Errorf("fetching level %d: %w", hop, err)
		}

		var next []models.NodeKey

		for _, doc := range docs {
			if err := x.add(doc); err != nil {
				return err
			}

			k, _ := doc.Key(x.recordKey)
			for _, ed := range x.edges[k] {
				if !seen[ed.to] {
					seen[ed.to] = true
					next = append(next, ed.to)
				}
			}
		}

		level = next
	}

	return nil
}

func (x *edgeIndex) add(doc models.Document) error {
	k, ok := doc.Key(x.recordKey)
	if !ok {
		return nil
	}

	x.records[k] = doc
	x.edges[k] = adjacency(doc, x.connectField, x.entryKey, x.weightField)
	x.mem.visited += models.ApproxSize(doc)

	return x.mem.check()
}

func (x *edgeIndex) checkWeights() error {
	for from, edges := range x.edges {
		for _, ed := range edges {
			if ed.weight < 0 {
				return fmt.Errorf("%w: edge %s->%s weight=%g", models.ErrNegativeWeight, from, ed.to, ed.weight)
			}
		}
	}

	return nil
}

// route is a priority-queue entry carrying the full path so far.
type route struct {
	key     models.NodeKey
	cost    float64
	path    []models.NodeKey
	weights []float64
}

func (r *route) hops() int { return len(r.path) - 1 }

// routePQ is a min-heap ordered by cost, then hop count, then key, then the
// keys along the path.
type routePQ []*route

func (pq routePQ) Len() int { return len(pq) }

func (pq routePQ) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.cost != b.cost {
		return a.cost < b.cost
	}

	if a.hops() != b.hops() {
		return a.hops() < b.hops()
	}

	if a.key != b.key {
		return a.key < b.key
	}

	return slices.Compare(a.path, b.path) < 0
}

func (pq routePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *routePQ) Push(x any) { *pq = append(*pq, x.(*route)) }

func (pq *routePQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]

	return item
}

// dijkstraRunner holds the mutable state for a single weighted search.
type dijkstraRunner struct {
	idx      *edgeIndex
	end      models.NodeKey
	maxDepth int
	pq       routePQ
	done     map[models.NodeKey]bool
	pops     int
}

func (r *dijkstraRunner) run(ctx context.Context, start models.NodeKey) (*route, error) {
	heap.Init(&r.pq)
	heap.Push(&r.pq, &route{key: start, path: []models.NodeKey{start}})

	for r.pq.Len() > 0 {
		if err := canceled(ctx); err != nil {
			return nil, err
		}

		cur := heap.Pop(&r.pq).(*route)
		r.pops++

		if r.done[cur.key] {
			continue
		}

		r.done[cur.key] = true

		if cur.key == r.end {
			return cur, nil
		}

		if cur.hops() >= r.maxDepth {
			continue
		}

		for _, ed := range r.idx.edges[cur.key] {
			if r.done[ed.to] {
				continue
			}

			if _, ok := r.idx.records[ed.to]; !ok {
				continue
			}

			path := make([]models.NodeKey, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)

			weights := make([]float64, len(cur.weights), len(cur.weights)+1)
			copy(weights, cur.weights)

			heap.Push(&r.pq, &route{
				key:     ed.to,
				cost:    cur.cost + ed.weight,
				path:    append(path, ed.to),
				weights: append(weights, ed.weight),
			})
		}
	}

	return nil, nil
}
