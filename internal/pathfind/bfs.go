package pathfind

import (
	"context"
	"fmt"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/models"
)

// queueItem is a FIFO entry: a node and its hop distance from the root.
type queueItem struct {
	key   models.NodeKey
	depth int
}

// bfsRunner holds the mutable state for a single breadth-first search.
type bfsRunner struct {
	ts             *trackedStore
	adjacencyField string
	idField        string
	maxDepth       int

	queue   deque.Deque[queueItem]
	visited map[models.NodeKey]struct{}
	parent  map[models.NodeKey]models.NodeKey
	records map[models.NodeKey]models.Document
	mem     meter
}

// FindPath runs a breadth-first search from start to end following the
// adjacency field. idField names the attribute that identifies records and
// keys embedded adjacency entries; empty means the engine key field.
// A missing start record yields found=false. Neighbors whose record cannot be
// fetched are dropped.
func (e *Engine) FindPath(
	ctx context.Context, start, end models.NodeKey, adjacencyField, idField string, maxDepth int,
) (*models.Path, error) {
	if err := validateField("adjacencyField", adjacencyField); err != nil {
		return nil, err
	}

	if err := validateDepth(maxDepth); err != nil {
		return nil, err
	}

	var stats models.SearchStats

	r := &bfsRunner{
		ts:             e.track(&stats),
		adjacencyField: adjacencyField,
		idField:        e.keyFieldFor(idField),
		maxDepth:       maxDepth,
		visited:        make(map[models.NodeKey]struct{}),
		parent:         make(map[models.NodeKey]models.NodeKey),
		records:        make(map[models.NodeKey]models.Document),
		mem:            meter{limit: e.opts.MemoryLimitBytes},
	}

	startDoc, err := e.fetchOne(ctx, r.ts, start, r.idField)
	if isNotFound(err) {
		return notFound(stats), nil
	}

	if err != nil {
		return nil, fmt.Errorf("fetching start node: %w", err)
	}

	r.records[start] = startDoc
	r.visited[start] = struct{}{}
	r.queue.PushBack(queueItem{key: start, depth: 0})

	depth, found, err := r.run(ctx, e, end)

	stats.NodesVisited = len(r.visited)
	stats.VisitedBytes = r.mem.visited
	stats.FrontierBytes = r.mem.frontier

	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"start":         start,
		"end":           end,
		"found":         found,
		"depth":         depth,
		"nodes_visited": stats.NodesVisited,
		"store_queries": stats.StoreQueries,
	}).Debug("pathfind.bfs")

	if !found {
		return notFound(stats), nil
	}

	keys, ok := r.walk(start, end)
	if !ok {
		return notFound(stats), nil
	}

	p, ok := assemble(keys, r.records)
	if !ok {
		return notFound(stats), nil
	}

	p.Stats = stats

	return p, nil
}

func (r *bfsRunner) run(ctx context.Context, e *Engine, end models.NodeKey) (int, bool, error) {
	for r.queue.Len() > 0 {
		if err := canceled(ctx); err != nil {
			return 0, false, err
		}

		cur := r.queue.PopFront()
		r.mem.frontier -= models.ApproxSize(cur.key)
		r.ts.stats.Rounds++

		if cur.key == end {
			return cur.depth, true, nil
		}

		if cur.depth >= r.maxDepth {
			continue
		}

		doc, ok := r.records[cur.key]
		if !ok {
			continue
		}

		for _, next := range neighborKeys(doc, r.adjacencyField, r.idField) {
			if _, dup := r.visited[next]; dup {
				continue
			}

			r.visited[next] = struct{}{}
			r.parent[next] = cur.key
			r.mem.visited += 2*models.ApproxSize(next) + models.ApproxSize(cur.key)

			nextDoc, err := e.fetchOne(ctx, r.ts, next, r.idField)
			if err != nil {
				if ctx.Err() != nil {
					return 0, false, canceled(ctx)
				}

				if !isNotFound(err) {
					e.log.WithError(err).WithField("key", next).Debug("pathfind.bfs: dropping neighbor")
				}

				continue
			}

			r.records[next] = nextDoc
			r.mem.visited += models.ApproxSize(nextDoc)
			r.mem.frontier += models.ApproxSize(next)
			r.queue.PushBack(queueItem{key: next, depth: cur.depth + 1})
		}

		if err := r.mem.check(); err != nil {
			return 0, false, err
		}
	}

	return 0, false, nil
}

// walk follows parent pointers from end back to start. A broken chain reports no path.
func (r *bfsRunner) walk(start, end models.NodeKey) ([]models.NodeKey, bool) {
	keys := []models.NodeKey{end}

	for cur := end; cur != start; {
		p, ok := r.parent[cur]
		if !ok || len(keys) > len(r.parent)+1 {
			return nil, false
		}

		keys = append(keys, p)
		cur = p
	}

	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}

	return keys, true
}
