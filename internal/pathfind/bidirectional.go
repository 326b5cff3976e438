package pathfind

import (
	"context"
	"fmt"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/models"
)

// strategy is one way of growing a SearchState from both ends.
type strategy interface {
	algorithm() models.Algorithm

	// seed places the roots. It returns false when a search cannot start.
	seed(ctx context.Context, st *SearchState) (bool, error)

	// step performs one unit of expansion and reports whether anything happened.
	step(ctx context.Context, st *SearchState) (bool, error)

	// settled reports whether the best meeting so far is final.
	settled(st *SearchState) bool
}

// drive runs a strategy to completion and reconstructs the result.
func (e *Engine) drive(ctx context.Context, st *SearchState, s strategy) (*models.Path, error) {
	ok, err := s.seed(ctx, st)
	if err != nil {
		return nil, err
	}

	if !ok {
		return notFound(st.finish()), nil
	}

	if err := st.mem.check(); err != nil {
		return nil, err
	}

	for !s.settled(st) {
		if err := canceled(ctx); err != nil {
			return nil, err
		}

		progressed, err := s.step(ctx, st)
		if err != nil {
			return nil, err
		}

		st.stats.Rounds++

		e.log.WithFields(logrus.Fields{
			"algorithm":        s.algorithm(),
			"round":            st.stats.Rounds,
			"forward_visited":  len(st.visited[models.Forward]),
			"backward_visited": len(st.visited[models.Backward]),
			"visited_bytes":    st.mem.visited,
			"frontier_bytes":   st.mem.frontier,
		}).Debug("pathfind.round")

		if err := st.mem.check(); err != nil {
			return nil, err
		}

		if !progressed {
			break
		}
	}

	stats := st.finish()

	keys, ok := st.reconstruct()
	if !ok {
		return notFound(stats), nil
	}

	p, ok := assemble(keys, st.records)
	if !ok {
		return notFound(stats), nil
	}

	p.Stats = stats

	return p, nil
}

// FindBidirectionalPath searches from both ends at once, alternating one
// forward and one backward expansion. connectToField is the adjacency field
// and connectFromField identifies records. Each direction is bounded to
// maxDepth/2 hops, rounded down, so an odd maxDepth loses one hop compared
// with FindPath and a maxDepth of 1 expands nothing.
func (e *Engine) FindBidirectionalPath(
	ctx context.Context, start, end models.NodeKey, connectToField, connectFromField string, maxDepth int,
) (*models.Path, error) {
	if err := validateField("connectToField", connectToField); err != nil {
		return nil, err
	}

	if err := validateDepth(maxDepth); err != nil {
		return nil, err
	}

	s := &clientStrategy{
		e:              e,
		start:          start,
		end:            end,
		adjacencyField: connectToField,
		idField:        e.keyFieldFor(connectFromField),
		cap:            maxDepth / 2,
		stopAtFirst:    e.opts.StopAtFirstMeeting,
		missing:        make(map[models.NodeKey]struct{}),
	}

	st := newSearchState(e.opts.MemoryLimitBytes, -1)
	s.ts = e.track(&st.stats)

	p, err := e.drive(ctx, st, s)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"start":         start,
		"end":           end,
		"found":         p.Found,
		"rounds":        p.Stats.Rounds,
		"store_queries": p.Stats.StoreQueries,
	}).Debug("pathfind.bidirectional")

	return p, nil
}

// clientStrategy expands one queued node per direction per step. Forward
// expansion reads the cached record's adjacency; backward expansion asks the
// store for records whose adjacency references the node.
type clientStrategy struct {
	e              *Engine
	ts             *trackedStore
	start, end     models.NodeKey
	adjacencyField string
	idField        string
	cap            int
	stopAtFirst    bool

	queues  [2]deque.Deque[queueItem]
	missing map[models.NodeKey]struct{}
}

func (c *clientStrategy) algorithm() models.Algorithm { return models.AlgorithmBidirectional }

func (c *clientStrategy) seed(ctx context.Context, st *SearchState) (bool, error) {
	startDoc, err := c.e.fetchOne(ctx, c.ts, c.start, c.idField)
	if isNotFound(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("fetching start node: %w", err)
	}

	endDoc := startDoc
	if c.end != c.start {
		endDoc, err = c.e.fetchOne(ctx, c.ts, c.end, c.idField)
		if isNotFound(err) {
			return false, nil
		}

		if err != nil {
			return false, fmt.Errorf("fetching end node: %w", err)
		}
	}

	st.visit(models.SearchRecord{ID: c.start, Direction: models.Forward}, startDoc)
	st.visit(models.SearchRecord{ID: c.end, Direction: models.Backward}, endDoc)
	c.push(st, models.Forward, queueItem{key: c.start})
	c.push(st, models.Backward, queueItem{key: c.end})
	st.offerMeeting(c.start)

	return true, nil
}

func (c *clientStrategy) push(st *SearchState, dir models.Direction, item queueItem) {
	c.queues[dir].PushBack(item)
	st.mem.frontier += models.ApproxSize(item.key)
}

func (c *clientStrategy) pop(st *SearchState, dir models.Direction) (queueItem, bool) {
	if c.queues[dir].Len() == 0 {
		return queueItem{}, false
	}

	item := c.queues[dir].PopFront()
	st.mem.frontier -= models.ApproxSize(item.key)

	return item, true
}

func (c *clientStrategy) step(ctx context.Context, st *SearchState) (bool, error) {
	progressed := false

	if item, ok := c.pop(st, models.Forward); ok {
		progressed = true

		if err := c.expandForward(ctx, st, item); err != nil {
			return false, err
		}
	}

	if st.met && c.settled(st) {
		return progressed, nil
	}

	if item, ok := c.pop(st, models.Backward); ok {
		progressed = true

		if err := c.expandBackward(ctx, st, item); err != nil {
			return false, err
		}
	}

	return progressed, nil
}

func (c *clientStrategy) expandForward(ctx context.Context, st *SearchState, item queueItem) error {
	if item.depth >= c.cap {
		return nil
	}

	doc, ok := st.records[item.key]
	if !ok {
		return nil
	}

	for _, next := range neighborKeys(doc, c.adjacencyField, c.idField) {
		if _, dup := st.seen(models.Forward, next); dup {
			continue
		}

		if _, gone := c.missing[next]; gone {
			continue
		}

		nextDoc, ok := st.records[next]
		if !ok {
			var err error

			nextDoc, err = c.e.fetchOne(ctx, c.ts, next, c.idField)
			if err != nil {
				if ctx.Err() != nil {
					return canceled(ctx)
				}

				c.missing[next] = struct{}{}

				continue
			}
		}

		st.visit(models.SearchRecord{
			ID: next, Depth: item.depth + 1, Direction: models.Forward, Parent: item.key,
		}, nextDoc)
		c.push(st, models.Forward, queueItem{key: next, depth: item.depth + 1})
		st.offerMeeting(next)
	}

	return nil
}

func (c *clientStrategy) expandBackward(ctx context.Context, st *SearchState, item queueItem) error {
	if item.depth >= c.cap {
		return nil
	}

	docs, err := c.ts.FetchByReverseAdjacency(ctx, item.key, c.adjacencyField, c.idField, nil)
	if err != nil {
		return fmt.Errorf("querying predecessors of %s: %w", item.key, err)
	}

	for _, doc := range docs {
		prev, ok := doc.Key(c.idField)
		if !ok {
			continue
		}

		if _, dup := st.seen(models.Backward, prev); dup {
			continue
		}

		st.visit(models.SearchRecord{
			ID: prev, Depth: item.depth + 1, Direction: models.Backward, Parent: item.key,
		}, doc)
		c.push(st, models.Backward, queueItem{key: prev, depth: item.depth + 1})
		st.offerMeeting(prev)
	}

	return nil
}

// settled holds once a meeting exists and either the first meeting suffices or
// no undiscovered crossing can be shorter: every later discovery lies at least
// one hop beyond the current queue heads. An empty queue counts as the depth
// cap, where its unexpanded nodes sit.
func (c *clientStrategy) settled(st *SearchState) bool {
	if !st.met {
		return false
	}

	if c.stopAtFirst {
		return true
	}

	return st.meetingCost <= c.headDepth(models.Forward)+c.headDepth(models.Backward)+1
}

func (c *clientStrategy) headDepth(dir models.Direction) int {
	if c.queues[dir].Len() == 0 {
		return c.cap
	}

	return c.queues[dir].Front().depth
}
