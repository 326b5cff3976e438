package pathfind

import (
	"context"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/models"
)

// BatchQuery describes a round-based bidirectional search in graph-lookup
// terms: records are matched on ConnectToField, and their ConnectFromField
// values lead to the next records.
type BatchQuery struct {
	ConnectFromField string
	ConnectToField   string

	// Start and Target are the evaluated seed values. Each value matches the
	// records whose ConnectToField equals it.
	Start  []any
	Target []any

	// Restrict is AND-ed with every store query.
	Restrict models.Filter

	// MaxDepth bounds the number of hops of an accepted path. Nil is unbounded.
	MaxDepth *int
}

// Validate checks the query fields.
func (q BatchQuery) Validate() error {
	if err := validateField("connectFromField", q.ConnectFromField); err != nil {
		return err
	}

	if err := validateField("connectToField", q.ConnectToField); err != nil {
		return err
	}

	if q.MaxDepth != nil {
		return validateDepth(*q.MaxDepth)
	}

	return nil
}

// BatchSearch expands the whole forward and backward frontier every round,
// issuing one store query per distinct frontier value. Visited state is
// checked for a crossing before each round, and memory after each round.
// Because both directions grow one full level per round, the first crossing
// found is a shortest one.
func (e *Engine) BatchSearch(ctx context.Context, q BatchQuery) (*models.Path, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	maxTotal := -1
	if q.MaxDepth != nil {
		maxTotal = *q.MaxDepth
	}

	st := newSearchState(e.opts.MemoryLimitBytes, maxTotal)

	b := &batchStrategy{
		q:        q,
		keyField: e.opts.KeyField,
		ts:       e.track(&st.stats),
		frontier: [2]map[models.NodeKey]models.NodeKey{{}, {}},
		queued:   [2]map[models.NodeKey]struct{}{{}, {}},
	}

	p, err := e.drive(ctx, st, b)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"found":         p.Found,
		"depth":         p.Depth,
		"rounds":        p.Stats.Rounds,
		"store_queries": p.Stats.StoreQueries,
	}).Debug("pathfind.batch")

	return p, nil
}

// batchStrategy keeps, per direction, the values to query next round mapped to
// the record that produced them, and every value already queried.
type batchStrategy struct {
	q        BatchQuery
	keyField string
	ts       *trackedStore
	round    int

	frontier [2]map[models.NodeKey]models.NodeKey
	queued   [2]map[models.NodeKey]struct{}
}

func (b *batchStrategy) algorithm() models.Algorithm { return models.AlgorithmBatch }

// matchField is the field a direction's frontier values are matched against.
func (b *batchStrategy) matchField(dir models.Direction) string {
	if dir == models.Forward {
		return b.q.ConnectToField
	}

	return b.q.ConnectFromField
}

// emitField is the field whose values a newly visited record adds to its frontier.
func (b *batchStrategy) emitField(dir models.Direction) string {
	if dir == models.Forward {
		return b.q.ConnectFromField
	}

	return b.q.ConnectToField
}

func (b *batchStrategy) seed(ctx context.Context, st *SearchState) (bool, error) {
	seeds := [2][]any{b.q.Start, b.q.Target}

	for _, dir := range []models.Direction{models.Forward, models.Backward} {
		for _, v := range seeds[dir] {
			key, ok := models.KeyOf(v)
			if !ok {
				continue
			}

			docs, err := b.ts.FetchByReverseAdjacency(ctx, key, b.q.ConnectToField, "", b.q.Restrict)
			if err != nil {
				return false, fmt.Errorf("seeding %s frontier: %w", dir, err)
			}

			if dir == models.Forward {
				b.queued[dir][key] = struct{}{}
			}

			for _, doc := range docs {
				id, ok := doc.Key(b.keyField)
				if !ok {
					continue
				}

				if st.visit(models.SearchRecord{ID: id, Direction: dir}, doc) {
					b.enqueue(st, dir, doc, id)
				}
			}
		}
	}

	b.meterFrontier(st)

	return len(st.visited[models.Forward]) > 0 && len(st.visited[models.Backward]) > 0, nil
}

func (b *batchStrategy) enqueue(st *SearchState, dir models.Direction, doc models.Document, owner models.NodeKey) {
	for _, v := range doc.Values(b.emitField(dir)) {
		key, ok := models.KeyOf(v)
		if !ok {
			continue
		}

		if _, done := b.queued[dir][key]; done {
			continue
		}

		if _, dup := b.frontier[dir][key]; dup {
			continue
		}

		b.frontier[dir][key] = owner
	}
}

func (b *batchStrategy) step(ctx context.Context, st *SearchState) (bool, error) {
	if len(b.frontier[models.Forward]) == 0 || len(b.frontier[models.Backward]) == 0 {
		return false, nil
	}

	if b.q.MaxDepth != nil && 2*b.round >= *b.q.MaxDepth {
		return false, nil
	}

	b.round++

	fwd, err := b.expand(ctx, st, models.Forward)
	if err != nil {
		return false, err
	}

	bwd, err := b.expand(ctx, st, models.Backward)
	if err != nil {
		return false, err
	}

	b.meterFrontier(st)

	return fwd || bwd, nil
}

func (b *batchStrategy) expand(ctx context.Context, st *SearchState, dir models.Direction) (bool, error) {
	snapshot := b.frontier[dir]
	b.frontier[dir] = make(map[models.NodeKey]models.NodeKey)

	values := make([]models.NodeKey, 0, len(snapshot))
	for v := range snapshot {
		values = append(values, v)
	}

	slices.Sort(values)

	expanded := false

	for _, v := range values {
		if err := canceled(ctx); err != nil {
			return false, err
		}

		b.queued[dir][v] = struct{}{}
		owner := snapshot[v]

		parent, ok := st.seen(dir, owner)
		if !ok {
			continue
		}

		docs, err := b.ts.FetchByReverseAdjacency(ctx, v, b.matchField(dir), "", b.q.Restrict)
		if err != nil {
			return false, fmt.Errorf("expanding %s frontier value %s: %w", dir, v, err)
		}

		for _, doc := range docs {
			id, ok := doc.Key(b.keyField)
			if !ok {
				continue
			}

			rec := models.SearchRecord{ID: id, Depth: parent.Depth + 1, Direction: dir, Parent: owner}
			if st.visit(rec, doc) {
				b.enqueue(st, dir, doc, id)

				expanded = true
			}
		}
	}

	return expanded, nil
}

func (b *batchStrategy) meterFrontier(st *SearchState) {
	var n int64

	for _, f := range b.frontier {
		for v := range f {
			n += models.ApproxSize(v)
		}
	}

	st.mem.frontier = n
}

func (b *batchStrategy) settled(st *SearchState) bool {
	st.scanMeetings()

	return st.met
}
