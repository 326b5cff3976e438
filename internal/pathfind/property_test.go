package pathfind_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

// randomGraph builds n nodes with each directed edge present with probability p.
func randomGraph(r *rand.Rand, n int, p float64) []models.Document {
	docs := make([]models.Document, 0, n)

	for i := range n {
		var conns []string

		for j := range n {
			if i != j && r.Float64() < p {
				conns = append(conns, fmt.Sprintf("n%d", j))
			}
		}

		docs = append(docs, node(fmt.Sprintf("n%d", i), conns...))
	}

	return docs
}

func TestSearchesAgreeOnRandomGraphs(t *testing.T) {
	r := rand.New(rand.NewPCG(20240601, 7))
	ctx := context.Background()

	exhaustive := pathfind.DefaultOptions()
	exhaustive.StopAtFirstMeeting = false

	for trial := range 60 {
		const n = 14

		docs := randomGraph(r, n, 0.12)
		store := seedCollection(t, docs...)
		first := pathfind.New(store, pathfind.DefaultOptions(), testLogger())
		full := pathfind.New(store, exhaustive, testLogger())

		for range 6 {
			start := models.NodeKey(fmt.Sprintf("n%d", r.IntN(n)))
			end := models.NodeKey(fmt.Sprintf("n%d", r.IntN(n)))
			maxDepth := r.IntN(7)
			label := fmt.Sprintf("trial %d %s->%s depth %d", trial, start, end, maxDepth)

			bfs, err := first.FindPath(ctx, start, end, "connections", "", maxDepth)
			require.NoError(t, err, label)

			if bfs.Found {
				requireConnected(t, bfs, "connections")
			}

			weighted, err := first.FindWeightedPath(ctx, start, end, "connections", "", "weight", maxDepth)
			require.NoError(t, err, label)
			assert.Equal(t, bfs.Found, weighted.Found, label)

			if bfs.Found {
				assert.Equal(t, bfs.Depth, weighted.Depth, label)
			}

			q := lookupQuery([]any{string(start)}, []any{string(end)})
			q.MaxDepth = ptr(maxDepth)

			batch, err := first.BatchSearch(ctx, q)
			require.NoError(t, err, label)
			assert.Equal(t, bfs.Found, batch.Found, label)

			if bfs.Found {
				assert.Equal(t, bfs.Depth, batch.Depth, label)
				requireConnected(t, batch, "connections")
			}

			if maxDepth%2 != 0 {
				continue
			}

			bidi, err := first.FindBidirectionalPath(ctx, start, end, "connections", "", maxDepth)
			require.NoError(t, err, label)
			assert.Equal(t, bfs.Found, bidi.Found, label)

			if bidi.Found {
				requireConnected(t, bidi, "connections")
				assert.LessOrEqual(t, bidi.Depth, maxDepth, label)
			}

			shortest, err := full.FindBidirectionalPath(ctx, start, end, "connections", "", maxDepth)
			require.NoError(t, err, label)
			assert.Equal(t, bfs.Found, shortest.Found, label)

			if bfs.Found {
				assert.Equal(t, bfs.Depth, shortest.Depth, label)
			}
		}
	}
}
