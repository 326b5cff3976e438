package pathfind_test

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/pathfinder/internal/memstore"
	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.ErrorLevel)

	return l
}

// seedCollection loads docs into a fresh in-memory collection.
func seedCollection(t *testing.T, docs ...models.Document) pathfind.NodeStore {
	t.Helper()

	ms := memstore.New(models.DefaultKeyField)
	_, err := ms.Upsert(context.Background(), "graph", docs)
	require.NoError(t, err)

	c, err := ms.Collection(context.Background(), "graph")
	require.NoError(t, err)

	return c
}

func newEngine(t *testing.T, opts pathfind.Options, docs ...models.Document) *pathfind.Engine {
	t.Helper()

	return pathfind.New(seedCollection(t, docs...), opts, testLogger())
}

func node(id string, connections ...string) models.Document {
	conns := make([]any, 0, len(connections))
	for _, c := range connections {
		conns = append(conns, c)
	}

	return models.Document{"_id": id, "name": "Node " + id, "connections": conns}
}

type weightedEdge struct {
	to string
	w  float64
}

func wnode(id string, edges ...weightedEdge) models.Document {
	out := make([]any, 0, len(edges))
	for _, e := range edges {
		out = append(out, map[string]any{"_id": e.to, "weight": e.w})
	}

	return models.Document{"_id": id, "edges": out}
}

// diamond is A->{B,C}, B->D, C->D plus an isolated E.
func diamond() []models.Document {
	return []models.Document{
		node("A", "B", "C"),
		node("B", "D"),
		node("C", "D"),
		node("D"),
		node("E"),
	}
}

// weightedDiamond is A->B(5), A->C(10), B->D(3), C->D(2).
func weightedDiamond() []models.Document {
	return []models.Document{
		wnode("A", weightedEdge{"B", 5}, weightedEdge{"C", 10}),
		wnode("B", weightedEdge{"D", 3}),
		wnode("C", weightedEdge{"D", 2}),
		wnode("D"),
	}
}

// noScan hides the Scanner implementation of a store.
type noScan struct {
	pathfind.NodeStore
}

func keys(p *models.Path) []models.NodeKey {
	return p.Keys(models.DefaultKeyField)
}

// requireConnected checks that every consecutive pair of the path is joined by
// an adjacency entry in the forward direction.
func requireConnected(t *testing.T, p *models.Path, field string) {
	t.Helper()

	require.Equal(t, p.Depth+1, p.NodeCount)
	require.Len(t, p.Nodes, p.NodeCount)

	for i := 0; i+1 < len(p.Nodes); i++ {
		next, _ := p.Nodes[i+1].Key(models.DefaultKeyField)
		require.True(t, pathfind.References(p.Nodes[i], field, models.DefaultKeyField, next),
			"%v does not reference %s", p.Nodes[i], next)
	}
}
