package pathfind_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

func TestFindBidirectionalPath_Diamond(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(), diamond()...)

	p, err := e.FindBidirectionalPath(context.Background(), "A", "D", "connections", "_id", 10)
	require.NoError(t, err)
	require.True(t, p.Found)
	assert.Equal(t, 2, p.Depth)
	assert.Equal(t, 3, p.NodeCount)
	assert.Equal(t, []models.NodeKey{"A", "B", "D"}, keys(p))
	requireConnected(t, p, "connections")
	assert.Equal(t, 6, p.Stats.NodesVisited)
}

func TestFindBidirectionalPath_SameNode(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(), diamond()...)

	p, err := e.FindBidirectionalPath(context.Background(), "C", "C", "connections", "_id", 10)
	require.NoError(t, err)
	require.True(t, p.Found)
	assert.Equal(t, 0, p.Depth)
	assert.Equal(t, []models.NodeKey{"C"}, keys(p))
}

func TestFindBidirectionalPath_NotFound(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(), diamond()...)

	tests := []struct {
		name       string
		start, end models.NodeKey
	}{
		{name: "disconnected", start: "A", end: "E"},
		{name: "missing start", start: "Z", end: "D"},
		{name: "missing end", start: "A", end: "Z"},
		{name: "against edge direction", start: "D", end: "A"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := e.FindBidirectionalPath(context.Background(), tc.start, tc.end, "connections", "_id", 10)
			require.NoError(t, err)
			assert.False(t, p.Found)
			assert.Empty(t, p.Nodes)
		})
	}
}

func TestFindBidirectionalPath_OddDepthBoundary(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(), node("A", "B"), node("B", "C"), node("C", "D"), node("D"))

	// One hop with maxDepth 1: breadth-first finds it, but 1/2 leaves no hops per side.
	bfs, err := e.FindPath(context.Background(), "A", "B", "connections", "", 1)
	require.NoError(t, err)
	assert.True(t, bfs.Found)

	bidi, err := e.FindBidirectionalPath(context.Background(), "A", "B", "connections", "", 1)
	require.NoError(t, err)
	assert.False(t, bidi.Found)

	// Three hops with maxDepth 3: each side reaches only one hop.
	bfs, err = e.FindPath(context.Background(), "A", "D", "connections", "", 3)
	require.NoError(t, err)
	assert.True(t, bfs.Found)

	bidi, err = e.FindBidirectionalPath(context.Background(), "A", "D", "connections", "", 3)
	require.NoError(t, err)
	assert.False(t, bidi.Found)

	bidi, err = e.FindBidirectionalPath(context.Background(), "A", "D", "connections", "", 4)
	require.NoError(t, err)
	require.True(t, bidi.Found)
	assert.Equal(t, []models.NodeKey{"A", "B", "C", "D"}, keys(bidi))
}

func TestFindBidirectionalPath_ContinuesForShortest(t *testing.T) {
	// A reaches D in two hops through S and in three through X1, X2.
	docs := []models.Document{
		node("A", "X1", "S"),
		node("X1", "X2"),
		node("X2", "D"),
		node("S", "D"),
		node("D"),
	}

	opts := pathfind.DefaultOptions()
	opts.StopAtFirstMeeting = false

	p, err := newEngine(t, opts, docs...).FindBidirectionalPath(context.Background(), "A", "D", "connections", "", 10)
	require.NoError(t, err)
	require.True(t, p.Found)
	assert.Equal(t, []models.NodeKey{"A", "S", "D"}, keys(p))
}

func TestFindBidirectionalPath_EmbeddedAdjacency(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(), weightedDiamond()...)

	p, err := e.FindBidirectionalPath(context.Background(), "A", "D", "edges", "_id", 4)
	require.NoError(t, err)
	require.True(t, p.Found)
	assert.Equal(t, 2, p.Depth)
	requireConnected(t, p, "edges")
}

func TestFindBidirectionalPath_MemoryCeiling(t *testing.T) {
	opts := pathfind.DefaultOptions()
	opts.MemoryLimitBytes = 300

	_, err := newEngine(t, opts, diamond()...).
		FindBidirectionalPath(context.Background(), "A", "D", "connections", "", 10)
	assert.ErrorIs(t, err, models.ErrMemoryLimitExceeded)
}
