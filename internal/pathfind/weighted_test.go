package pathfind_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

func TestFindWeightedPath_PicksCheaperRoute(t *testing.T) {
	scanning := seedCollection(t, weightedDiamond()...)

	stores := map[string]pathfind.NodeStore{
		"bulk scan":  scanning,
		"level-wise": noScan{scanning},
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			e := pathfind.New(store, pathfind.DefaultOptions(), testLogger())

			p, err := e.FindWeightedPath(context.Background(), "A", "D", "edges", "", "weight", 10)
			require.NoError(t, err)
			require.True(t, p.Found)
			assert.Equal(t, []models.NodeKey{"A", "B", "D"}, keys(p))
			require.NotNil(t, p.TotalWeight)
			assert.InDelta(t, 8.0, *p.TotalWeight, 1e-9)
			assert.Equal(t, []float64{5, 3}, p.EdgeWeights)
			assert.Equal(t, 2, p.Depth)
			requireConnected(t, p, "edges")
		})
	}
}

func TestFindWeightedPath_StoreQueries(t *testing.T) {
	scanning := seedCollection(t, weightedDiamond()...)

	p, err := pathfind.New(scanning, pathfind.DefaultOptions(), testLogger()).
		FindWeightedPath(context.Background(), "A", "D", "edges", "", "weight", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stats.StoreQueries)

	p, err = pathfind.New(noScan{scanning}, pathfind.DefaultOptions(), testLogger()).
		FindWeightedPath(context.Background(), "A", "D", "edges", "", "weight", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stats.StoreQueries)
}

func TestFindWeightedPath_HopBound(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(), weightedDiamond()...)

	p, err := e.FindWeightedPath(context.Background(), "A", "D", "edges", "", "weight", 1)
	require.NoError(t, err)
	assert.False(t, p.Found)
	assert.Nil(t, p.TotalWeight)
}

func TestFindWeightedPath_SameNodeAndMissing(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(), weightedDiamond()...)

	p, err := e.FindWeightedPath(context.Background(), "B", "B", "edges", "", "weight", 3)
	require.NoError(t, err)
	require.True(t, p.Found)
	assert.Equal(t, 0, p.Depth)
	require.NotNil(t, p.TotalWeight)
	assert.Zero(t, *p.TotalWeight)

	p, err = e.FindWeightedPath(context.Background(), "nope", "D", "edges", "", "weight", 3)
	require.NoError(t, err)
	assert.False(t, p.Found)
}

func TestFindWeightedPath_NegativeWeight(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(),
		wnode("A", weightedEdge{"B", 1}),
		wnode("B", weightedEdge{"C", -2}),
		wnode("C"),
	)

	_, err := e.FindWeightedPath(context.Background(), "A", "C", "edges", "", "weight", 5)
	assert.ErrorIs(t, err, models.ErrNegativeWeight)
}

func TestFindWeightedPath_TieBreakIsDeterministic(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(),
		wnode("A", weightedEdge{"C", 1}, weightedEdge{"B", 1}),
		wnode("B", weightedEdge{"D", 1}),
		wnode("C", weightedEdge{"D", 1}),
		wnode("D"),
	)

	for range 5 {
		p, err := e.FindWeightedPath(context.Background(), "A", "D", "edges", "", "weight", 5)
		require.NoError(t, err)
		assert.Equal(t, []models.NodeKey{"A", "B", "D"}, keys(p))
	}
}

func TestFindWeightedPath_RawEntriesWeighOne(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(),
		models.Document{"_id": "A", "edges": []any{"B", map[string]any{"_id": "C", "weight": 0.5}}},
		models.Document{"_id": "B", "edges": []any{map[string]any{"_id": "C", "weight": "heavy"}}},
		models.Document{"_id": "C"},
	)

	p, err := e.FindWeightedPath(context.Background(), "A", "B", "edges", "", "weight", 5)
	require.NoError(t, err)
	require.NotNil(t, p.TotalWeight)
	assert.InDelta(t, 1.0, *p.TotalWeight, 1e-9)

	p, err = e.FindWeightedPath(context.Background(), "A", "C", "edges", "", "weight", 5)
	require.NoError(t, err)
	assert.Equal(t, []models.NodeKey{"A", "C"}, keys(p))
	assert.InDelta(t, 0.5, *p.TotalWeight, 1e-9)
}

func TestFindWeightedPath_IgnoresIDField(t *testing.T) {
	e := newEngine(t, pathfind.DefaultOptions(), weightedDiamond()...)

	want, err := e.FindWeightedPath(context.Background(), "A", "D", "edges", "", "weight", 10)
	require.NoError(t, err)
	require.True(t, want.Found)

	got, err := e.FindWeightedPath(context.Background(), "A", "D", "edges", "code", "weight", 10)
	require.NoError(t, err)
	require.True(t, got.Found)
	assert.Equal(t, keys(want), keys(got))
	assert.InDelta(t, *want.TotalWeight, *got.TotalWeight, 1e-9)
}
