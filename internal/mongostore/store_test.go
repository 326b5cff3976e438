package mongostore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/mongostore"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

func connect(t *testing.T) *mongostore.Store {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	s, err := mongostore.Connect(context.Background(), mongostore.Config{
		URI:      uri,
		Database: "pathfinder_test",
	}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestMongoRoundTrip(t *testing.T) {
	s := connect(t)
	ctx := context.Background()
	name := "graph_" + uuid.New().String()

	n, err := s.Upsert(ctx, name, []models.Document{
		{"_id": "A", "connections": []any{"B", "C"}, "kind": "city"},
		{"_id": "B", "connections": []any{map[string]any{"_id": "D"}}, "kind": "city"},
		{"_id": "C", "connections": "D", "kind": "town"},
		{"_id": "D", "connections": []any{}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	c, err := s.Collection(ctx, name)
	require.NoError(t, err)

	refs, err := c.FetchByReverseAdjacency(ctx, "D", "connections", "", nil)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	refs, err = c.FetchByReverseAdjacency(ctx, "D", "connections", "", models.Filter{"kind": "town"})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "C", refs[0]["_id"])

	_, err = s.Collection(ctx, "missing_"+name)
	assert.ErrorIs(t, err, models.ErrCollectionNotFound)

	engine := pathfind.New(c, pathfind.DefaultOptions(), quietLogger())

	p, err := engine.FindPath(ctx, "A", "D", "connections", "_id", 5)
	require.NoError(t, err)
	assert.True(t, p.Found)
	assert.Equal(t, 2, p.Depth)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)

	return l
}
