package badgerstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/persistorai/pathfinder/internal/models"
)

func TestReferences(t *testing.T) {
	doc := models.Document{
		"_id":         "A",
		"connections": []any{"B", []any{"C"}, map[string]any{"_id": "D"}, true},
		"meta":        map[string]any{"parent": "P", "a.b": "skip"},
		"links":       []any{map[string]any{"to": "E"}},
	}

	got := make(map[reference]bool)
	for _, r := range references(doc, "_id") {
		got[r] = true
	}

	for _, want := range []reference{
		{"_id", "A"},
		{"connections", "B"},
		{"connections", "C"},
		{"connections", "D"},
		{"meta.parent", "P"},
		{"links.to", "E"},
	} {
		assert.True(t, got[want], "missing %v", want)
	}

	assert.False(t, got[reference{"meta.a.b", "skip"}])
}

func TestKeyLayout(t *testing.T) {
	k := refKey("graph", "connections", "B", "A")
	assert.Equal(t, models.NodeKey("A"), idFromKey(k))
	assert.Equal(t, refPrefix("graph", "connections", "B"), k[:len(k)-1])
	assert.Equal(t, models.NodeKey("X"), idFromKey(docKey("graph", "X")))
}
