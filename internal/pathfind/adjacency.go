package pathfind

import (
	"github.com/persistorai/pathfinder/internal/models"
)

// edge is one parsed adjacency entry.
type edge struct {
	to     models.NodeKey
	weight float64
}

// adjacency reads the entries at field. An entry is either a raw key or an
// embedded record carrying a key under keyField and, when weightField is set,
// a numeric weight. Raw keys and embedded records without a weight weigh 1.
// Malformed entries are skipped.
func adjacency(doc models.Document, field, keyField, weightField string) []edge {
	values := doc.Values(field)
	out := make([]edge, 0, len(values))

	for _, v := range values {
		if k, ok := models.KeyOf(v); ok {
			out = append(out, edge{to: k, weight: 1})

			continue
		}

		embedded, ok := v.(map[string]any)
		if !ok {
			continue
		}

		k, ok := models.Document(embedded).Key(keyField)
		if !ok {
			continue
		}

		w := 1.0

		if weightField != "" {
			if raw, present := models.Document(embedded).Get(weightField); present {
				w, ok = models.Number(raw)
				if !ok {
					continue
				}
			}
		}

		out = append(out, edge{to: k, weight: w})
	}

	return out
}

// neighborKeys returns the distinct neighbor keys of doc in entry order.
func neighborKeys(doc models.Document, field, keyField string) []models.NodeKey {
	edges := adjacency(doc, field, keyField, "")
	seen := make(map[models.NodeKey]struct{}, len(edges))
	out := make([]models.NodeKey, 0, len(edges))

	for _, e := range edges {
		if _, dup := seen[e.to]; dup {
			continue
		}

		seen[e.to] = struct{}{}
		out = append(out, e.to)
	}

	return out
}

// References reports whether doc's field equals key, contains key, or contains
// an embedded record whose keyField equals key. Stores without a query
// language use it to answer FetchByReverseAdjacency.
func References(doc models.Document, field, keyField string, key models.NodeKey) bool {
	for _, v := range doc.Values(field) {
		if k, ok := models.KeyOf(v); ok {
			if k == key {
				return true
			}

			continue
		}

		if embedded, ok := v.(map[string]any); ok {
			if k, ok := models.Document(embedded).Key(keyField); ok && k == key {
				return true
			}
		}
	}

	return false
}
