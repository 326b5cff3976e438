package graphql

import (
	"encoding/json"
	"math"

	"github.com/persistorai/pathfinder/internal/models"
)

// pathToGQL converts a models.Path to the GraphQL Path shape.
func pathToGQL(p *models.Path) map[string]any {
	out := map[string]any{
		"found":     p.Found,
		"depth":     p.Depth,
		"nodeCount": p.NodeCount,
		"nodes":     documentsToGQL(p.Nodes),
		"stats": map[string]any{
			"storeQueries":  p.Stats.StoreQueries,
			"nodesVisited":  p.Stats.NodesVisited,
			"rounds":        p.Stats.Rounds,
			"visitedBytes":  p.Stats.VisitedBytes,
			"frontierBytes": p.Stats.FrontierBytes,
		},
	}

	if p.TotalWeight != nil {
		weights := make([]any, len(p.EdgeWeights))
		for i, w := range p.EdgeWeights {
			weights[i] = w
		}

		out["edgeWeights"] = weights
		out["totalWeight"] = *p.TotalWeight
	}

	return out
}

func documentsToGQL(docs []models.Document) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = d
	}

	return out
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)

	return s
}

func boolArg(args map[string]any, name string) *bool {
	b, ok := args[name].(bool)
	if !ok {
		return nil
	}

	return &b
}

// intArg reads an optional Int argument. Literals arrive as int64, variables
// as decoded JSON numbers.
func intArg(args map[string]any, name string) (*int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}

	var f float64

	switch t := v.(type) {
	case int:
		return &t, nil
	case int64:
		f = float64(t)
	case float64:
		f = t
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil, models.InvalidArgument("%s must be an integer", name)
		}

		f = n
	default:
		return nil, models.InvalidArgument("%s must be an integer", name)
	}

	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil, models.InvalidArgument("%s must be a 32-bit integer", name)
	}

	n := int(f)

	return &n, nil
}

func documentsArg(args map[string]any, name string) ([]models.Document, error) {
	raw, _ := args[name].([]any)
	docs := make([]models.Document, 0, len(raw))

	for i, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, models.InvalidArgument("%s[%d] must be an object", name, i)
		}

		docs = append(docs, models.Document(m))
	}

	return docs, nil
}
