package mongostore

import (
	"math"
	"slices"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/persistorai/pathfinder/internal/models"
)

// keyValues returns the BSON values a stored key or reference may take for
// key: the string itself, its numeric forms, and an ObjectID for 24-digit hex.
func keyValues(key models.NodeKey) bson.A {
	s := string(key)
	out := bson.A{s}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		out = append(out, i)
	} else if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		out = append(out, f)
	}

	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		out = append(out, oid)
	}

	return out
}

func keyFilter(keyField string, keys []models.NodeKey) bson.D {
	values := bson.A{}
	for _, k := range keys {
		values = append(values, keyValues(k)...)
	}

	return bson.D{{Key: keyField, Value: bson.D{{Key: "$in", Value: values}}}}
}

// reverseFilter matches records whose field holds key, directly, inside an
// array, or as an embedded record keyed by keyField. Dotted paths descend
// through arrays the same way the in-memory matcher does.
func reverseFilter(field, keyField string, key models.NodeKey, restrict models.Filter) bson.D {
	in := bson.D{{Key: "$in", Value: keyValues(key)}}

	clauses := bson.A{
		bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: field, Value: in}},
			bson.D{{Key: field + "." + keyField, Value: in}},
		}}},
	}

	paths := make([]string, 0, len(restrict))
	for p := range restrict {
		paths = append(paths, p)
	}

	slices.Sort(paths)

	for _, p := range paths {
		clauses = append(clauses, bson.D{{Key: p, Value: restrict[p]}})
	}

	if len(clauses) == 1 {
		return clauses[0].(bson.D)
	}

	return bson.D{{Key: "$and", Value: clauses}}
}

// normalize converts decoded BSON into the plain JSON-compatible values the
// engine works with.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalize(e.Value)
		}

		return m
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}

		return out
	case []any:
		return normalize(bson.A(t))
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return int64(t)
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339Nano)
	case primitive.Decimal128:
		return t.String()
	case primitive.Binary:
		return t.Data
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}

	return out
}

func toDocument(m bson.M) models.Document {
	return models.Document(normalizeMap(m))
}
