// Package models defines the records, keys and results shared by the path-finding engine,
// its store adapters and its API surfaces.
package models

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// DefaultKeyField is the attribute holding a record's own key.
const DefaultKeyField = "_id"

// NodeKey identifies a node. Store adapters normalize native identifiers
// (object ids, integers) to their string form so keys are comparable map keys.
type NodeKey string

// Document is a schema-less node record: an opaque attribute bag with one or more
// adjacency attributes.
type Document map[string]any

// Filter is an equality filter over document fields. Keys may be dotted paths.
type Filter map[string]any

// KeyOf converts a scalar attribute value to a NodeKey. Maps, arrays, booleans,
// nil and empty strings are not keys.
func KeyOf(v any) (NodeKey, bool) {
	switch t := v.(type) {
	case NodeKey:
		return t, t != ""
	case string:
		return NodeKey(t), t != ""
	case int:
		return NodeKey(strconv.Itoa(t)), true
	case int32:
		return NodeKey(strconv.FormatInt(int64(t), 10)), true
	case int64:
		return NodeKey(strconv.FormatInt(t, 10)), true
	case uint32:
		return NodeKey(strconv.FormatUint(uint64(t), 10)), true
	case uint64:
		return NodeKey(strconv.FormatUint(t, 10)), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}

		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return NodeKey(strconv.FormatInt(int64(t), 10)), true
		}

		return NodeKey(strconv.FormatFloat(t, 'g', -1, 64)), true
	case json.Number:
		return NodeKey(t.String()), t != ""
	default:
		return "", false
	}
}

// Get returns the value at a dotted path without descending into arrays.
func (d Document) Get(path string) (any, bool) {
	var cur any = map[string]any(d)

	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}

		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return cur, true
}

// Values returns every value reachable at a dotted path. Arrays met along the
// path fan out, and an array at the end of the path contributes its elements.
func (d Document) Values(path string) []any {
	var out []any
	collectValues(map[string]any(d), strings.Split(path, "."), &out)

	return out
}

func collectValues(cur any, parts []string, out *[]any) {
	if arr, ok := cur.([]any); ok {
		for _, el := range arr {
			collectValues(el, parts, out)
		}

		return
	}

	if len(parts) == 0 {
		*out = append(*out, cur)

		return
	}

	m, ok := asMap(cur)
	if !ok {
		return
	}

	next, ok := m[parts[0]]
	if !ok {
		return
	}

	collectValues(next, parts[1:], out)
}

// Key returns the record's own key read from field.
func (d Document) Key(field string) (NodeKey, bool) {
	v, ok := d.Get(field)
	if !ok {
		return "", false
	}

	return KeyOf(v)
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d)+1)
	for k, v := range d {
		out[k] = v
	}

	return out
}

// Matches reports whether every filter entry equals some value at its path.
func (f Filter) Matches(d Document) bool {
	for path, want := range f {
		found := false

		for _, got := range d.Values(path) {
			if ValuesEqual(got, want) {
				found = true

				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

// ValuesEqual compares two attribute values, treating all numeric kinds as float64.
func ValuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)

		return ok && fa == fb
	}

	return reflect.DeepEqual(a, b)
}

// Number converts a numeric attribute value to float64.
func Number(v any) (float64, bool) {
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Document:
		return t, true
	case Filter:
		return t, true
	default:
		return nil, false
	}
}
