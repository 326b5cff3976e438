package models

import "strings"

// Per-value overheads used by ApproxSize. They approximate Go runtime headers,
// not any wire format.
const (
	scalarOverhead = 16
	stringOverhead = 16
	sliceOverhead  = 24
	mapOverhead    = 48
)

// ApproxSize estimates the in-memory footprint of an attribute value in bytes.
// Search memory ceilings are enforced against the sum of these estimates.
func ApproxSize(v any) int64 {
	switch t := v.(type) {
	case nil:
		return scalarOverhead
	case string:
		return stringOverhead + int64(len(t))
	case NodeKey:
		return stringOverhead + int64(len(t))
	case []any:
		n := int64(sliceOverhead)
		for _, el := range t {
			n += ApproxSize(el)
		}

		return n
	case []string:
		n := int64(sliceOverhead)
		for _, s := range t {
			n += stringOverhead + int64(len(s))
		}

		return n
	case map[string]any:
		return mapSize(t)
	case Document:
		return mapSize(t)
	case Filter:
		return mapSize(t)
	default:
		return scalarOverhead
	}
}

func mapSize(m map[string]any) int64 {
	n := int64(mapOverhead)
	for k, v := range m {
		n += stringOverhead + int64(len(k)) + ApproxSize(v)
	}

	return n
}

// FieldPath splits a dotted path into its segments, rejecting empty segments.
func FieldPath(path string) ([]string, bool) {
	if path == "" || strings.HasPrefix(path, "$") {
		return nil, false
	}

	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return nil, false
		}
	}

	return parts, true
}
