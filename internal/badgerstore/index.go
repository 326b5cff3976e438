package badgerstore

import (
	"strings"

	"github.com/persistorai/pathfinder/internal/models"
)

type reference struct {
	path   string
	target models.NodeKey
}

// references lists every (path, target) pair under which doc can be found by
// a reverse adjacency lookup: a key-like value reached through path, possibly
// via arrays, or an embedded record at path keyed by keyField.
func references(doc models.Document, keyField string) []reference {
	seen := make(map[reference]struct{})

	var out []reference

	add := func(path string, v any) {
		for _, x := range flatten(v) {
			k, ok := models.KeyOf(x)
			if !ok {
				m, isMap := x.(map[string]any)
				if !isMap {
					continue
				}

				if k, ok = models.Document(m).Key(keyField); !ok {
					continue
				}
			}

			r := reference{path: path, target: k}
			if _, dup := seen[r]; dup || !safeComponent(string(k)) {
				continue
			}

			seen[r] = struct{}{}
			out = append(out, r)
		}
	}

	var walk func(cur any, prefix string)
	walk = func(cur any, prefix string) {
		switch t := cur.(type) {
		case map[string]any:
			for k, v := range t {
				if _, ok := models.FieldPath(k); !ok || strings.Contains(k, ".") || !safeComponent(k) {
					continue
				}

				p := k
				if prefix != "" {
					p = prefix + "." + k
				}

				add(p, v)
				walk(v, p)
			}
		case models.Document:
			walk(map[string]any(t), prefix)
		case []any:
			for _, e := range t {
				walk(e, prefix)
			}
		}
	}

	walk(map[string]any(doc), "")

	return out
}

// flatten expands nested arrays into their scalar and object elements.
func flatten(v any) []any {
	arr, ok := v.([]any)
	if !ok {
		return []any{v}
	}

	out := make([]any, 0, len(arr))
	for _, e := range arr {
		out = append(out, flatten(e)...)
	}

	return out
}
