package store

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/persistorai/pathfinder/internal/models"
)

// maxArrayHops bounds how many intermediate path segments may be matched as
// arrays of objects. Deeper segments are matched as plain objects only.
const maxArrayHops = 3

// keyVariants returns the JSON values a stored reference to key may take.
// Numeric keys are also matched as numbers.
func keyVariants(key models.NodeKey) []any {
	s := string(key)
	out := []any{s}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return append(out, i)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		out = append(out, f)
	}

	return out
}

// nest wraps leaf in objects along parts. Bit i of arrays set means the value
// under parts[i] is an array of objects rather than an object.
func nest(parts []string, leaf any, arrays uint) any {
	cur := leaf

	for i := len(parts) - 1; i >= 0; i-- {
		var v any = map[string]any{parts[i]: cur}
		if i > 0 && arrays&(1<<(i-1)) != 0 {
			v = []any{v}
		}

		cur = v
	}

	return cur
}

// adjacencyForms returns the containment documents any of which a record
// referencing key through field must contain: field equal to key, an array
// holding key, or an array holding an embedded record keyed by key.
func adjacencyForms(field, keyField string, key models.NodeKey) ([]string, error) {
	parts, ok := models.FieldPath(field)
	if !ok {
		return nil, models.InvalidArgument("invalid field path %q", field)
	}

	keyParts, ok := models.FieldPath(keyField)
	if !ok {
		return nil, models.InvalidArgument("invalid key field %q", keyField)
	}

	hops := min(len(parts)-1, maxArrayHops)
	seen := make(map[string]struct{})

	var out []string

	for mask := uint(0); mask < 1<<hops; mask++ {
		for _, v := range keyVariants(key) {
			for _, leaf := range []any{v, []any{v}, []any{nest(keyParts, v, 0)}} {
				b, err := json.Marshal(nest(parts, leaf, mask))
				if err != nil {
					return nil, fmt.Errorf("encoding containment form: %w", err)
				}

				if _, dup := seen[string(b)]; dup {
					continue
				}

				seen[string(b)] = struct{}{}
				out = append(out, string(b))
			}
		}
	}

	return out, nil
}

// restrictForms returns one group of alternatives per restrict entry, ordered
// by path. A record satisfies the entry when it contains any form of its group.
func restrictForms(restrict models.Filter) ([][]string, error) {
	paths := make([]string, 0, len(restrict))
	for p := range restrict {
		paths = append(paths, p)
	}

	slices.Sort(paths)

	out := make([][]string, 0, len(paths))

	for _, p := range paths {
		parts, ok := models.FieldPath(p)
		if !ok {
			return nil, models.InvalidArgument("invalid restrict path %q", p)
		}

		v := restrict[p]
		group := make([]string, 0, 2)

		for _, leaf := range []any{v, []any{v}} {
			b, err := json.Marshal(nest(parts, leaf, 0))
			if err != nil {
				return nil, models.InvalidArgument("restrict value for %q is not encodable: %v", p, err)
			}

			group = append(group, string(b))
		}

		out = append(out, group)
	}

	return out, nil
}

// reverseAdjacencyQuery builds the prefilter query for FetchByReverseAdjacency.
// Callers re-check each row in Go since containment is looser than equality.
func reverseAdjacencyQuery(
	collection, field, keyField string, key models.NodeKey, restrict models.Filter,
) (string, []any, error) {
	forms, err := adjacencyForms(field, keyField, key)
	if err != nil {
		return "", nil, err
	}

	groups, err := restrictForms(restrict)
	if err != nil {
		return "", nil, err
	}

	args := []any{collection}

	orClause := func(alts []string) string {
		terms := make([]string, 0, len(alts))
		for _, a := range alts {
			args = append(args, a)
			terms = append(terms, fmt.Sprintf("doc @> $%d::jsonb", len(args)))
		}

		return "(" + strings.Join(terms, " OR ") + ")"
	}

	var b strings.Builder

	b.WriteString("SELECT doc FROM documents WHERE collection = $1 AND ")
	b.WriteString(orClause(forms))

	for _, g := range groups {
		b.WriteString(" AND ")
		b.WriteString(orClause(g))
	}

	b.WriteString(" ORDER BY id")

	return b.String(), args, nil
}
