package lookup

import (
	"fmt"
	"strings"

	"github.com/persistorai/pathfinder/internal/models"
)

// Expression is evaluated against a stage input document.
type Expression interface {
	Evaluate(doc models.Document) any
	Serialize() any
}

// ParseExpression accepts "$a.b" field paths, {"$literal": v}, arrays and
// objects of expressions, and scalar literals.
func ParseExpression(v any) (Expression, error) {
	switch t := v.(type) {
	case string:
		if strings.HasPrefix(t, "$$") {
			return nil, fmt.Errorf("%w: variables are not supported: %q", models.ErrInvalidStageSpec, t)
		}

		if strings.HasPrefix(t, "$") {
			if _, ok := models.FieldPath(t[1:]); !ok {
				return nil, fmt.Errorf("%w: invalid field path %q", models.ErrInvalidStageSpec, t)
			}

			return fieldPath(t[1:]), nil
		}

		return literal{v: t}, nil
	case []any:
		out := make(arrayExpr, 0, len(t))

		for i, el := range t {
			e, err := ParseExpression(el)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}

			out = append(out, e)
		}

		return out, nil
	case map[string]any:
		return parseObject(t)
	case models.Document:
		return parseObject(t)
	default:
		return literal{v: t}, nil
	}
}

func parseObject(m map[string]any) (Expression, error) {
	if lit, ok := m["$literal"]; ok && len(m) == 1 {
		return literal{v: lit, wrapped: true}, nil
	}

	out := make(objectExpr, len(m))

	for k, v := range m {
		if strings.HasPrefix(k, "$") {
			return nil, fmt.Errorf("%w: unsupported operator %q", models.ErrInvalidStageSpec, k)
		}

		e, err := ParseExpression(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}

		out[k] = e
	}

	return out, nil
}

// fieldPath reads a dotted path of the input. Paths crossing arrays yield the
// array of reachable values.
type fieldPath string

func (f fieldPath) Evaluate(doc models.Document) any {
	if v, ok := doc.Get(string(f)); ok {
		return v
	}

	if vals := doc.Values(string(f)); len(vals) > 0 {
		return vals
	}

	return nil
}

func (f fieldPath) Serialize() any { return "$" + string(f) }

type literal struct {
	v       any
	wrapped bool
}

func (l literal) Evaluate(models.Document) any { return l.v }

func (l literal) Serialize() any {
	if l.wrapped {
		return map[string]any{"$literal": l.v}
	}

	return l.v
}

type arrayExpr []Expression

func (a arrayExpr) Evaluate(doc models.Document) any {
	out := make([]any, 0, len(a))
	for _, e := range a {
		out = append(out, e.Evaluate(doc))
	}

	return out
}

func (a arrayExpr) Serialize() any {
	out := make([]any, 0, len(a))
	for _, e := range a {
		out = append(out, e.Serialize())
	}

	return out
}

type objectExpr map[string]Expression

func (o objectExpr) Evaluate(doc models.Document) any {
	out := make(map[string]any, len(o))
	for k, e := range o {
		out[k] = e.Evaluate(doc)
	}

	return out
}

func (o objectExpr) Serialize() any {
	out := make(map[string]any, len(o))
	for k, e := range o {
		out[k] = e.Serialize()
	}

	return out
}

// seedValues flattens an evaluated expression into frontier seeds.
// Missing values seed nothing.
func seedValues(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}
