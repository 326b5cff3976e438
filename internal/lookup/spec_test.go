package lookup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistorai/pathfinder/internal/lookup"
	"github.com/persistorai/pathfinder/internal/models"
)

func validSpec() map[string]any {
	return map[string]any{
		"from":             "graph",
		"as":               "path",
		"connectFromField": "connections",
		"connectToField":   "_id",
		"startWith":        "$start",
		"target":           "$end",
	}
}

func TestParseSpec_Valid(t *testing.T) {
	raw := validSpec()
	raw["restrictSearchWithMatch"] = map[string]any{"open": true}
	raw["depthField"] = "hops"
	raw["maxDepth"] = 4.0
	raw["maxMemoryBytes"] = 1024
	raw["singleShot"] = false
	raw["stopAtFirstMeeting"] = true

	s, err := lookup.ParseSpec(raw)
	require.NoError(t, err)
	assert.Equal(t, "graph", s.From)
	assert.Equal(t, "path", s.As)
	assert.Equal(t, "hops", s.DepthField)
	require.NotNil(t, s.MaxDepth)
	assert.Equal(t, 4, *s.MaxDepth)
	assert.Equal(t, int64(1024), s.MaxMemoryBytes)
	require.NotNil(t, s.SingleShot)
	assert.False(t, *s.SingleShot)
	assert.Equal(t, models.Filter{"open": true}, s.Restrict)
	assert.Equal(t, "A", s.StartWith.Evaluate(models.Document{"start": "A"}))
}

func TestParseSpec_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{name: "missing from", mutate: func(m map[string]any) { delete(m, "from") }},
		{name: "non-string as", mutate: func(m map[string]any) { m["as"] = 3 }},
		{name: "empty as", mutate: func(m map[string]any) { m["as"] = "" }},
		{name: "dollar field", mutate: func(m map[string]any) { m["connectToField"] = "$_id" }},
		{name: "missing connectFromField", mutate: func(m map[string]any) { delete(m, "connectFromField") }},
		{name: "missing startWith", mutate: func(m map[string]any) { delete(m, "startWith") }},
		{name: "missing target", mutate: func(m map[string]any) { delete(m, "target") }},
		{name: "negative maxDepth", mutate: func(m map[string]any) { m["maxDepth"] = -1 }},
		{name: "fractional maxDepth", mutate: func(m map[string]any) { m["maxDepth"] = 1.5 }},
		{name: "string maxDepth", mutate: func(m map[string]any) { m["maxDepth"] = "3" }},
		{name: "zero memory", mutate: func(m map[string]any) { m["maxMemoryBytes"] = 0 }},
		{name: "non-object restrict", mutate: func(m map[string]any) { m["restrictSearchWithMatch"] = "x" }},
		{name: "non-bool singleShot", mutate: func(m map[string]any) { m["singleShot"] = "yes" }},
		{name: "unknown argument", mutate: func(m map[string]any) { m["connectThrough"] = "x" }},
		{name: "variable expression", mutate: func(m map[string]any) { m["startWith"] = "$$ROOT" }},
		{name: "operator expression", mutate: func(m map[string]any) { m["target"] = map[string]any{"$add": []any{1, 2}} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := validSpec()
			tc.mutate(raw)

			_, err := lookup.ParseSpec(raw)
			assert.ErrorIs(t, err, models.ErrInvalidStageSpec)
		})
	}
}

func TestParseSpec_IntegerArgMessages(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "fractional", value: 2.5, want: "must be an integral value"},
		{name: "out of range", value: 1e18, want: "is out of range"},
		{name: "negative out of range", value: -1e18, want: "is out of range"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := validSpec()
			raw["maxDepth"] = tc.value

			_, err := lookup.ParseSpec(raw)
			require.ErrorIs(t, err, models.ErrInvalidStageSpec)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseStage_Wrapped(t *testing.T) {
	s, err := lookup.ParseStage(map[string]any{lookup.StageName: validSpec()})
	require.NoError(t, err)
	assert.Equal(t, "connections", s.ConnectFromField)

	_, err = lookup.ParseStage(map[string]any{lookup.StageName: "nope"})
	assert.ErrorIs(t, err, models.ErrInvalidStageSpec)

	_, err = lookup.ParseStage(map[string]any{lookup.StageName: validSpec(), "extra": 1})
	assert.ErrorIs(t, err, models.ErrInvalidStageSpec)
}

func TestSpec_SerializeRoundTrip(t *testing.T) {
	raw := validSpec()
	raw["target"] = []any{"$end", map[string]any{"$literal": "$notAPath"}, "Z"}
	raw["restrictSearchWithMatch"] = map[string]any{"open": true}
	raw["maxDepth"] = 3
	raw["depthField"] = "hops"

	s, err := lookup.ParseSpec(raw)
	require.NoError(t, err)

	out := s.Serialize()
	inner, ok := out[lookup.StageName].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "$start", inner["startWith"])
	assert.Equal(t, 3, inner["maxDepth"])
	assert.NotContains(t, inner, "singleShot")

	again, err := lookup.ParseStage(out)
	require.NoError(t, err)
	assert.Equal(t, s.Serialize(), again.Serialize())

	doc := models.Document{"end": "D"}
	assert.Equal(t, []any{"D", "$notAPath", "Z"}, again.Target.Evaluate(doc))
}

func TestExpressions(t *testing.T) {
	doc := models.Document{
		"a":     map[string]any{"b": "x"},
		"items": []any{map[string]any{"id": 1.0}, map[string]any{"id": 2.0}},
		"list":  []any{"p", "q"},
	}

	tests := []struct {
		name string
		expr any
		want any
	}{
		{name: "nested path", expr: "$a.b", want: "x"},
		{name: "missing path", expr: "$nope", want: nil},
		{name: "array path", expr: "$list", want: []any{"p", "q"}},
		{name: "through array", expr: "$items.id", want: []any{1.0, 2.0}},
		{name: "string literal", expr: "plain", want: "plain"},
		{name: "number literal", expr: 7.0, want: 7.0},
		{name: "array of expressions", expr: []any{"$a.b", "k"}, want: []any{"x", "k"}},
		{name: "object", expr: map[string]any{"v": "$a.b"}, want: map[string]any{"v": "x"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := lookup.ParseExpression(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, e.Evaluate(doc))
		})
	}
}
