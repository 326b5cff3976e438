package models_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/persistorai/pathfinder/internal/models"
)

func ptr[T any](v T) *T { return &v }

func assertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func assertErrorContains(t *testing.T, err error, want string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}

	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected error containing %q, got %q", want, err.Error())
	}
}

func TestKeyOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want models.NodeKey
		ok   bool
	}{
		{name: "string", in: "A", want: "A", ok: true},
		{name: "empty string", in: "", ok: false},
		{name: "int", in: 42, want: "42", ok: true},
		{name: "int64", in: int64(-7), want: "-7", ok: true},
		{name: "integral float", in: 3.0, want: "3", ok: true},
		{name: "fractional float", in: 2.5, want: "2.5", ok: true},
		{name: "json number", in: json.Number("12"), want: "12", ok: true},
		{name: "bool", in: true, ok: false},
		{name: "nil", in: nil, ok: false},
		{name: "map", in: map[string]any{"_id": "A"}, ok: false},
		{name: "array", in: []any{"A"}, ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := models.KeyOf(tc.in)
			if ok != tc.ok || got != tc.want {
				t.Errorf("KeyOf(%v) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestDocument_Values(t *testing.T) {
	doc := models.Document{
		"_id": "A",
		"edges": []any{
			map[string]any{"to": "B", "w": 1.0},
			map[string]any{"to": "C", "w": 2.0},
		},
		"meta":  map[string]any{"tags": []any{"x", "y"}},
		"plain": "v",
	}

	tests := []struct {
		path string
		want int
	}{
		{path: "edges", want: 2},
		{path: "edges.to", want: 2},
		{path: "meta.tags", want: 2},
		{path: "plain", want: 1},
		{path: "missing", want: 0},
		{path: "plain.deeper", want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := len(doc.Values(tc.path)); got != tc.want {
				t.Errorf("len(Values(%q)) = %d, want %d", tc.path, got, tc.want)
			}
		})
	}

	if got := doc.Values("edges.to"); got[0] != "B" || got[1] != "C" {
		t.Errorf("Values(edges.to) = %v, want [B C]", got)
	}
}

func TestDocument_GetAndKey(t *testing.T) {
	doc := models.Document{"_id": 5.0, "a": map[string]any{"b": "c"}}

	v, ok := doc.Get("a.b")
	if !ok || v != "c" {
		t.Errorf("Get(a.b) = %v, %v", v, ok)
	}

	if _, ok := doc.Get("a.x"); ok {
		t.Error("expected miss for a.x")
	}

	k, ok := doc.Key("_id")
	if !ok || k != "5" {
		t.Errorf("Key = %q, %v; want 5", k, ok)
	}
}

func TestFilter_Matches(t *testing.T) {
	doc := models.Document{"kind": "road", "level": 2.0, "tags": []any{"a", "b"}}

	tests := []struct {
		name   string
		filter models.Filter
		want   bool
	}{
		{name: "empty", filter: models.Filter{}, want: true},
		{name: "string equal", filter: models.Filter{"kind": "road"}, want: true},
		{name: "numeric kinds", filter: models.Filter{"level": 2}, want: true},
		{name: "array contains", filter: models.Filter{"tags": "b"}, want: true},
		{name: "mismatch", filter: models.Filter{"kind": "rail"}, want: false},
		{name: "missing field", filter: models.Filter{"other": "x"}, want: false},
		{name: "all must match", filter: models.Filter{"kind": "road", "level": 3}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Matches(doc); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestApproxSize_GrowsWithContent(t *testing.T) {
	small := models.ApproxSize(models.Document{"_id": "A"})
	large := models.ApproxSize(models.Document{"_id": "A", "connections": []any{"B", "C", "D"}})

	if small <= 0 {
		t.Fatalf("expected positive size, got %d", small)
	}

	if large <= small {
		t.Errorf("expected %d > %d", large, small)
	}

	if models.ApproxSize(models.NodeKey("abcd")) != models.ApproxSize("abcd") {
		t.Error("key and string of equal length should have equal size")
	}
}

func TestPath_NewPathAndWeights(t *testing.T) {
	p := models.NewPath([]models.Document{{"_id": "A"}, {"_id": "B"}, {"_id": "D"}}).WithWeights([]float64{5, 3})

	if !p.Found || p.Depth != 2 || p.NodeCount != 3 {
		t.Errorf("unexpected path %+v", p)
	}

	if p.TotalWeight == nil || *p.TotalWeight != 8 {
		t.Errorf("TotalWeight = %v, want 8", p.TotalWeight)
	}

	keys := p.Keys("_id")
	if len(keys) != 3 || keys[0] != "A" || keys[2] != "D" {
		t.Errorf("Keys = %v", keys)
	}

	nf := models.NotFound()
	if nf.Found || nf.Nodes == nil || len(nf.Nodes) != 0 {
		t.Errorf("NotFound = %+v", nf)
	}
}

func TestPath_JSONShape(t *testing.T) {
	weighted := models.NewPath([]models.Document{{"_id": "A"}, {"_id": "B"}}).WithWeights([]float64{2.5})

	raw, err := json.Marshal(weighted)
	assertNoError(t, err)

	var got map[string]any
	assertNoError(t, json.Unmarshal(raw, &got))

	for _, k := range []string{"found", "depth", "nodes", "nodeCount", "edgeWeights", "totalWeight", "stats"} {
		if _, ok := got[k]; !ok {
			t.Errorf("weighted path missing %q in %s", k, raw)
		}
	}

	if got["found"] != true || got["totalWeight"] != 2.5 {
		t.Errorf("unexpected weighted encoding %s", raw)
	}

	raw, err = json.Marshal(models.NotFound())
	assertNoError(t, err)

	if !strings.Contains(string(raw), `"found":false`) || !strings.Contains(string(raw), `"nodes":[]`) {
		t.Errorf("unexpected not-found encoding %s", raw)
	}

	if strings.Contains(string(raw), "totalWeight") || strings.Contains(string(raw), "pathFound") {
		t.Errorf("not-found path leaked weight or legacy keys: %s", raw)
	}
}

func TestPathRequest_Validate(t *testing.T) {
	valid := func() models.PathRequest {
		return models.PathRequest{Collection: "graph", Start: "A", End: "D", AdjacencyField: "connections"}
	}

	tests := []struct {
		name    string
		mutate  func(r *models.PathRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(*models.PathRequest) {}},
		{name: "missing collection", mutate: func(r *models.PathRequest) { r.Collection = "" }, wantErr: "collection is required"},
		{name: "missing start", mutate: func(r *models.PathRequest) { r.Start = "" }, wantErr: "start is required"},
		{name: "missing end", mutate: func(r *models.PathRequest) { r.End = "" }, wantErr: "end is required"},
		{name: "missing field", mutate: func(r *models.PathRequest) { r.AdjacencyField = "" }, wantErr: "adjacency field is required"},
		{name: "bad field path", mutate: func(r *models.PathRequest) { r.AdjacencyField = "a..b" }, wantErr: "adjacency field is required"},
		{name: "unknown algorithm", mutate: func(r *models.PathRequest) { r.Algorithm = "astar" }, wantErr: "unknown algorithm"},
		{name: "weighted without weight", mutate: func(r *models.PathRequest) { r.Algorithm = models.AlgorithmWeighted }, wantErr: "weight_field is required"},
		{name: "negative depth", mutate: func(r *models.PathRequest) { r.MaxDepth = ptr(-1) }, wantErr: "max_depth"},
		{name: "depth too large", mutate: func(r *models.PathRequest) { r.MaxDepth = ptr(models.MaxPathDepth + 1) }, wantErr: "max_depth"},
		{name: "zero depth", mutate: func(r *models.PathRequest) { r.MaxDepth = ptr(0) }},
		{name: "start too long", mutate: func(r *models.PathRequest) { r.Start = strings.Repeat("x", models.MaxKeyLength+1) }, wantErr: "exceeds maximum length"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)

			err := req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)
				return
			}

			assertNoError(t, err)
		})
	}
}

func TestPathRequest_ValidateDefaultsAlgorithm(t *testing.T) {
	req := models.PathRequest{Collection: "g", Start: "A", End: "B", AdjacencyField: "c"}
	assertNoError(t, req.Validate())

	if req.Algorithm != models.AlgorithmBFS {
		t.Errorf("Algorithm = %q, want bfs", req.Algorithm)
	}
}

func TestBulkDocumentsRequest_Validate(t *testing.T) {
	req := models.BulkDocumentsRequest{Documents: []models.Document{{"_id": "A"}, {"name": "nokey"}}}

	err := req.Validate("_id")
	if !errors.Is(err, models.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	empty := models.BulkDocumentsRequest{}
	if !errors.Is(empty.Validate("_id"), models.ErrMissingDocuments) {
		t.Error("expected ErrMissingDocuments")
	}

	ok := models.BulkDocumentsRequest{Documents: []models.Document{{"_id": "A"}, {"_id": 2}}}
	assertNoError(t, ok.Validate("_id"))
}

func TestLookupRequest_Validate(t *testing.T) {
	req := models.LookupRequest{}
	assertErrorContains(t, req.Validate(), "stage is required")

	req.Stage = map[string]any{"from": "g"}
	if !errors.Is(req.Validate(), models.ErrMissingDocuments) {
		t.Error("expected ErrMissingDocuments")
	}

	req.Documents = []models.Document{{"_id": "x"}}
	assertNoError(t, req.Validate())
}
