package main

import (
	"database/sql"
	"testing"
)

func testConfig() config {
	return config{KeyField: "_id", AdjacencyField: "connections", WeightField: "weight"}
}

func TestBuildDocuments(t *testing.T) {
	nodes := []node{
		{ID: "A", Properties: sql.NullString{String: `{"name":"alpha"}`, Valid: true}},
		{ID: "B"},
		{ID: "C", Properties: sql.NullString{String: `not json`, Valid: true}},
		{ID: "A"},
	}
	edges := []edge{
		{Source: "A", Target: "B", Weight: 2},
		{Source: "A", Target: "C", Weight: 1},
		{Source: "B", Target: "Z", Weight: 1},
		{Source: "X", Target: "A", Weight: 1},
		{Source: "C", Target: "A", Weight: -1},
	}

	docs, skipped := buildDocuments(nodes, edges, testConfig())

	if len(docs) != 3 {
		t.Fatalf("expected 3 documents (duplicate node collapsed), got %d", len(docs))
	}
	if len(skipped) != 3 {
		t.Fatalf("expected 3 skipped edges, got %d: %v", len(skipped), skipped)
	}

	a := docs[0].Doc
	if a["_id"] != "A" || a["name"] != "alpha" {
		t.Errorf("document A = %v", a)
	}

	conns := a["connections"].([]any)
	if len(conns) != 2 {
		t.Fatalf("A has %d connections, want 2", len(conns))
	}
	first := conns[0].(map[string]any)
	if first["_id"] != "B" || first["weight"] != 2.0 {
		t.Errorf("first connection = %v", first)
	}

	if c := docs[2].Doc; len(c) != 2 {
		t.Errorf("C with invalid properties should hold only key and adjacency, got %v", c)
	}

	reasons := map[string]bool{}
	for _, s := range skipped {
		reasons[s.Reason] = true
	}
	for _, want := range []string{"source node not found", "target node not found", "negative weight"} {
		if !reasons[want] {
			t.Errorf("missing skip reason %q", want)
		}
	}
}

func TestValidTable(t *testing.T) {
	for _, name := range []string{"nodes", "kg_edges", "_t1"} {
		if err := validTable(name); err != nil {
			t.Errorf("validTable(%q) = %v", name, err)
		}
	}
	for _, name := range []string{"", "1abc", "nodes; DROP TABLE x", "a.b"} {
		if err := validTable(name); err == nil {
			t.Errorf("validTable(%q) should fail", name)
		}
	}
}

func TestSanitizeURL(t *testing.T) {
	got := sanitizeURL("postgres://user:secret@db:5432/app")
	if got != "postgres://db:5432/app" {
		t.Errorf("sanitizeURL = %q", got)
	}
}
