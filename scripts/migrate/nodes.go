package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// node is one vertex row read from SQLite. Properties is an optional JSON
// object merged into the document.
type node struct {
	ID         string
	Properties sql.NullString
}

// readNodes reads all rows of table.
func readNodes(ctx context.Context, db *sql.DB, table string) ([]node, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, properties FROM %s`, pgx.Identifier{table}.Sanitize()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []node
	for rows.Next() {
		var n node
		if err := rows.Scan(&n.ID, &n.Properties); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// document is one row of the documents table.
type document struct {
	ID  string
	Doc map[string]any
}

// buildDocuments turns nodes and edges into adjacency documents. Edges whose
// endpoints are not nodes are skipped. Edge order within a document follows
// the edge table order.
func buildDocuments(nodes []node, edges []edge, cfg config) ([]document, []skippedEdge) {
	index := make(map[string]int, len(nodes))
	docs := make([]document, 0, len(nodes))

	for i := range nodes {
		n := &nodes[i]
		if _, dup := index[n.ID]; dup {
			continue
		}

		doc := parseProps(n.Properties)
		doc[cfg.KeyField] = n.ID
		doc[cfg.AdjacencyField] = []any{}

		index[n.ID] = len(docs)
		docs = append(docs, document{ID: n.ID, Doc: doc})
	}

	var skipped []skippedEdge

	for _, e := range edges {
		src, ok := index[e.Source]
		if !ok {
			skipped = append(skipped, skippedEdge{e.Source, e.Target, "source node not found"})
			continue
		}
		if _, ok := index[e.Target]; !ok {
			skipped = append(skipped, skippedEdge{e.Source, e.Target, "target node not found"})
			continue
		}
		if e.Weight < 0 {
			skipped = append(skipped, skippedEdge{e.Source, e.Target, "negative weight"})
			continue
		}

		d := docs[src].Doc
		d[cfg.AdjacencyField] = append(d[cfg.AdjacencyField].([]any), map[string]any{
			cfg.KeyField:    e.Target,
			cfg.WeightField: e.Weight,
		})
	}

	return docs, skipped
}
