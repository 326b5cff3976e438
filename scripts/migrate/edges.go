package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// edge is one directed, weighted edge read from SQLite.
type edge struct {
	Source string
	Target string
	Weight float64
}

// readEdges reads all rows of table. A NULL weight counts as 1.
func readEdges(ctx context.Context, db *sql.DB, table string) ([]edge, error) {
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT source, target, COALESCE(weight, 1) FROM %s ORDER BY rowid`, pgx.Identifier{table}.Sanitize()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []edge
	for rows.Next() {
		var e edge
		if err := rows.Scan(&e.Source, &e.Target, &e.Weight); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// writeDocuments upserts docs into the collection in batches of 100.
func writeDocuments(ctx context.Context, tx pgx.Tx, collection string, docs []document) error {
	const batchSize = 100
	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))
		if err := writeBatch(ctx, tx, collection, docs[i:end]); err != nil {
			return fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func writeBatch(ctx context.Context, tx pgx.Tx, collection string, batch []document) error {
	values := make([]string, 0, len(batch))
	args := make([]any, 0, len(batch)*2+1)
	args = append(args, collection)

	for j, d := range batch {
		base := j*2 + 2
		values = append(values, fmt.Sprintf("($1, $%d, $%d::jsonb)", base, base+1))
		args = append(args, d.ID, d.Doc)
	}

	_, err := tx.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES `+strings.Join(values, ", ")+`
		 ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		args...)
	return err
}
