package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"os"
	"regexp"

	"github.com/jackc/pgx/v5"
)

var tableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validTable rejects table names that are not plain identifiers.
func validTable(name string) error {
	if !tableName.MatchString(name) {
		return fmt.Errorf("%q is not a plain table name", name)
	}
	return nil
}

// parseProps decodes a properties column into a fresh map. Missing or
// invalid JSON yields an empty map.
func parseProps(s sql.NullString) map[string]any {
	props := map[string]any{}
	if !s.Valid || s.String == "" {
		return props
	}
	if err := json.Unmarshal([]byte(s.String), &props); err != nil {
		slog.Warn("invalid JSON in properties, using empty object", "value", s.String)
		return map[string]any{}
	}
	return props
}

// sanitizeURL removes credentials from a database URL for display.
func sanitizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable URL]"
	}
	u.User = nil
	return u.String()
}

// envOr returns the environment variable value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// countDocuments counts the documents stored in collection.
func countDocuments(ctx context.Context, tx pgx.Tx, collection string) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `SELECT count(*) FROM documents WHERE collection = $1`, collection).Scan(&count)
	return count, err
}

// spotCheck compares the adjacency length of up to 5 random documents with
// what was written.
func spotCheck(ctx context.Context, tx pgx.Tx, cfg config, docs []document) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	count := min(5, len(docs))
	var checks []string

	for _, idx := range rand.Perm(len(docs))[:count] {
		d := docs[idx]
		want := len(d.Doc[cfg.AdjacencyField].([]any))

		var got int
		err := tx.QueryRow(ctx,
			`SELECT jsonb_array_length(doc -> $3) FROM documents WHERE collection = $1 AND id = $2`,
			cfg.Collection, d.ID, cfg.AdjacencyField,
		).Scan(&got)
		if err != nil {
			return checks, fmt.Errorf("reading %s: %w", d.ID, err)
		}

		if got == want {
			checks = append(checks, fmt.Sprintf("ok   %s: %d edges", d.ID, got))
		} else {
			checks = append(checks, fmt.Sprintf("FAIL %s: %d edges stored, %d expected", d.ID, got, want))
		}
	}
	return checks, nil
}

// printReport outputs the final import summary.
func printReport(r *report) {
	fmt.Println()
	fmt.Println("=== Pathfinder Import Report ===")
	if r.DryRun {
		fmt.Println("MODE: DRY RUN (no changes made)")
	}
	fmt.Printf("Source:     %s\n", r.Source)
	fmt.Printf("Target:     %s\n", r.Target)
	fmt.Printf("Collection: %s\n", r.Collection)
	fmt.Println()
	fmt.Printf("Nodes: %d read, %d documents written, %d in collection %s\n",
		r.NodesRead, r.DocsWritten, r.DocsVerified, statusMark(r))
	fmt.Printf("Edges: %d read, %d kept, %d skipped\n", r.EdgesRead, r.EdgesKept, r.EdgesSkipped)

	if len(r.SkippedEdges) > 0 {
		fmt.Println("\nSkipped edges:")
		for _, s := range r.SkippedEdges {
			fmt.Printf("  - %s -> %s (%s)\n", s.Source, s.Target, s.Reason)
		}
	}

	if len(r.SpotChecks) > 0 {
		fmt.Println("\nSpot checks:")
		for _, c := range r.SpotChecks {
			fmt.Printf("  %s\n", c)
		}
	}

	fmt.Printf("\nDuration: %.1fs\n", r.Duration.Seconds())
	if r.Err != nil {
		fmt.Printf("Status: FAILED: %v\n", r.Err)
	} else {
		fmt.Println("Status: SUCCESS")
	}
}

// statusMark compares written and stored counts. The collection may already
// hold documents from earlier imports, so more stored than written is fine.
func statusMark(r *report) string {
	switch {
	case r.DryRun:
		return "(dry run)"
	case r.DocsVerified >= r.DocsWritten:
		return "[ok]"
	default:
		return "[MISMATCH]"
	}
}
