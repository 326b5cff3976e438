// Package main imports an edge-list graph from SQLite into a pathfinder
// collection on PostgreSQL. Every node row becomes one document whose
// adjacency field lists its outgoing edges as {key, weight} records.
//
// Usage:
//
//	SQLITE_PATH=graph.sqlite DATABASE_URL=postgres://... COLLECTION=roads go run ./scripts/migrate
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	_ "modernc.org/sqlite"
)

// config holds environment-driven import settings.
type config struct {
	SQLitePath     string
	DatabaseURL    string
	Collection     string
	NodesTable     string
	EdgesTable     string
	KeyField       string
	AdjacencyField string
	WeightField    string
	DryRun         bool
}

// skippedEdge records an edge that was dropped during import.
type skippedEdge struct {
	Source string
	Target string
	Reason string
}

// report holds the final import summary.
type report struct {
	Source       string
	Target       string
	Collection   string
	NodesRead    int
	EdgesRead    int
	EdgesKept    int
	EdgesSkipped int
	DocsWritten  int
	DocsVerified int
	SkippedEdges []skippedEdge
	SpotChecks   []string
	Duration     time.Duration
	DryRun       bool
	Err          error
}

func main() {
	cfg := loadConfig()
	if cfg.DatabaseURL == "" && !cfg.DryRun {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	if err := validTable(cfg.NodesTable); err != nil {
		slog.Error("invalid NODES_TABLE", "error", err)
		os.Exit(1)
	}

	if err := validTable(cfg.EdgesTable); err != nil {
		slog.Error("invalid EDGES_TABLE", "error", err)
		os.Exit(1)
	}

	slog.Info("starting import",
		"sqlite", cfg.SQLitePath,
		"collection", cfg.Collection,
		"dry_run", cfg.DryRun,
	)

	start := time.Now()
	r, err := runImport(context.Background(), cfg)
	r.Duration = time.Since(start)
	if err != nil {
		r.Err = err
		slog.Error("import failed", "error", err)
	}
	printReport(&r)
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration from environment variables.
func loadConfig() config {
	return config{
		SQLitePath:     envOr("SQLITE_PATH", "graph.sqlite"),
		DatabaseURL:    envOr("DATABASE_URL", ""),
		Collection:     envOr("COLLECTION", "graph"),
		NodesTable:     envOr("NODES_TABLE", "nodes"),
		EdgesTable:     envOr("EDGES_TABLE", "edges"),
		KeyField:       envOr("KEY_FIELD", "_id"),
		AdjacencyField: envOr("ADJACENCY_FIELD", "connections"),
		WeightField:    envOr("WEIGHT_FIELD", "weight"),
		DryRun:         os.Getenv("DRY_RUN") == "true" || os.Getenv("DRY_RUN") == "1",
	}
}

// runImport reads the SQLite graph, builds documents and writes them in a
// single transaction.
func runImport(ctx context.Context, cfg config) (report, error) {
	r := report{
		Source:     cfg.SQLitePath,
		Target:     sanitizeURL(cfg.DatabaseURL),
		Collection: cfg.Collection,
		DryRun:     cfg.DryRun,
	}

	lite, err := sql.Open("sqlite", cfg.SQLitePath+"?mode=ro")
	if err != nil {
		return r, fmt.Errorf("open sqlite: %w", err)
	}
	defer lite.Close()

	nodes, err := readNodes(ctx, lite, cfg.NodesTable)
	if err != nil {
		return r, fmt.Errorf("read nodes: %w", err)
	}
	r.NodesRead = len(nodes)
	slog.Info("read nodes from sqlite", "count", r.NodesRead)

	edges, err := readEdges(ctx, lite, cfg.EdgesTable)
	if err != nil {
		return r, fmt.Errorf("read edges: %w", err)
	}
	r.EdgesRead = len(edges)
	slog.Info("read edges from sqlite", "count", r.EdgesRead)

	docs, skipped := buildDocuments(nodes, edges, cfg)
	r.EdgesSkipped = len(skipped)
	r.EdgesKept = r.EdgesRead - r.EdgesSkipped
	r.SkippedEdges = skipped

	if cfg.DryRun {
		slog.Info("dry run, skipping PostgreSQL writes")
		r.DocsWritten = len(docs)
		return r, nil
	}

	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return r, fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return r, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if err := writeDocuments(ctx, tx, cfg.Collection, docs); err != nil {
		return r, fmt.Errorf("write documents: %w", err)
	}
	r.DocsWritten = len(docs)
	slog.Info("wrote documents", "count", r.DocsWritten)

	r.DocsVerified, err = countDocuments(ctx, tx, cfg.Collection)
	if err != nil {
		return r, fmt.Errorf("verify document count: %w", err)
	}

	r.SpotChecks, err = spotCheck(ctx, tx, cfg, docs)
	if err != nil {
		return r, fmt.Errorf("spot check: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return r, fmt.Errorf("commit: %w", err)
	}
	slog.Info("transaction committed")
	return r, nil
}
