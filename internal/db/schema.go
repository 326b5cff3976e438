package db

import (
	"context"
	"fmt"

	"github.com/persistorai/pathfinder/internal/dbpool"
)

// CheckSchema verifies that every embedded migration has been applied.
func CheckSchema(ctx context.Context, pool *dbpool.Pool) error {
	var applied int64

	err := pool.QueryRow(ctx,
		"SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version WHERE is_applied",
	).Scan(&applied)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	if want := int64(SchemaVersion()); applied < want {
		return fmt.Errorf("schema at version %d, want %d", applied, want)
	}

	return nil
}
