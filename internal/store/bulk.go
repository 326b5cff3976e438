package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/persistorai/pathfinder/internal/models"
)

// maxBulkBatchSize limits the number of rows per INSERT statement to avoid
// exceeding PostgreSQL's parameter limit (65535 params).
const maxBulkBatchSize = 500

type row struct {
	id  string
	doc []byte
}

// Upsert inserts or replaces documents in a single transaction using
// multi-row INSERT ... ON CONFLICT. Returns the number of documents written.
func (s *Store) Upsert(ctx context.Context, collection string, docs []models.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	// Encode before opening the transaction to minimize lock time. A key
	// repeated in the input keeps its last document; Postgres rejects a
	// statement that touches one row twice.
	index := make(map[string]int, len(docs))
	rows := make([]row, 0, len(docs))

	for i, d := range docs {
		k, ok := d.Key(s.keyField)
		if !ok {
			return 0, models.InvalidArgument("document %d has no %s", i, s.keyField)
		}

		b, err := json.Marshal(d)
		if err != nil {
			return 0, models.InvalidArgument("document %d is not encodable: %v", i, err)
		}

		if j, dup := index[string(k)]; dup {
			rows[j].doc = b

			continue
		}

		index[string(k)] = len(rows)
		rows = append(rows, row{id: string(k), doc: b})
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	total := 0

	// Process in batches to stay within parameter limits.
	for i := 0; i < len(rows); i += maxBulkBatchSize {
		end := min(i+maxBulkBatchSize, len(rows))
		batch := rows[i:end]

		valueParts := make([]string, 0, len(batch))
		args := make([]any, 0, len(batch)*2+1)
		args = append(args, collection)

		for j, r := range batch {
			base := j*2 + 2
			valueParts = append(valueParts, fmt.Sprintf("($1, $%d, $%d::jsonb)", base, base+1))
			args = append(args, r.id, string(r.doc))
		}

		sql := `INSERT INTO documents (collection, id, doc)
			VALUES ` + strings.Join(valueParts, ", ") + `
			ON CONFLICT (collection, id) DO UPDATE
			SET doc = EXCLUDED.doc,
				updated_at = NOW()`

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return 0, fmt.Errorf("upserting documents batch: %w", err)
		}

		total += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing document upsert: %w", err)
	}

	s.notify(collection, "UPSERT", total)

	return total, nil
}
