package store

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/pathfinder/internal/models"
)

// scanDocument scans a single doc column from a row.
func scanDocument(row pgx.Row) (models.Document, error) {
	var raw []byte

	if err := row.Scan(&raw); err != nil {
		return nil, err
	}

	return decodeDocument(raw)
}

func decodeDocument(raw []byte) (models.Document, error) {
	var doc models.Document

	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	return doc, nil
}

// collectDocuments drains rows into documents.
func collectDocuments(rows pgx.Rows) ([]models.Document, error) {
	defer rows.Close()

	var out []models.Document

	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		out = append(out, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return out, nil
}
