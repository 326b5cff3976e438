// Package domain defines the canonical interfaces shared across API layers
// (REST, websocket, client). Consumers should depend on these interfaces
// rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

// Backend is a document store able to serve searches and accept documents.
type Backend interface {
	pathfind.Catalog

	// Upsert inserts or replaces documents keyed by the backend key field.
	Upsert(ctx context.Context, collection string, docs []models.Document) (int, error)

	// Get returns one document or models.ErrNodeNotFound.
	Get(ctx context.Context, collection string, key models.NodeKey) (models.Document, error)

	Ping(ctx context.Context) error
	Close() error
}

// PathService defines path search operations.
type PathService interface {
	FindPath(ctx context.Context, req models.PathRequest) (*models.Path, error)
}

// LookupService runs graph lookup stages over caller-supplied documents.
type LookupService interface {
	Lookup(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error)
}

// DocumentService defines document load and read operations.
type DocumentService interface {
	UpsertDocuments(ctx context.Context, collection string, req models.BulkDocumentsRequest) (*models.BulkResult, error)
	GetDocument(ctx context.Context, collection, id string) (models.Document, error)
}
