package api_test

import (
	"context"

	"github.com/persistorai/pathfinder/internal/models"
)

// mockPathService implements domain.PathService for testing.
type mockPathService struct {
	findFn func(ctx context.Context, req models.PathRequest) (*models.Path, error)
}

func (m *mockPathService) FindPath(ctx context.Context, req models.PathRequest) (*models.Path, error) {
	return m.findFn(ctx, req)
}

// mockLookupService implements domain.LookupService for testing.
type mockLookupService struct {
	lookupFn func(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error)
}

func (m *mockLookupService) Lookup(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error) {
	return m.lookupFn(ctx, req)
}

// mockDocumentService implements domain.DocumentService for testing.
type mockDocumentService struct {
	upsertFn func(ctx context.Context, collection string, req models.BulkDocumentsRequest) (*models.BulkResult, error)
	getFn    func(ctx context.Context, collection, id string) (models.Document, error)
}

func (m *mockDocumentService) UpsertDocuments(ctx context.Context, collection string, req models.BulkDocumentsRequest) (*models.BulkResult, error) {
	return m.upsertFn(ctx, collection, req)
}

func (m *mockDocumentService) GetDocument(ctx context.Context, collection, id string) (models.Document, error) {
	return m.getFn(ctx, collection, id)
}

// mockPinger implements api.Pinger.
type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }
