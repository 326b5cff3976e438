package client

import (
	"context"
	"net/url"
)

// DocumentService loads and reads collection documents.
type DocumentService struct {
	c *Client
}

// maxBatch mirrors the server's per-request document limit.
const maxBatch = 5000

func collectionPath(collection string) string {
	return "/api/v1/collections/" + url.PathEscape(collection) + "/documents"
}

// Upsert writes docs in batches of at most maxBatch and returns the total
// number upserted.
func (s *DocumentService) Upsert(ctx context.Context, collection string, docs []Document) (int, error) {
	total := 0

	for start := 0; start < len(docs); start += maxBatch {
		end := min(start+maxBatch, len(docs))

		var resp BulkResult
		body := map[string]any{"documents": docs[start:end]}
		if err := s.c.post(ctx, collectionPath(collection), body, &resp); err != nil {
			return total, err
		}
		total += resp.Upserted
	}

	return total, nil
}

// Get returns one document by key.
func (s *DocumentService) Get(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	if err := s.c.get(ctx, collectionPath(collection)+"/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
