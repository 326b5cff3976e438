package service

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/domain"
	"github.com/persistorai/pathfinder/internal/models"
)

// EventDocumentsChanged is published after a bulk load.
const EventDocumentsChanged = "documents.changed"

// Compile-time check: *DocumentService must satisfy domain.DocumentService.
var _ domain.DocumentService = (*DocumentService)(nil)

// DocumentService loads and reads documents.
type DocumentService struct {
	backend  domain.Backend
	keyField string
	events   Publisher
	log      *logrus.Logger
}

// NewDocumentService creates a DocumentService. events may be nil, e.g. when
// the backend publishes its own change notifications.
func NewDocumentService(backend domain.Backend, keyField string, events Publisher, log *logrus.Logger) *DocumentService {
	if keyField == "" {
		keyField = models.DefaultKeyField
	}

	return &DocumentService{backend: backend, keyField: keyField, events: events, log: log}
}

func validateCollection(name string) error {
	if name == "" {
		return models.ErrMissingCollection
	}

	if len(name) > models.MaxCollectionLength {
		return models.ErrFieldTooLong("collection", models.MaxCollectionLength)
	}

	return nil
}

// UpsertDocuments validates and writes req.Documents into collection.
func (s *DocumentService) UpsertDocuments(
	ctx context.Context, collection string, req models.BulkDocumentsRequest,
) (*models.BulkResult, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	if err := req.Validate(s.keyField); err != nil {
		return nil, err
	}

	requestLog(ctx, s.log).WithFields(logrus.Fields{
		"collection": collection,
		"count":      len(req.Documents),
	}).Debug("documents.upsert")

	n, err := s.backend.Upsert(ctx, collection, req.Documents)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		data, _ := json.Marshal(map[string]any{ //nolint:errcheck // static keys, cannot fail.
			"collection": collection,
			"op":         "UPSERT",
			"count":      n,
		})
		s.events.BroadcastEvent(EventDocumentsChanged, data)
	}

	return &models.BulkResult{Upserted: n}, nil
}

// GetDocument returns one document.
func (s *DocumentService) GetDocument(ctx context.Context, collection, id string) (models.Document, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}

	if id == "" || len(id) > models.MaxKeyLength {
		return nil, models.InvalidArgument("document id must be 1..%d bytes", models.MaxKeyLength)
	}

	requestLog(ctx, s.log).WithFields(logrus.Fields{
		"collection": collection,
		"id":         id,
	}).Debug("documents.get")

	return s.backend.Get(ctx, collection, models.NodeKey(id))
}
