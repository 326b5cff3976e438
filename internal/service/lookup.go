package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/domain"
	"github.com/persistorai/pathfinder/internal/lookup"
	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

// Compile-time check: *LookupService must satisfy domain.LookupService.
var _ domain.LookupService = (*LookupService)(nil)

// LookupService runs $bidirectionalGraphLookup stages over caller documents.
type LookupService struct {
	catalog  pathfind.Catalog
	settings Settings
	events   Publisher
	log      *logrus.Logger
}

// NewLookupService creates a LookupService. events may be nil.
func NewLookupService(catalog pathfind.Catalog, settings Settings, events Publisher, log *logrus.Logger) *LookupService {
	return &LookupService{catalog: catalog, settings: settings, events: events, log: log}
}

// Lookup parses the stage and drains it over req.Documents.
func (s *LookupService) Lookup(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	spec, err := lookup.ParseStage(req.Stage)
	if err != nil {
		return nil, err
	}

	log := requestLog(ctx, s.log)
	log.WithFields(logrus.Fields{
		"collection": spec.From,
		"inputs":     len(req.Documents),
	}).Debug("lookup.run")

	stage := lookup.NewStage(spec, s.catalog, lookup.NewSliceSource(req.Documents), lookup.Options{
		Engine:     s.settings.engineOptions(),
		SingleShot: s.settings.LookupSingleShot,
	}, log)

	began := time.Now()
	results, err := stage.Run(ctx)
	elapsed := time.Since(began)

	found := 0

	for _, r := range results {
		if recs, ok := r.Get(spec.As); ok {
			if arr, ok := recs.([]any); ok && len(arr) > 0 {
				found++
			}
		}
	}

	observe(models.AlgorithmBatch, &models.Path{Found: found > 0}, err, elapsed)

	if err != nil {
		return nil, err
	}

	publish(s.events, log, models.Event{
		Type:       models.EventLookupCompleted,
		Collection: spec.From,
		Algorithm:  models.AlgorithmBatch,
		Found:      found > 0,
		Inputs:     len(results),
		DurationMS: elapsed.Milliseconds(),
	})

	return &models.LookupResult{Results: results}, nil
}
