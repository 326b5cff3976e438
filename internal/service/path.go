package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/domain"
	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

// Compile-time check: *PathService must satisfy domain.PathService.
var _ domain.PathService = (*PathService)(nil)

// PathService runs point-to-point searches.
type PathService struct {
	catalog  pathfind.Catalog
	settings Settings
	events   Publisher
	log      *logrus.Logger
}

// NewPathService creates a PathService. events may be nil.
func NewPathService(catalog pathfind.Catalog, settings Settings, events Publisher, log *logrus.Logger) *PathService {
	return &PathService{catalog: catalog, settings: settings, events: events, log: log}
}

// FindPath validates req and runs the requested algorithm.
func (s *PathService) FindPath(ctx context.Context, req models.PathRequest) (*models.Path, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	maxDepth := s.settings.DefaultMaxDepth
	if req.MaxDepth != nil {
		maxDepth = *req.MaxDepth
	}

	log := requestLog(ctx, s.log)
	log.WithFields(logrus.Fields{
		"collection": req.Collection,
		"start":      req.Start,
		"end":        req.End,
		"algorithm":  req.Algorithm,
		"max_depth":  maxDepth,
	}).Debug("path.find")

	store, err := s.catalog.Collection(ctx, req.Collection)
	if err != nil {
		return nil, fmt.Errorf("resolving collection %s: %w", req.Collection, err)
	}

	opts := s.settings.engineOptions()
	if req.StopAtFirstMeeting != nil {
		opts.StopAtFirstMeeting = *req.StopAtFirstMeeting
	}

	engine := pathfind.New(store, opts, log)
	start, end := models.NodeKey(req.Start), models.NodeKey(req.End)
	began := time.Now()

	var path *models.Path

	switch req.Algorithm {
	case models.AlgorithmWeighted:
		path, err = engine.FindWeightedPath(ctx, start, end, req.AdjacencyField, req.IDField, req.WeightField, maxDepth)
	case models.AlgorithmBidirectional:
		path, err = engine.FindBidirectionalPath(ctx, start, end, req.AdjacencyField, req.IDField, maxDepth)
	case models.AlgorithmBatch:
		idField := req.IDField
		if idField == "" {
			idField = opts.KeyField
		}

		path, err = engine.BatchSearch(ctx, pathfind.BatchQuery{
			ConnectFromField: req.AdjacencyField,
			ConnectToField:   idField,
			Start:            []any{req.Start},
			Target:           []any{req.End},
			MaxDepth:         &maxDepth,
		})
	default:
		path, err = engine.FindPath(ctx, start, end, req.AdjacencyField, req.IDField, maxDepth)
	}

	elapsed := time.Since(began)
	observe(req.Algorithm, path, err, elapsed)

	if err != nil {
		return nil, fmt.Errorf("%s search: %w", req.Algorithm, err)
	}

	publish(s.events, log, models.Event{
		Type:       models.EventSearchCompleted,
		Collection: req.Collection,
		Algorithm:  req.Algorithm,
		Found:      path.Found,
		Depth:      path.Depth,
		DurationMS: elapsed.Milliseconds(),
	})

	return path, nil
}
