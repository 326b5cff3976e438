// Package service provides the operations behind the API handlers: it applies
// configured defaults, runs the engine against the configured store, records
// metrics and publishes completion events.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/metrics"
	"github.com/persistorai/pathfinder/internal/models"
	"github.com/persistorai/pathfinder/internal/pathfind"
)

// Publisher receives completion events. *ws.Hub satisfies it.
type Publisher interface {
	BroadcastEvent(eventType string, data json.RawMessage)
}

// Settings are the service-wide search defaults.
type Settings struct {
	KeyField           string
	DefaultMaxDepth    int
	MaxMemoryBytes     int64
	StopAtFirstMeeting bool
	LookupSingleShot   bool
}

// DefaultSettings mirrors the engine defaults.
func DefaultSettings() Settings {
	opts := pathfind.DefaultOptions()

	return Settings{
		KeyField:           opts.KeyField,
		DefaultMaxDepth:    pathfind.DefaultMaxDepth,
		MaxMemoryBytes:     opts.MemoryLimitBytes,
		StopAtFirstMeeting: opts.StopAtFirstMeeting,
		LookupSingleShot:   true,
	}
}

func (s Settings) engineOptions() pathfind.Options {
	return pathfind.Options{
		KeyField:           s.KeyField,
		MemoryLimitBytes:   s.MaxMemoryBytes,
		StopAtFirstMeeting: s.StopAtFirstMeeting,
	}
}

// requestLog tags log with the request ID carried by ctx, if any.
func requestLog(ctx context.Context, log *logrus.Logger) logrus.FieldLogger {
	if id := models.RequestIDFrom(ctx); id != "" {
		return log.WithField("request_id", id)
	}

	return log
}

// publish marshals evt and hands it to p. A nil publisher drops the event.
func publish(p Publisher, log logrus.FieldLogger, evt models.Event) {
	if p == nil {
		return
	}

	data, err := json.Marshal(evt)
	if err != nil {
		log.WithError(err).Warn("failed to marshal event")

		return
	}

	p.BroadcastEvent(evt.Type, data)
}

// observe records search metrics.
func observe(alg models.Algorithm, path *models.Path, err error, elapsed time.Duration) {
	a := string(alg)
	metrics.SearchDuration.WithLabelValues(a).Observe(elapsed.Seconds())

	switch {
	case err != nil:
		metrics.SearchesTotal.WithLabelValues(a, "error").Inc()

		if errors.Is(err, models.ErrMemoryLimitExceeded) {
			metrics.ErrorsTotal.WithLabelValues("memory_limit").Inc()
		}

		return
	case path.Found:
		metrics.SearchesTotal.WithLabelValues(a, "found").Inc()
	default:
		metrics.SearchesTotal.WithLabelValues(a, "not_found").Inc()
	}

	metrics.StoreQueriesTotal.WithLabelValues(a).Add(float64(path.Stats.StoreQueries))
	metrics.NodesVisited.WithLabelValues(a).Observe(float64(path.Stats.NodesVisited))
}
