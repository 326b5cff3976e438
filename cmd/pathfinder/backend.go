package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/api"
	"github.com/persistorai/pathfinder/internal/badgerstore"
	"github.com/persistorai/pathfinder/internal/config"
	"github.com/persistorai/pathfinder/internal/db"
	"github.com/persistorai/pathfinder/internal/db/migrations"
	"github.com/persistorai/pathfinder/internal/dbpool"
	"github.com/persistorai/pathfinder/internal/domain"
	"github.com/persistorai/pathfinder/internal/memstore"
	"github.com/persistorai/pathfinder/internal/mongostore"
	"github.com/persistorai/pathfinder/internal/service"
	"github.com/persistorai/pathfinder/internal/store"
)

const badgerGCInterval = 5 * time.Minute

// openedBackend is a configured store plus what the server needs around it.
type openedBackend struct {
	store domain.Backend

	// docEvents publishes document change events. Nil when the store
	// forwards its own change notifications.
	docEvents service.Publisher

	checks []api.ReadinessCheck
}

// openBackend opens the store selected by cfg.StoreBackend. For postgres it
// also applies migrations and starts the change notification bridge.
func openBackend(ctx context.Context, cfg *config.Config, log *logrus.Logger, hub service.Publisher) (*openedBackend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg, log, hub)

	case config.BackendBadger:
		s, err := badgerstore.Open(badgerstore.Config{
			Path:       cfg.BadgerPath,
			InMemory:   cfg.BadgerInMem,
			KeyField:   cfg.KeyField,
			GCInterval: badgerGCInterval,
		}, log)
		if err != nil {
			return nil, err
		}

		return &openedBackend{store: s, docEvents: hub}, nil

	case config.BackendMongo:
		s, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.MongoURI.Value(),
			Database: cfg.MongoDatabase,
			KeyField: cfg.KeyField,
		}, log)
		if err != nil {
			return nil, err
		}

		return &openedBackend{store: s, docEvents: hub}, nil

	case config.BackendMemory:
		log.Warn("memory store selected, documents are lost on exit")

		return &openedBackend{store: memstore.New(cfg.KeyField), docEvents: hub}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logrus.Logger, hub service.Publisher) (*openedBackend, error) {
	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), dbpool.Options{
		MaxConns:         int32(cfg.DBMaxConns), //nolint:gosec // validated to 2..200.
		StatementTimeout: cfg.QueryTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if hub != nil {
		if err := db.NewNotifyBridge(log, pool, hub).Start(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &openedBackend{
		store: store.New(store.Base{Pool: pool, Log: log}, cfg.KeyField),
		checks: []api.ReadinessCheck{{
			Name:  "schema",
			Check: func(ctx context.Context) error { return db.CheckSchema(ctx, pool) },
		}},
	}, nil
}
