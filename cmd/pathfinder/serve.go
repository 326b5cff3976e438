package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/pathfinder/internal/api"
	"github.com/persistorai/pathfinder/internal/config"
	"github.com/persistorai/pathfinder/internal/service"
	"github.com/persistorai/pathfinder/internal/ws"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		Long: `Run the HTTP and websocket server.

Configuration comes from the environment. STORE_BACKEND selects postgres
(DATABASE_URL), badger (BADGER_PATH or BADGER_IN_MEMORY), mongo (MONGO_URI,
MONGO_DATABASE) or memory. Search defaults: KEY_FIELD, DEFAULT_MAX_DEPTH,
MAX_MEMORY_BYTES, STOP_AT_FIRST_MEETING, LOOKUP_SINGLE_SHOT, QUERY_TIMEOUT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, cfg.NewLogger())
		},
	}
}

func settingsFrom(cfg *config.Config) service.Settings {
	return service.Settings{
		KeyField:           cfg.KeyField,
		DefaultMaxDepth:    cfg.DefaultMaxDepth,
		MaxMemoryBytes:     cfg.MaxMemoryBytes,
		StopAtFirstMeeting: cfg.StopAtFirstMeeting,
		LookupSingleShot:   cfg.LookupSingleShot,
	}
}

// runServe blocks until ctx is cancelled or the listener fails, then shuts
// the server down and closes the store.
func runServe(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	hub := ws.NewHub(log)

	backend, err := openBackend(ctx, cfg, log, hub)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.store.Close(); err != nil {
			log.WithError(err).Warn("closing store")
		}
	}()

	settings := settingsFrom(cfg)

	handler := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Store:       backend.store,
		Hub:         hub,
		Paths:       service.NewPathService(backend.store, settings, hub, log),
		Lookup:      service.NewLookupService(backend.store, settings, hub, log),
		Documents:   service.NewDocumentService(backend.store, cfg.KeyField, backend.docEvents, log),
		ReadyChecks: backend.checks,
		CORSOrigins: cfg.CORSOrigins,
		Timeout:     cfg.QueryTimeout,
		APIKey:      cfg.APIKey.Value(),
		Backend:     cfg.StoreBackend,
		Version:     config.Version,

		EnablePlayground: cfg.EnablePlayground,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"backend": cfg.StoreBackend,
			"version": config.Version,
		}).Info("pathfinder listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
