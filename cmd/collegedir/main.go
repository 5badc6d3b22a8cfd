// Command collegedir serves the college directory API.
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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/collegedir/collegedir/internal/api"
	"github.com/collegedir/collegedir/internal/config"
	"github.com/collegedir/collegedir/internal/db"
	"github.com/collegedir/collegedir/internal/db/migrations"
	"github.com/collegedir/collegedir/internal/dbpool"
	"github.com/collegedir/collegedir/internal/ingest"
	"github.com/collegedir/collegedir/internal/service"
	"github.com/collegedir/collegedir/internal/store"
	"github.com/collegedir/collegedir/internal/ws"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logrus.New()

	if err := run(log); err != nil {
		log.WithError(err).Fatal("collegedir exited")
	}
}

func run(log *logrus.Logger) error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	configureLogger(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), dbpool.Options{
		MaxConns:       int32(cfg.DBMaxConns), //nolint:gosec // bounded by config validation.
		ConnectRetries: 10,
		Log:            log,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	base := store.Base{Pool: pool, Log: log}
	colleges := store.NewCollegeStore(base)
	runs := store.NewRunStore(base)
	adminKeys := store.NewAdminKeyStore(base)

	if key := cfg.AdminAPIKey.Value(); key != "" {
		if err := adminKeys.EnsureAdminKey(ctx, "bootstrap", key); err != nil {
			return fmt.Errorf("registering bootstrap admin key: %w", err)
		}
	}

	hub := ws.NewHub(log, cfg.WSMaxClients)
	runWorker := service.NewRunWorker(runs, log, 0)
	bridge := db.NewNotifyBridge(log, pool, hub)

	reconciler := ingest.NewReconciler(colleges, log)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:            log,
		DB:             db.NewChecker(pool),
		Hub:            hub,
		Colleges:       service.NewCollegeService(colleges, store.NewReferenceStore(base), log, cfg.DefaultPageSize, cfg.MaxPageSize),
		Ingest:         service.NewIngestService(reconciler, runWorker, runs, colleges, log),
		Stats:          service.NewStatsService(store.NewStatsStore(base), log),
		AdminLookup:    adminKeys,
		CORSOrigins:    cfg.CORSOrigins,
		Version:        config.Version,
		SchemaVersion:  db.SchemaVersion(),
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	apiServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		runWorker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return bridge.Run(gctx)
	})

	g.Go(func() error {
		return serve(log, apiServer, "api")
	})

	g.Go(func() error {
		return serve(log, metricsServer, "metrics")
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hub.Shutdown()

		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	log.WithFields(logrus.Fields{
		"addr":    cfg.Addr(),
		"metrics": cfg.MetricsAddr(),
		"version": config.Version,
	}).Info("collegedir started")

	return g.Wait()
}

func serve(log *logrus.Logger, srv *http.Server, name string) error {
	log.WithField("addr", srv.Addr).Infof("%s server listening", name)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}

	return nil
}

func configureLogger(log *logrus.Logger, cfg *config.Config) {
	log.SetOutput(os.Stdout)

	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	log.SetLevel(level)
}
