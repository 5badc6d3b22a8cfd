// Package main provides a standalone seeding tool that loads a college export
// (JSON, CSV, or a legacy SQLite database) into the directory through the same
// reconciler the upload endpoints use, then prints a summary report.
//
// Usage:
//
//	SEED_SOURCE=colleges.json DATABASE_URL=postgres://... collegedir-seed
//	SEED_SOURCE=legacy.sqlite DRY_RUN=1 collegedir-seed
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/db"
	"github.com/collegedir/collegedir/internal/db/migrations"
	"github.com/collegedir/collegedir/internal/dbpool"
	"github.com/collegedir/collegedir/internal/ingest"
	"github.com/collegedir/collegedir/internal/models"
	"github.com/collegedir/collegedir/internal/service"
	"github.com/collegedir/collegedir/internal/store"
)

// statsTopN bounds the per-district and per-category rows in the report.
const statsTopN = 10

// seedConfig holds environment-driven seeding settings.
type seedConfig struct {
	Source      string
	SQLiteTable string
	DatabaseURL string
	DryRun      bool
}

// seedReport holds the final seeding summary.
type seedReport struct {
	Source   string
	Format   sourceFormat
	Target   string
	DryRun   bool
	Read     int
	Result   *models.IngestReport
	Stats    models.Stats
	Duration time.Duration
	Err      error
}

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := loadSeedConfig()
	if cfg.Source == "" {
		log.Error("SEED_SOURCE is required")
		os.Exit(1)
	}

	if cfg.DatabaseURL == "" && !cfg.DryRun {
		log.Error("DATABASE_URL is required unless DRY_RUN is set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{"source": cfg.Source, "dry_run": cfg.DryRun}).Info("starting seed")

	start := time.Now()
	r, err := runSeed(ctx, cfg, log)
	r.Duration = time.Since(start)

	if err != nil {
		r.Err = err
		log.WithError(err).Error("seed failed")
	}

	printReport(os.Stdout, &r)

	if err != nil || (r.Result != nil && len(r.Result.Errors) > 0) {
		os.Exit(1)
	}
}

func loadSeedConfig() seedConfig {
	return seedConfig{
		Source:      os.Getenv("SEED_SOURCE"),
		SQLiteTable: envOr("SEED_SQLITE_TABLE", "colleges"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DryRun:      os.Getenv("DRY_RUN") == "true" || os.Getenv("DRY_RUN") == "1",
	}
}

// runSeed reads the source, reconciles it against the target and collects stats.
func runSeed(ctx context.Context, cfg seedConfig, log *logrus.Logger) (seedReport, error) {
	r := seedReport{
		Source: cfg.Source,
		Format: detectFormat(cfg.Source),
		Target: sanitizeURL(cfg.DatabaseURL),
		DryRun: cfg.DryRun,
	}

	records, err := readSource(ctx, cfg.Source, r.Format, cfg.SQLiteTable)
	if err != nil {
		return r, err
	}

	r.Read = len(records)
	log.WithField("count", r.Read).Info("read records")

	if cfg.DryRun {
		r.Result = ingest.NewReconciler(newDryRunStore(), log).Reconcile(ctx, records)
		return r, nil
	}

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL, dbpool.Options{MaxConns: 2, ConnectRetries: 5, Log: log})
	if err != nil {
		return r, fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return r, fmt.Errorf("migrate: %w", err)
	}

	base := store.Base{Pool: pool, Log: log}
	colleges := store.NewCollegeStore(base)

	r.Result = ingest.NewReconciler(colleges, log).Reconcile(ctx, records)

	if r.Result.Inserted+r.Result.Updated > 0 {
		colleges.Notify(ctx, map[string]any{
			"type":     service.EventIngestCompleted,
			"source":   "seed",
			"inserted": r.Result.Inserted,
			"updated":  r.Result.Updated,
			"failed":   len(r.Result.Errors),
		})
	}

	r.Stats, err = store.NewStatsStore(base).Stats(ctx, statsTopN)
	if err != nil {
		return r, fmt.Errorf("collect stats: %w", err)
	}

	return r, nil
}

// sanitizeURL strips the password from a database URL for display.
func sanitizeURL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "(invalid URL)"
	}

	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}

	return u.String()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
