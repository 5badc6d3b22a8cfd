package db

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/collegedir/collegedir/internal/db/migrations"
	"github.com/collegedir/collegedir/internal/dbpool"
)

// SchemaVersion returns the highest migration version embedded in the binary.
func SchemaVersion() int64 {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return 0
	}

	var latest int64

	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}

		prefix, _, _ := strings.Cut(e.Name(), "_")

		v, err := strconv.ParseInt(prefix, 10, 64)
		if err == nil && v > latest {
			latest = v
		}
	}

	return latest
}

// AppliedVersion returns the highest migration version recorded by goose.
func AppliedVersion(ctx context.Context, pool *dbpool.Pool) (int64, error) {
	var v int64

	err := pool.QueryRow(ctx,
		"SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version WHERE is_applied",
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("reading applied schema version: %w", err)
	}

	return v, nil
}

// Checker exposes pool connectivity and schema state to health endpoints.
type Checker struct {
	pool *dbpool.Pool
}

// NewChecker creates a Checker for pool.
func NewChecker(pool *dbpool.Pool) *Checker {
	return &Checker{pool: pool}
}

// HealthCheck pings the database.
func (c *Checker) HealthCheck(ctx context.Context) error {
	return c.pool.HealthCheck(ctx)
}

// AppliedSchemaVersion returns the highest applied migration version.
func (c *Checker) AppliedSchemaVersion(ctx context.Context) (int64, error) {
	return AppliedVersion(ctx, c.pool)
}
