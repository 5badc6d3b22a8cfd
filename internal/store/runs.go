package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/collegedir/collegedir/internal/models"
)

// RunStore provides data access for the ingest_runs log.
type RunStore struct {
	Base
}

// NewRunStore creates a RunStore.
func NewRunStore(base Base) *RunStore {
	return &RunStore{Base: base}
}

// RecordIngestRun inserts one ingestion run.
func (s *RunStore) RecordIngestRun(ctx context.Context, run *models.IngestRun) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.Pool.Exec(ctx, `
		INSERT INTO ingest_runs
			(source, total, inserted, updated, failed, actor, request_id, duration_ms)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)`,
		string(run.Source), run.Total, run.Inserted, run.Updated, run.Failed,
		run.Actor, run.RequestID, run.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("inserting ingest run: %w", err)
	}

	return nil
}

// ListIngestRuns returns the most recent runs, newest first.
// Returns runs, hasMore flag, and any error.
func (s *RunStore) ListIngestRuns(ctx context.Context, limit, offset int) ([]models.IngestRun, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	limit = clampLimit(limit)

	rows, err := s.Pool.Query(ctx, `
		SELECT id, source, total, inserted, updated, failed,
		       COALESCE(actor, ''), COALESCE(request_id, ''), duration_ms, created_at
		FROM ingest_runs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit+1, offset)
	if err != nil {
		return nil, false, fmt.Errorf("listing ingest runs: %w", err)
	}

	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.IngestRun, error) {
		var r models.IngestRun
		err := row.Scan(&r.ID, &r.Source, &r.Total, &r.Inserted, &r.Updated, &r.Failed,
			&r.Actor, &r.RequestID, &r.DurationMS, &r.CreatedAt)

		return r, err
	})
	if err != nil {
		return nil, false, fmt.Errorf("scanning ingest runs: %w", err)
	}

	hasMore := len(runs) > limit
	if hasMore {
		runs = runs[:limit]
	}

	return runs, hasMore, nil
}
