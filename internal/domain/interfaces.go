// Package domain defines the canonical service interfaces shared across API
// layers (REST handlers, the client SDK). Consumers should depend on these
// interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/collegedir/collegedir/internal/models"
)

// CollegeReader defines the read side of the directory.
type CollegeReader interface {
	ListColleges(ctx context.Context, f models.CollegeFilter) ([]models.College, int64, error)
	GetCollege(ctx context.Context, id int64) (*models.CollegeDetail, error)
	ListFacetValues(ctx context.Context, facet models.Facet) ([]string, error)
}

// ReferenceReader defines lookups of cutoff and admission reference data.
type ReferenceReader interface {
	ListCutoffs(ctx context.Context, collegeID int64) ([]models.Cutoff, error)
	GetAdmissionRequirement(ctx context.Context, category string) (*models.AdmissionRequirement, error)
}

// StatsReader computes aggregate counts.
type StatsReader interface {
	Stats(ctx context.Context, topN int) (models.Stats, error)
}

// CollegeWriter upserts one validated record. Returns true when a new
// college was inserted.
type CollegeWriter interface {
	UpsertCollege(ctx context.Context, rec *models.CollegeRecord) (bool, error)
}

// RunRecorder persists ingestion run summaries.
type RunRecorder interface {
	RecordIngestRun(ctx context.Context, run *models.IngestRun) error
}

// RunLister lists ingestion run summaries, newest first.
type RunLister interface {
	ListIngestRuns(ctx context.Context, limit, offset int) ([]models.IngestRun, bool, error)
}

// Notifier publishes a change event to every server instance (best-effort).
type Notifier interface {
	Notify(ctx context.Context, payload any)
}

// AdminLookup resolves an admin API key to the key's name.
type AdminLookup interface {
	GetAdminByAPIKey(ctx context.Context, apiKey string) (string, error)
}
