package api

import (
	"context"

	"github.com/collegedir/collegedir/internal/models"
)

// CollegeService defines the read operations of the directory.
type CollegeService interface {
	ListColleges(ctx context.Context, f models.CollegeFilter) (*models.CollegePage, error)
	GetCollege(ctx context.Context, id int64) (*models.CollegeDetail, error)
	ListFacetValues(ctx context.Context, facet models.Facet) ([]string, error)
	ListCutoffs(ctx context.Context, collegeID int64) ([]models.Cutoff, error)
	GetAdmissionRequirement(ctx context.Context, category string) (*models.AdmissionRequirement, error)
}

// IngestService defines bulk upload and run history operations.
type IngestService interface {
	Upload(ctx context.Context, source models.IngestSource, data []byte, actor, requestID string) (*models.IngestReport, error)
	ListRuns(ctx context.Context, limit, offset int) ([]models.IngestRun, bool, error)
	Template() ([]byte, error)
}

// StatsService defines aggregate statistics.
type StatsService interface {
	Stats(ctx context.Context) (models.Stats, error)
}

// HealthChecker reports database connectivity and schema state.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	AppliedSchemaVersion(ctx context.Context) (int64, error)
}
