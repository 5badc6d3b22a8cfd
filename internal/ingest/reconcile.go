package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/models"
)

// Store persists parsed records. UpsertCollege matches an existing college by
// natural key, overwriting only the fields the record provides, and reports
// whether a new row was inserted.
type Store interface {
	UpsertCollege(ctx context.Context, rec *models.CollegeRecord) (inserted bool, err error)
}

// Reconciler applies decoded batches to a Store and reports the outcome.
type Reconciler struct {
	store  Store
	log    *logrus.Logger
	parser *parser
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the clock used to reject future founding years.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.parser.now = now }
}

// NewReconciler creates a Reconciler backed by store.
func NewReconciler(store Store, log *logrus.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{store: store, log: log, parser: newParser(time.Now)}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reconcile processes records in input order. Every record ends up counted as
// inserted, updated, or as exactly one entry in the report's Errors.
func (r *Reconciler) Reconcile(ctx context.Context, records []RawRecord) *models.IngestReport {
	report := &models.IngestReport{Errors: []string{}}

	for i, raw := range records {
		id := identifier(i+1, raw.Fields[FieldName])

		rec, problems := r.parser.parse(raw)
		if len(problems) > 0 {
			report.Errors = append(report.Errors, id+": "+strings.Join(problems, "; "))
			r.log.WithFields(logrus.Fields{"record": i + 1, "problems": problems}).Debug("ingest.record_rejected")

			continue
		}

		inserted, err := r.store.UpsertCollege(ctx, rec)
		if err != nil {
			report.Errors = append(report.Errors, id+": "+persistMessage(err))
			r.log.WithError(err).WithField("record", i+1).Warn("ingest.record_failed")

			continue
		}

		if inserted {
			report.Inserted++
		} else {
			report.Updated++
		}
	}

	report.Message = summary(report)

	return report
}

func identifier(n int, name string) string {
	if name == "" {
		return fmt.Sprintf("College #%d", n)
	}

	return fmt.Sprintf("College #%d (%s)", n, name)
}

func persistMessage(err error) string {
	if errors.Is(err, models.ErrDuplicateKey) {
		return "conflicts with an existing college"
	}

	return "could not be saved: " + err.Error()
}

func summary(report *models.IngestReport) string {
	switch n := len(report.Errors); n {
	case 0:
		return "Upload completed"
	case 1:
		return "Upload completed with 1 error"
	default:
		return fmt.Sprintf("Upload completed with %d errors", n)
	}
}
