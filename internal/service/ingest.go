package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/domain"
	"github.com/collegedir/collegedir/internal/ingest"
	"github.com/collegedir/collegedir/internal/metrics"
	"github.com/collegedir/collegedir/internal/models"
)

// EventIngestCompleted is the change event published after every upload
// that wrote at least one college.
const EventIngestCompleted = "ingest.completed"

// RunLister is an alias for the canonical domain.RunLister interface.
type RunLister = domain.RunLister

// Notifier is an alias for the canonical domain.Notifier interface.
type Notifier = domain.Notifier

// IngestService turns uploaded payloads into reconciled directory writes.
type IngestService struct {
	reconciler *ingest.Reconciler
	runWorker  RunEnqueuer
	runs       RunLister
	notifier   Notifier
	log        *logrus.Logger
	now        func() time.Time
}

// NewIngestService creates an IngestService. runWorker and notifier may be nil.
func NewIngestService(
	reconciler *ingest.Reconciler, runWorker RunEnqueuer, runs RunLister, notifier Notifier, log *logrus.Logger,
) *IngestService {
	return &IngestService{
		reconciler: reconciler,
		runWorker:  runWorker,
		runs:       runs,
		notifier:   notifier,
		log:        log,
		now:        time.Now,
	}
}

// Upload decodes data as source and reconciles every record against the
// directory. An *models.EnvelopeError means nothing was processed and no
// report exists; otherwise the report accounts for every record.
func (s *IngestService) Upload(
	ctx context.Context, source models.IngestSource, data []byte, actor, requestID string,
) (*models.IngestReport, error) {
	start := s.now()

	records, err := decode(source, data)
	if err != nil {
		metrics.IngestRuns.WithLabelValues(string(source), "rejected").Inc()

		s.log.WithFields(logrus.Fields{
			"source":     source,
			"actor":      actor,
			"request_id": requestID,
		}).WithError(err).Info("upload rejected")

		return nil, err
	}

	// A client disconnect must not leave the batch half reported.
	report := s.reconciler.Reconcile(context.WithoutCancel(ctx), records)

	elapsed := s.now().Sub(start)
	s.observe(source, report, elapsed)

	s.log.WithFields(logrus.Fields{
		"source":      source,
		"actor":       actor,
		"request_id":  requestID,
		"total":       len(records),
		"inserted":    report.Inserted,
		"updated":     report.Updated,
		"failed":      len(report.Errors),
		"duration_ms": elapsed.Milliseconds(),
	}).Info("upload reconciled")

	if s.runWorker != nil {
		s.runWorker.Enqueue(&models.IngestRun{
			Source:     source,
			Total:      len(records),
			Inserted:   report.Inserted,
			Updated:    report.Updated,
			Failed:     len(report.Errors),
			Actor:      actor,
			RequestID:  requestID,
			DurationMS: elapsed.Milliseconds(),
			CreatedAt:  start,
		})
	}

	if s.notifier != nil && report.Inserted+report.Updated > 0 {
		s.notifier.Notify(ctx, map[string]any{
			"type":     EventIngestCompleted,
			"source":   source,
			"inserted": report.Inserted,
			"updated":  report.Updated,
			"failed":   len(report.Errors),
		})
	}

	return report, nil
}

func decode(source models.IngestSource, data []byte) ([]ingest.RawRecord, error) {
	switch source {
	case models.SourceCSV:
		return ingest.DecodeCSV(data)
	case models.SourceJSON:
		return ingest.DecodeJSON(data)
	default:
		return nil, fmt.Errorf("unsupported upload source %q", source)
	}
}

func (s *IngestService) observe(source models.IngestSource, report *models.IngestReport, elapsed time.Duration) {
	metrics.IngestRecords.WithLabelValues("inserted").Add(float64(report.Inserted))
	metrics.IngestRecords.WithLabelValues("updated").Add(float64(report.Updated))
	metrics.IngestRecords.WithLabelValues("failed").Add(float64(len(report.Errors)))
	metrics.IngestDuration.WithLabelValues(string(source)).Observe(elapsed.Seconds())

	status := "ok"
	if len(report.Errors) > 0 {
		status = "partial"
	}

	metrics.IngestRuns.WithLabelValues(string(source), status).Inc()
}

// ListRuns returns recorded ingestion runs, newest first (pass-through).
func (s *IngestService) ListRuns(ctx context.Context, limit, offset int) ([]models.IngestRun, bool, error) {
	return s.runs.ListIngestRuns(ctx, limit, offset)
}

// Template returns the CSV upload template.
func (s *IngestService) Template() ([]byte, error) {
	return ingest.Template()
}
