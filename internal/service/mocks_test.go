package service

import (
	"context"
	"sync"

	"github.com/collegedir/collegedir/internal/models"
)

// mockCollegeStore records calls and returns configured responses.
type mockCollegeStore struct {
	mu    sync.Mutex
	calls []string

	listColleges    func(ctx context.Context, f models.CollegeFilter) ([]models.College, int64, error)
	getCollege      func(ctx context.Context, id int64) (*models.CollegeDetail, error)
	listFacetValues func(ctx context.Context, facet models.Facet) ([]string, error)
}

func (m *mockCollegeStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockCollegeStore) ListColleges(ctx context.Context, f models.CollegeFilter) ([]models.College, int64, error) {
	m.record("ListColleges")
	return m.listColleges(ctx, f)
}

func (m *mockCollegeStore) GetCollege(ctx context.Context, id int64) (*models.CollegeDetail, error) {
	m.record("GetCollege")
	return m.getCollege(ctx, id)
}

func (m *mockCollegeStore) ListFacetValues(ctx context.Context, facet models.Facet) ([]string, error) {
	m.record("ListFacetValues")
	return m.listFacetValues(ctx, facet)
}

// mockReferenceStore returns configured reference data.
type mockReferenceStore struct {
	listCutoffs  func(ctx context.Context, collegeID int64) ([]models.Cutoff, error)
	getAdmission func(ctx context.Context, category string) (*models.AdmissionRequirement, error)
}

func (m *mockReferenceStore) ListCutoffs(ctx context.Context, collegeID int64) ([]models.Cutoff, error) {
	return m.listCutoffs(ctx, collegeID)
}

func (m *mockReferenceStore) GetAdmissionRequirement(ctx context.Context, category string) (*models.AdmissionRequirement, error) {
	return m.getAdmission(ctx, category)
}

// mockStatsStore counts calls; block, when set, holds each call until closed.
type mockStatsStore struct {
	mu    sync.Mutex
	calls int
	block chan struct{}
	stats models.Stats
	err   error
}

func (m *mockStatsStore) Stats(ctx context.Context, _ int) (models.Stats, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.block != nil {
		<-m.block
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return m.stats, m.err
}

func (m *mockStatsStore) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockRunRecorder records persisted runs.
type mockRunRecorder struct {
	mu   sync.Mutex
	runs []*models.IngestRun
	err  error
}

func (m *mockRunRecorder) RecordIngestRun(_ context.Context, run *models.IngestRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return m.err
}

func (m *mockRunRecorder) getRuns() []*models.IngestRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.IngestRun(nil), m.runs...)
}

// mockRunQueue captures enqueued runs synchronously.
type mockRunQueue struct {
	runs []*models.IngestRun
}

func (m *mockRunQueue) Enqueue(run *models.IngestRun) {
	m.runs = append(m.runs, run)
}

// mockRunLister returns configured runs.
type mockRunLister struct {
	listRuns func(ctx context.Context, limit, offset int) ([]models.IngestRun, bool, error)
}

func (m *mockRunLister) ListIngestRuns(ctx context.Context, limit, offset int) ([]models.IngestRun, bool, error) {
	return m.listRuns(ctx, limit, offset)
}

// mockNotifier captures published payloads.
type mockNotifier struct {
	payloads []any
}

func (m *mockNotifier) Notify(_ context.Context, payload any) {
	m.payloads = append(m.payloads, payload)
}

// mockWriter is an ingest.Store that inserts names it has not seen and
// updates names it has.
type mockWriter struct {
	seen map[string]bool
	err  error
}

func (m *mockWriter) UpsertCollege(_ context.Context, rec *models.CollegeRecord) (bool, error) {
	if m.err != nil {
		return false, m.err
	}

	if m.seen == nil {
		m.seen = map[string]bool{}
	}

	key := rec.NaturalKey()
	inserted := !m.seen[key]
	m.seen[key] = true

	return inserted, nil
}
