package api_test

import (
	"context"
	"errors"
	"sync"

	"github.com/collegedir/collegedir/internal/models"
)

var errMockNotImplemented = errors.New("mock: not implemented")

// --- CollegeService mock ---

type mockCollegeService struct {
	listFn      func(ctx context.Context, f models.CollegeFilter) (*models.CollegePage, error)
	getFn       func(ctx context.Context, id int64) (*models.CollegeDetail, error)
	facetFn     func(ctx context.Context, facet models.Facet) ([]string, error)
	cutoffsFn   func(ctx context.Context, collegeID int64) ([]models.Cutoff, error)
	admissionFn func(ctx context.Context, category string) (*models.AdmissionRequirement, error)

	mu      sync.Mutex
	filters []models.CollegeFilter
}

func (m *mockCollegeService) ListColleges(ctx context.Context, f models.CollegeFilter) (*models.CollegePage, error) {
	m.mu.Lock()
	m.filters = append(m.filters, f)
	m.mu.Unlock()

	if m.listFn != nil {
		return m.listFn(ctx, f)
	}

	return models.NewCollegePage(nil, 0, f.Page, 20), nil
}

func (m *mockCollegeService) lastFilter() models.CollegeFilter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.filters) == 0 {
		return models.CollegeFilter{}
	}

	return m.filters[len(m.filters)-1]
}

func (m *mockCollegeService) GetCollege(ctx context.Context, id int64) (*models.CollegeDetail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}

	return nil, models.ErrCollegeNotFound
}

func (m *mockCollegeService) ListFacetValues(ctx context.Context, facet models.Facet) ([]string, error) {
	if m.facetFn != nil {
		return m.facetFn(ctx, facet)
	}

	return nil, nil
}

func (m *mockCollegeService) ListCutoffs(ctx context.Context, collegeID int64) ([]models.Cutoff, error) {
	if m.cutoffsFn != nil {
		return m.cutoffsFn(ctx, collegeID)
	}

	return []models.Cutoff{}, nil
}

func (m *mockCollegeService) GetAdmissionRequirement(ctx context.Context, category string) (*models.AdmissionRequirement, error) {
	if m.admissionFn != nil {
		return m.admissionFn(ctx, category)
	}

	return nil, models.ErrAdmissionNotFound
}

// --- IngestService mock ---

type uploadCall struct {
	source    models.IngestSource
	data      string
	actor     string
	requestID string
}

type mockIngestService struct {
	uploadFn   func(ctx context.Context, source models.IngestSource, data []byte) (*models.IngestReport, error)
	listRunsFn func(ctx context.Context, limit, offset int) ([]models.IngestRun, bool, error)
	templateFn func() ([]byte, error)

	mu    sync.Mutex
	calls []uploadCall
}

func (m *mockIngestService) Upload(ctx context.Context, source models.IngestSource, data []byte, actor, requestID string) (*models.IngestReport, error) {
	m.mu.Lock()
	m.calls = append(m.calls, uploadCall{source: source, data: string(data), actor: actor, requestID: requestID})
	m.mu.Unlock()

	if m.uploadFn != nil {
		return m.uploadFn(ctx, source, data)
	}

	return &models.IngestReport{Message: "ok", Errors: []string{}}, nil
}

func (m *mockIngestService) uploads() []uploadCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]uploadCall(nil), m.calls...)
}

func (m *mockIngestService) ListRuns(ctx context.Context, limit, offset int) ([]models.IngestRun, bool, error) {
	if m.listRunsFn != nil {
		return m.listRunsFn(ctx, limit, offset)
	}

	return nil, false, nil
}

func (m *mockIngestService) Template() ([]byte, error) {
	if m.templateFn != nil {
		return m.templateFn()
	}

	return nil, errMockNotImplemented
}

// --- StatsService mock ---

type mockStatsService struct {
	statsFn func(ctx context.Context) (models.Stats, error)
}

func (m *mockStatsService) Stats(ctx context.Context) (models.Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}

	return models.Stats{"total_colleges": 0}, nil
}

// --- AdminLookup mock ---

type mockAdminLookup struct {
	keys map[string]string
}

func (m *mockAdminLookup) GetAdminByAPIKey(_ context.Context, apiKey string) (string, error) {
	if name, ok := m.keys[apiKey]; ok {
		return name, nil
	}

	return "", errors.New("admin key not found")
}
