package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL+"/", WithAPIKey("test-key"))
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func ptr[T any](v T) *T { return &v }

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "1.2.0", Database: "connected"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.0" {
		t.Errorf("unexpected health: %+v", resp)
	}
}

func TestCollegesList(t *testing.T) {
	var gotQuery string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/colleges": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			jsonResponse(w, 200, CollegePage{
				Colleges: []College{{ID: 1, Name: "Example College"}},
				Total:    1, Page: 2, Limit: 10, TotalPages: 1, HasPrev: true,
			})
		},
	})

	page, err := c.Colleges.List(context.Background(), &ListOptions{
		District: "Pune", Autonomous: ptr(false), Search: "tech", Page: 2, Limit: 10,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Colleges) != 1 || page.Colleges[0].Name != "Example College" {
		t.Errorf("unexpected page: %+v", page)
	}

	want := "autonomous=false&district=Pune&limit=10&page=2&search=tech"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestCollegesListNilOptions(t *testing.T) {
	var gotQuery string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/colleges": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			jsonResponse(w, 200, CollegePage{})
		},
	})

	if _, err := c.Colleges.List(context.Background(), nil); err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotQuery != "" {
		t.Errorf("expected no query, got %q", gotQuery)
	}
}

func TestCollegesShortcutsAndDetail(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/colleges/district/Pune": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, CollegePage{Total: 4})
		},
		"GET /api/colleges/category/Arts": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, CollegePage{Total: 2})
		},
		"GET /api/colleges/7": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{"id": 7, "name": "Seven", "phone": "123", "email": nil})
		},
		"GET /api/cutoffs/7": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, []Cutoff{{ID: 1, CollegeID: 7, Year: 2024}})
		},
		"GET /api/admission-requirements/Arts": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, AdmissionRequirement{ID: 3, Category: "Arts"})
		},
	})
	ctx := context.Background()

	if p, err := c.Colleges.ByDistrict(ctx, "Pune", nil); err != nil || p.Total != 4 {
		t.Errorf("ByDistrict: %v %+v", err, p)
	}
	if p, err := c.Colleges.ByCategory(ctx, "Arts", nil); err != nil || p.Total != 2 {
		t.Errorf("ByCategory: %v %+v", err, p)
	}

	d, err := c.Colleges.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Name != "Seven" || d.Phone == nil || *d.Phone != "123" || d.Email != nil {
		t.Errorf("unexpected detail: %+v", d)
	}

	cutoffs, err := c.Colleges.Cutoffs(ctx, 7)
	if err != nil || len(cutoffs) != 1 || cutoffs[0].Year != 2024 {
		t.Errorf("Cutoffs: %v %+v", err, cutoffs)
	}

	req, err := c.Colleges.Admission(ctx, "Arts")
	if err != nil || req.ID != 3 {
		t.Errorf("Admission: %v %+v", err, req)
	}
}

func TestFacets(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/districts": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, []string{"Mumbai", "Pune"})
		},
		"GET /api/categories": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, []string{"Arts"})
		},
		"GET /api/college-types": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, []string{})
		},
	})
	ctx := context.Background()

	if d, err := c.Facets.Districts(ctx); err != nil || len(d) != 2 {
		t.Errorf("Districts: %v %v", err, d)
	}
	if cat, err := c.Facets.Categories(ctx); err != nil || len(cat) != 1 {
		t.Errorf("Categories: %v %v", err, cat)
	}
	if ty, err := c.Facets.CollegeTypes(ctx); err != nil || len(ty) != 0 {
		t.Errorf("CollegeTypes: %v %v", err, ty)
	}
}

func TestAdminUploads(t *testing.T) {
	var gotCSV, gotCSVType, gotJSONType string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/admin/upload/csv": func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			gotCSV, gotCSVType = string(b), r.Header.Get("Content-Type")
			jsonResponse(w, 200, UploadReport{Message: "done", Inserted: 1, Errors: []string{}})
		},
		"POST /api/admin/upload/json": func(w http.ResponseWriter, r *http.Request) {
			gotJSONType = r.Header.Get("Content-Type")
			jsonResponse(w, 200, UploadReport{Updated: 1, Errors: []string{"College #2: name is required"}})
		},
	})
	ctx := context.Background()

	csv := "name,category,district,city,type\nA,B,C,D,E\n"
	report, err := c.Admin.UploadCSV(ctx, strings.NewReader(csv))
	if err != nil || report.Inserted != 1 {
		t.Fatalf("UploadCSV: %v %+v", err, report)
	}
	if gotCSV != csv || gotCSVType != "text/csv" {
		t.Errorf("csv body/type = %q/%q", gotCSV, gotCSVType)
	}

	report, err = c.Admin.UploadJSON(ctx, strings.NewReader(`[{"name":"A"},{}]`))
	if err != nil || report.Updated != 1 || len(report.Errors) != 1 {
		t.Fatalf("UploadJSON: %v %+v", err, report)
	}
	if gotJSONType != "application/json" {
		t.Errorf("json content type = %q", gotJSONType)
	}
}

func TestAdminStatsTemplateRuns(t *testing.T) {
	var gotRunsQuery string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/admin/stats": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Stats{"total_colleges": 9})
		},
		"GET /api/admin/template": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			io.WriteString(w, "name,category\n") //nolint:errcheck
		},
		"GET /api/admin/runs": func(w http.ResponseWriter, r *http.Request) {
			gotRunsQuery = r.URL.RawQuery
			jsonResponse(w, 200, RunsPage{Runs: []IngestRun{{ID: 1, Source: "csv"}}, HasMore: true})
		},
		"GET /api/admin/test": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]string{"message": "ok", "admin": "ops"})
		},
	})
	ctx := context.Background()

	stats, err := c.Admin.Stats(ctx)
	if err != nil || stats["total_colleges"] != 9 {
		t.Errorf("Stats: %v %v", err, stats)
	}

	tmpl, err := c.Admin.Template(ctx)
	if err != nil || string(tmpl) != "name,category\n" {
		t.Errorf("Template: %v %q", err, tmpl)
	}

	runs, err := c.Admin.Runs(ctx, 10, 0)
	if err != nil || len(runs.Runs) != 1 || !runs.HasMore {
		t.Errorf("Runs: %v %+v", err, runs)
	}
	if gotRunsQuery != "limit=10" {
		t.Errorf("runs query = %q", gotRunsQuery)
	}

	name, err := c.Admin.Test(ctx)
	if err != nil || name != "ops" {
		t.Errorf("Test: %v %q", err, name)
	}
}

func TestAPIError(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/colleges/404": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "college not found"})
		},
		"POST /api/admin/upload/json": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 400, map[string]string{"code": "invalid_upload", "message": "invalid json upload", "request_id": "r1"})
		},
		"GET /api/admin/stats": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(401)
			io.WriteString(w, "nope") //nolint:errcheck
		},
	})
	ctx := context.Background()

	_, err := c.Colleges.Get(ctx, 404)
	if !IsNotFound(err) {
		t.Errorf("expected not found, got: %v", err)
	}

	_, err = c.Admin.UploadJSON(ctx, strings.NewReader("{"))
	if !IsInvalidUpload(err) {
		t.Errorf("expected invalid upload, got: %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "request_id=r1") {
		t.Errorf("error should carry request id: %v", err)
	}

	_, err = c.Admin.Stats(ctx)
	if !IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got: %v", err)
	}
	if apiErr, ok := err.(*APIError); !ok || apiErr.Code != "unknown" || apiErr.Message != "nope" {
		t.Errorf("expected raw-text fallback, got: %#v", err)
	}
}

func TestAuthHeader(t *testing.T) {
	var gotAuth string
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /health": func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			jsonResponse(w, 200, HealthResponse{Status: "ok"})
		},
	})

	c.Health(context.Background()) //nolint:errcheck
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header: got %q, want %q", gotAuth, "Bearer test-key")
	}
}
