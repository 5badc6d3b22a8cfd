package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/collegedir/collegedir/internal/api"
)

type fakeDB struct {
	pingErr error
	applied int64
}

func (f *fakeDB) HealthCheck(context.Context) error { return f.pingErr }

func (f *fakeDB) AppliedSchemaVersion(context.Context) (int64, error) { return f.applied, nil }

func TestLiveness_ReturnsOK(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(nil, nil, testLogger(), "test-v1", 3)

	r := gin.New()
	r.GET("/health", h.Liveness)

	w := doRequest(r, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}

	if body["version"] != "test-v1" {
		t.Errorf("expected version 'test-v1', got %v", body["version"])
	}

	if body["database"] != "not_configured" {
		t.Errorf("expected database 'not_configured', got %v", body["database"])
	}
}

func TestLiveness_DatabaseDown(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(&fakeDB{pingErr: errors.New("refused")}, nil, testLogger(), "v", 3)

	r := gin.New()
	r.GET("/health", h.Liveness)

	w := doRequest(r, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("liveness must stay 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["database"] != "disconnected" {
		t.Errorf("expected database 'disconnected', got %v", body["database"])
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		db         *fakeDB
		wantStatus int
		wantSchema string
	}{
		{name: "ready", db: &fakeDB{applied: 3}, wantStatus: http.StatusOK, wantSchema: "ok"},
		{name: "ahead is fine", db: &fakeDB{applied: 4}, wantStatus: http.StatusOK, wantSchema: "ok"},
		{name: "pending migrations", db: &fakeDB{applied: 2}, wantStatus: http.StatusServiceUnavailable, wantSchema: "error"},
		{name: "database down", db: &fakeDB{pingErr: errors.New("refused")}, wantStatus: http.StatusServiceUnavailable, wantSchema: "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := api.NewHealthHandler(tc.db, nil, testLogger(), "v", 3)

			r := gin.New()
			r.GET("/ready", h.Readiness)

			w := doRequest(r, http.MethodGet, "/ready", "")

			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, w.Code, w.Body.String())
			}

			var body struct {
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if body.Checks["schema"] != tc.wantSchema {
				t.Errorf("schema check = %q, want %q", body.Checks["schema"], tc.wantSchema)
			}
		})
	}
}
