package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAdminLookup struct {
	validKeys map[string]string
	calls     atomic.Int32
}

func (m *mockAdminLookup) GetAdminByAPIKey(_ context.Context, apiKey string) (string, error) {
	m.calls.Add(1)

	if name, ok := m.validKeys[apiKey]; ok {
		return name, nil
	}

	return "", errors.New("invalid key")
}

// mockGuard locks a key out after its first failure.
type mockGuard struct {
	mu     sync.Mutex
	failed map[string]bool
	resets int
}

func (g *mockGuard) RetryAfter(apiKey string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failed[apiKey] {
		return 90 * time.Second
	}

	return 0
}

func (g *mockGuard) RecordFailure(apiKey string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failed == nil {
		g.failed = map[string]bool{}
	}
	g.failed[apiKey] = true
}

func (g *mockGuard) ResetKey(string) {
	g.mu.Lock()
	g.resets++
	g.mu.Unlock()
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return log
}

func serveWithAuth(h gin.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(h)
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middleware.AdminKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)

	return w
}

func TestAdminAuth(t *testing.T) {
	lookup := &mockAdminLookup{validKeys: map[string]string{"good-key": "ops"}}

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{"valid token", "Bearer good-key", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"invalid token", "Bearer bad-key", http.StatusUnauthorized},
		{"no bearer prefix", "good-key", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithAuth(middleware.AdminAuth(lookup, quietLogger(), nil), tt.authHeader)
			if w.Code != tt.wantCode {
				t.Errorf("got %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestAdminAuth_SetsAdminName(t *testing.T) {
	lookup := &mockAdminLookup{validKeys: map[string]string{"k1": "ops"}}

	w := serveWithAuth(middleware.AdminAuth(lookup, quietLogger(), nil), "Bearer k1")

	if w.Body.String() != "ops" {
		t.Fatalf("expected admin=ops, got %q", w.Body.String())
	}
}

func TestAdminAuth_GuardLocksOut(t *testing.T) {
	lookup := &mockAdminLookup{validKeys: map[string]string{"good": "ops"}}
	guard := &mockGuard{}
	h := middleware.AdminAuth(lookup, quietLogger(), guard)

	if w := serveWithAuth(h, "Bearer bad"); w.Code != http.StatusUnauthorized {
		t.Fatalf("first attempt: got %d, want 401", w.Code)
	}

	w := serveWithAuth(h, "Bearer bad")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("locked key: got %d, want 429", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "90" {
		t.Errorf("Retry-After = %q, want 90", got)
	}
	if lookup.calls.Load() != 1 {
		t.Errorf("locked key must not reach the lookup, calls = %d", lookup.calls.Load())
	}

	serveWithAuth(h, "Bearer good")
	if guard.resets != 1 {
		t.Errorf("successful auth should reset the guard, resets = %d", guard.resets)
	}
}

func TestAdminAuth_TimingFloor(t *testing.T) {
	lookup := &mockAdminLookup{}

	start := time.Now()
	serveWithAuth(middleware.AdminAuth(lookup, quietLogger(), nil), "Bearer nope")

	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("rejection took %v, want at least 50ms", elapsed)
	}
}

func TestCachedAdminLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inner := &mockAdminLookup{validKeys: map[string]string{"k": "ops"}}
	cached := middleware.NewCachedAdminLookup(ctx, inner)

	for range 3 {
		name, err := cached.GetAdminByAPIKey(ctx, "k")
		if err != nil || name != "ops" {
			t.Fatalf("got %q, %v", name, err)
		}
	}

	for range 3 {
		if _, err := cached.GetAdminByAPIKey(ctx, "bad"); err == nil {
			t.Fatal("expected error for bad key")
		}
	}

	if got := inner.calls.Load(); got != 2 {
		t.Errorf("inner lookups = %d, want 2 (one hit, one negative)", got)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"Bearer  abc123 ", "abc123"},
		{"abc123", ""},
		{"", ""},
		{"Bearer ", ""},
		{"bearer abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}

			if got := middleware.ExtractBearerToken(c); got != tt.want {
				t.Errorf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
