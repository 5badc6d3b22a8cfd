package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(t *testing.T, rate float64, burst int) (*gin.Engine, *time.Time) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, rate, burst)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r, &now
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)

	return w
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	r, _ := newLimitedRouter(t, 1, 2)

	for i := range 2 {
		if w := hit(r, "1.2.3.4"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	w := hit(r, "1.2.3.4")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
}

func TestRateLimiter_IndependentBuckets(t *testing.T) {
	r, _ := newLimitedRouter(t, 1, 1)

	hit(r, "1.1.1.1")

	if w := hit(r, "2.2.2.2"); w.Code != http.StatusOK {
		t.Fatalf("different IP should not be rate limited, got %d", w.Code)
	}
}

func TestRateLimiter_Refills(t *testing.T) {
	r, now := newLimitedRouter(t, 2, 1)

	hit(r, "5.5.5.5")

	if w := hit(r, "5.5.5.5"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before refill, got %d", w.Code)
	}

	*now = now.Add(500 * time.Millisecond)

	if w := hit(r, "5.5.5.5"); w.Code != http.StatusOK {
		t.Fatalf("expected refill after half a second at 2/s, got %d", w.Code)
	}
}
