package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/collegedir/collegedir/internal/metrics"
	"github.com/collegedir/collegedir/internal/models"
)

func TestStats_SetsGauge(t *testing.T) {
	store := &mockStatsStore{stats: models.Stats{"total_colleges": 42, "district_Pune": 40}}
	svc := NewStatsService(store, quietLogger())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats["district_Pune"] != 40 {
		t.Errorf("district_Pune = %d, want 40", stats["district_Pune"])
	}
	var m dto.Metric
	if err := metrics.CollegeCount.Write(&m); err != nil {
		t.Fatalf("reading gauge: %v", err)
	}
	if got := m.GetGauge().GetValue(); got != 42 {
		t.Errorf("gauge = %v, want 42", got)
	}
}

func TestStats_ConcurrentCallsShareQuery(t *testing.T) {
	store := &mockStatsStore{stats: models.Stats{"total_colleges": 1}, block: make(chan struct{})}
	svc := NewStatsService(store, quietLogger())

	var wg sync.WaitGroup
	results := make([]models.Stats, 5)

	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = svc.Stats(context.Background())
		}()
	}

	// Give every caller time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(store.block)
	wg.Wait()

	if calls := store.getCalls(); calls != 1 {
		t.Errorf("store called %d times, want 1", calls)
	}

	results[0]["total_colleges"] = 99
	if results[1]["total_colleges"] != 1 {
		t.Error("callers must not share one map")
	}
}

func TestStats_Error(t *testing.T) {
	svc := NewStatsService(&mockStatsStore{err: errors.New("boom")}, quietLogger())

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestStats_CancelledCallerDoesNotFailSharedFlight(t *testing.T) {
	store := &mockStatsStore{stats: models.Stats{"total_colleges": 7}, block: make(chan struct{})}
	svc := NewStatsService(store, quietLogger())

	firstCtx, cancel := context.WithCancel(context.Background())

	var (
		wg       sync.WaitGroup
		firstErr error
		second   models.Stats
		err      error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.Stats(firstCtx)
	}()

	time.Sleep(20 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		second, err = svc.Stats(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	close(store.block)
	wg.Wait()

	if err != nil {
		t.Fatalf("second caller failed: %v", err)
	}
	if firstErr != nil {
		t.Errorf("first caller failed: %v", firstErr)
	}
	if second["total_colleges"] != 7 {
		t.Errorf("total_colleges = %d, want 7", second["total_colleges"])
	}
	if calls := store.getCalls(); calls != 1 {
		t.Errorf("store called %d times, want 1", calls)
	}
}
