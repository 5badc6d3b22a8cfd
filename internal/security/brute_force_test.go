package security

import (
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGuard(opts Options) (*BruteForceGuard, *fakeClock) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

	return newGuard(log, opts, clock.now), clock
}

func TestBruteForce_SuccessfulAuthResetsCount(t *testing.T) {
	guard, _ := newTestGuard(Options{})

	guard.RecordFailure("key1")
	guard.RecordFailure("key1")
	guard.ResetKey("key1")

	for range 4 {
		guard.RecordFailure("key1")
	}

	if guard.IsBlocked("key1") {
		t.Fatal("count should restart after reset")
	}
}

func TestBruteForce_BlocksAtMax(t *testing.T) {
	guard, _ := newTestGuard(Options{})

	for range 4 {
		guard.RecordFailure("badkey")
	}

	if guard.IsBlocked("badkey") {
		t.Fatal("key should not be blocked before max failures")
	}

	guard.RecordFailure("badkey")

	if !guard.IsBlocked("badkey") {
		t.Fatal("key should be blocked after max failures")
	}
	if guard.IsBlocked("otherkey") {
		t.Fatal("lockout must be per key")
	}
}

func TestBruteForce_LockoutExpires(t *testing.T) {
	guard, clock := newTestGuard(Options{MaxAttempts: 2, Lockout: time.Minute})

	guard.RecordFailure("k")
	guard.RecordFailure("k")

	clock.advance(20 * time.Second)

	if got := guard.RetryAfter("k"); got != 40*time.Second {
		t.Errorf("RetryAfter = %v, want 40s", got)
	}

	clock.advance(time.Minute)

	if guard.IsBlocked("k") {
		t.Fatal("lockout should have expired")
	}
}

func TestBruteForce_WindowResets(t *testing.T) {
	guard, clock := newTestGuard(Options{MaxAttempts: 3, Window: time.Minute})

	guard.RecordFailure("k")
	guard.RecordFailure("k")
	clock.advance(2 * time.Minute)
	guard.RecordFailure("k")

	if guard.IsBlocked("k") {
		t.Fatal("failures outside the window should not count")
	}
}

func TestBruteForce_SweepBoundsRecords(t *testing.T) {
	guard, clock := newTestGuard(Options{MaxRecords: 3})

	for i := range 5 {
		guard.RecordFailure(fmt.Sprintf("key-%d", i))
		clock.advance(time.Second)
	}

	guard.sweep()

	if len(guard.records) != 3 {
		t.Fatalf("records = %d, want 3", len(guard.records))
	}

	if _, ok := guard.records[hashCredential("key-0")]; ok {
		t.Error("oldest record should have been evicted")
	}
	if _, ok := guard.records[hashCredential("key-4")]; !ok {
		t.Error("newest record should be kept")
	}
}
