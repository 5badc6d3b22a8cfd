// Package security tracks failed admin authentication attempts.
package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Options tunes when a credential is locked out and for how long.
type Options struct {
	// MaxAttempts is the number of failures within Window that triggers a lockout.
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
	// MaxRecords bounds memory; the oldest records are evicted beyond it.
	MaxRecords int
}

// DefaultOptions returns five attempts per 15 minutes with a 5 minute lockout.
func DefaultOptions() Options {
	return Options{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		Lockout:     5 * time.Minute,
		MaxRecords:  10000,
	}
}

const cleanupInterval = 60 * time.Second

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// BruteForceGuard counts authentication failures per credential and locks a
// credential out once it exceeds Options.MaxAttempts. Credentials are held
// only as SHA-256 hashes.
type BruteForceGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	opts    Options
	log     *logrus.Logger
	now     func() time.Time
}

// NewBruteForceGuard creates a guard and starts a cleanup goroutine that
// stops when ctx is cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger, opts Options) *BruteForceGuard {
	g := newGuard(log, opts, time.Now)
	go g.cleanupLoop(ctx)

	return g
}

func newGuard(log *logrus.Logger, opts Options, now func() time.Time) *BruteForceGuard {
	def := DefaultOptions()
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.Window <= 0 {
		opts.Window = def.Window
	}
	if opts.Lockout <= 0 {
		opts.Lockout = def.Lockout
	}
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = def.MaxRecords
	}

	return &BruteForceGuard{
		records: make(map[string]*failureRecord),
		opts:    opts,
		log:     log,
		now:     now,
	}
}

func hashCredential(credential string) string {
	h := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(h[:])
}

// RetryAfter returns how long credential stays locked out, or zero when it
// may be tried.
func (g *BruteForceGuard) RetryAfter(credential string) time.Duration {
	kh := hashCredential(credential)

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[kh]
	if !ok || rec.lockedAt.IsZero() {
		return 0
	}

	if left := g.opts.Lockout - g.now().Sub(rec.lockedAt); left > 0 {
		return left
	}

	return 0
}

// IsBlocked reports whether credential is currently locked out.
func (g *BruteForceGuard) IsBlocked(credential string) bool {
	return g.RetryAfter(credential) > 0
}

// RecordFailure counts one failed attempt for credential.
func (g *BruteForceGuard) RecordFailure(credential string) {
	kh := hashCredential(credential)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[kh]
	if !ok || now.Sub(rec.firstFail) > g.opts.Window {
		g.records[kh] = &failureRecord{attempts: 1, firstFail: now}
		rec = g.records[kh]
	} else {
		rec.attempts++
	}

	if rec.attempts >= g.opts.MaxAttempts && rec.lockedAt.IsZero() {
		rec.lockedAt = now
		g.log.WithField("key_hash", kh[:16]+"...").Warn("admin key locked out after repeated auth failures")
	}
}

// ResetKey clears failure tracking for credential after a successful login.
func (g *BruteForceGuard) ResetKey(credential string) {
	kh := hashCredential(credential)

	g.mu.Lock()
	delete(g.records, kh)
	g.mu.Unlock()
}

func (g *BruteForceGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

// sweep drops expired records, then the oldest ones beyond MaxRecords.
func (g *BruteForceGuard) sweep() {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, rec := range g.records {
		lockExpired := !rec.lockedAt.IsZero() && now.Sub(rec.lockedAt) >= g.opts.Lockout
		windowExpired := rec.lockedAt.IsZero() && now.Sub(rec.firstFail) >= g.opts.Window

		if lockExpired || windowExpired {
			delete(g.records, k)
		}
	}

	excess := len(g.records) - g.opts.MaxRecords
	if excess <= 0 {
		return
	}

	keys := make([]string, 0, len(g.records))
	for k := range g.records {
		keys = append(keys, k)
	}

	slices.SortFunc(keys, func(a, b string) int {
		return g.records[a].firstFail.Compare(g.records[b].firstFail)
	})

	for _, k := range keys[:excess] {
		delete(g.records, k)
	}
}
