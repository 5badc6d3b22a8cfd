package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/collegedir/collegedir/internal/domain"
	"github.com/collegedir/collegedir/internal/metrics"
	"github.com/collegedir/collegedir/internal/models"
)

// StatsStore is the data-access interface StatsService depends on.
type StatsStore = domain.StatsReader

// DefaultStatsTopN is how many districts and categories the stats include.
const DefaultStatsTopN = 5

// StatsService computes directory statistics. Concurrent requests share one
// database round trip.
type StatsService struct {
	store StatsStore
	log   *logrus.Logger
	topN  int
	group singleflight.Group
}

// NewStatsService creates a StatsService.
func NewStatsService(store StatsStore, log *logrus.Logger) *StatsService {
	return &StatsService{store: store, log: log, topN: DefaultStatsTopN}
}

// Stats returns total_colleges plus per-district and per-category counts.
func (s *StatsService) Stats(ctx context.Context) (models.Stats, error) {
	v, err, shared := s.group.Do("stats", func() (any, error) {
		// The flight outlives any single caller's request.
		return s.store.Stats(context.WithoutCancel(ctx), s.topN)
	})
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}

	stats, _ := v.(models.Stats)

	metrics.CollegeCount.Set(float64(stats["total_colleges"]))

	s.log.WithField("shared", shared).Debug("stats.computed")

	// Shared results are handed to several callers; give each its own map.
	out := make(models.Stats, len(stats))
	for k, n := range stats {
		out[k] = n
	}

	return out, nil
}
