package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/collegedir/collegedir/internal/models"
)

// StatsStore computes aggregate directory statistics.
type StatsStore struct {
	Base
}

// NewStatsStore creates a StatsStore.
func NewStatsStore(base Base) *StatsStore {
	return &StatsStore{Base: base}
}

// statKeyReplacer turns group values into stat-name suffixes.
var statKeyReplacer = strings.NewReplacer(" ", "_", "-", "_")

// StatKey returns the stat name for one group value, e.g. district_Navi_Mumbai.
func StatKey(prefix, value string) string {
	return prefix + "_" + statKeyReplacer.Replace(value)
}

// Stats returns total_colleges plus the topN largest districts and categories.
// All counts come from one snapshot.
func (s *StatsStore) Stats(ctx context.Context, topN int) (models.Stats, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // read-only tx, rollback is cleanup.

	stats := models.Stats{}

	var total int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM colleges").Scan(&total); err != nil {
		return nil, fmt.Errorf("counting colleges: %w", err)
	}

	stats["total_colleges"] = total

	for _, group := range []string{"district", "category"} {
		rows, err := tx.Query(ctx,
			"SELECT "+group+", COUNT(*) FROM colleges GROUP BY "+group+
				" ORDER BY COUNT(*) DESC, "+group+" LIMIT $1", topN)
		if err != nil {
			return nil, fmt.Errorf("grouping by %s: %w", group, err)
		}

		for rows.Next() {
			var (
				value string
				count int64
			)

			if err := rows.Scan(&value, &count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning %s count: %w", group, err)
			}

			stats[StatKey(group, value)] += count
		}

		rows.Close()

		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterating %s counts: %w", group, err)
		}
	}

	return stats, nil
}
