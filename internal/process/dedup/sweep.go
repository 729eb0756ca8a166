package dedup

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	"github.com/lueurxax/event-dedup/internal/platform/observability"
)

// Log key constants for deduplication.
const (
	logKeyDay        = "day"
	logKeyKeepID     = "keep_id"
	logKeyRemoveID   = "remove_id"
	logKeyConfidence = "confidence"
	logKeyStrategy   = "strategy"
)

// Sweeper runs a strategy over day buckets.
type Sweeper struct {
	strategy Strategy
	workers  int
	logger   *zerolog.Logger
}

// NewSweeper creates a sweeper. Workers below one run buckets sequentially.
func NewSweeper(strategy Strategy, workers int, logger *zerolog.Logger) *Sweeper {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if workers < 1 {
		workers = 1
	}

	return &Sweeper{strategy: strategy, workers: workers, logger: logger}
}

// Strategy returns the matching strategy in use.
func (s *Sweeper) Strategy() Strategy {
	return s.strategy
}

// Sweep finds duplicate groups in every bucket holding two or more records.
// Buckets are independent, so they fan out across workers; groups come back in
// ascending day order regardless of scheduling.
func (s *Sweeper) Sweep(ctx context.Context, buckets Buckets) ([]domain.DuplicateGroup, error) {
	days := buckets.Comparable()
	perDay := make([][]domain.DuplicateGroup, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, day := range days {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("sweep day %s: %w", day, err)
			}

			perDay[i] = s.SweepDay(day, buckets[day])

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped per day
	}

	var groups []domain.DuplicateGroup
	for _, dayGroups := range perDay {
		groups = append(groups, dayGroups...)
	}

	return groups, nil
}

// SweepDay pairs records greedily: the first partner found for an unprocessed record
// wins, both leave the pool, and the outer record is not compared any further.
// This is not a transitive closure; a 3-way cluster needs repeated passes to collapse.
func (s *Sweeper) SweepDay(day string, records []domain.EventRecord) []domain.DuplicateGroup {
	if len(records) < 2 {
		return nil
	}

	processed := make([]bool, len(records))

	var groups []domain.DuplicateGroup

	for i := range records {
		if processed[i] {
			continue
		}

		for j := i + 1; j < len(records); j++ {
			if processed[j] {
				continue
			}

			match, ok := s.strategy.Match(records[i], records[j])
			if !ok {
				continue
			}

			processed[i] = true
			processed[j] = true

			keep, remove := Fold([]domain.EventRecord{records[i], records[j]})
			groups = append(groups, domain.DuplicateGroup{
				Keep:       &keep,
				Remove:     remove,
				Method:     s.strategy.Method(),
				Reason:     match.Reason,
				Confidence: match.Confidence,
				Day:        day,
			})

			observability.DuplicateGroups.WithLabelValues(string(s.strategy.Method()), string(match.Confidence)).Inc()

			s.logger.Debug().
				Str(logKeyDay, day).
				Str(logKeyStrategy, s.strategy.Name()).
				Str(logKeyKeepID, keep.ID).
				Str(logKeyRemoveID, remove[0].ID).
				Str(logKeyConfidence, string(match.Confidence)).
				Msg("duplicate pair found")

			break
		}
	}

	return groups
}

// RemoveIDs flattens the remove members of groups, in group order.
func RemoveIDs(groups []domain.DuplicateGroup) []string {
	var ids []string

	for _, g := range groups {
		ids = append(ids, g.RemoveIDs()...)
	}

	return ids
}
