package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	"github.com/lueurxax/event-dedup/internal/platform/observability"
)

// EventDeleter removes catalog records and counts what is left.
type EventDeleter interface {
	DeleteEvents(ctx context.Context, ids []string) (int64, error)
	CountEvents(ctx context.Context, filter domain.EventFilter) (int, error)
}

// ApplyResult summarizes a deletion.
type ApplyResult struct {
	Requested int `json:"requested"`
	Deleted   int `json:"deleted"`
	Batches   int `json:"batches"`
	Remaining int `json:"remaining"`
}

// Apply deletes ids in batches of batchSize, then counts the records still matching
// filter. On a failed batch it stops and returns what was deleted so far, with
// Remaining counted when the store still answers.
func Apply(ctx context.Context, store EventDeleter, ids []string, batchSize int, filter domain.EventFilter, logger *zerolog.Logger) (ApplyResult, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if batchSize <= 0 {
		batchSize = DefaultDeleteBatchSize
	}

	defer observeSince(phaseApply, time.Now())

	result := ApplyResult{Requested: len(ids)}

	for start := 0; start < len(ids); start += batchSize {
		end := min(start+batchSize, len(ids))

		deleted, err := store.DeleteEvents(ctx, ids[start:end])
		if err != nil {
			if remaining, countErr := store.CountEvents(ctx, filter); countErr == nil {
				result.Remaining = remaining
			}

			return result, fmt.Errorf("delete batch %d: %w", result.Batches+1, err)
		}

		result.Batches++
		result.Deleted += int(deleted)

		observability.EventsRemoved.Add(float64(deleted))

		logger.Debug().Int(logKeyBatch, result.Batches).Int64(logKeyDeleted, deleted).Msg("deleted batch")
	}

	remaining, err := store.CountEvents(ctx, filter)
	if err != nil {
		return result, fmt.Errorf("count remaining events: %w", err)
	}

	result.Remaining = remaining

	logger.Info().
		Int(logKeyDeleted, result.Deleted).
		Int("batches", result.Batches).
		Int("remaining", result.Remaining).
		Msg("applied removals")

	return result, nil
}
