// Package confirm asks the reasoning service to find duplicates the rule-based pass
// could not, one day at a time.
package confirm

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
	"github.com/lueurxax/event-dedup/internal/core/llm"
	"github.com/lueurxax/event-dedup/internal/core/sources"
	"github.com/lueurxax/event-dedup/internal/platform/observability"
)

// Day outcome labels for metrics.
const (
	dayStatusOK         = "ok"
	dayStatusParseError = "parse_error"
	dayStatusCallError  = "call_error"
	dayStatusSkipped    = "skipped"
)

const (
	logKeyDay      = "day"
	logKeyIndex    = "index"
	logKeyWarnings = "warnings"
)

// DayResult is what one confirmation call produced.
type DayResult struct {
	Day        string                  `json:"day"`
	Candidates int                     `json:"candidates"`
	Groups     []domain.DuplicateGroup `json:"groups,omitempty"`
	RemoveIDs  []string                `json:"remove_ids,omitempty"`
	TokensUsed int                     `json:"tokens_used"`
	// Dropped counts indices in valid groups that did not map to a record.
	Dropped    int      `json:"dropped"`
	Warnings   []string `json:"warnings,omitempty"`
	ParseError string   `json:"parse_error,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Options tune a Confirmer.
type Options struct {
	Location            *time.Location
	DescriptionMaxChars int
	MaxTokens           int
	Sources             *sources.Registry
}

// Confirmer runs the per-day confirmation call.
type Confirmer struct {
	client       llm.Client
	loc          *time.Location
	maxDesc      int
	maxTokens    int
	systemPrompt string
	logger       *zerolog.Logger
}

// New creates a Confirmer.
func New(client llm.Client, opts Options, logger *zerolog.Logger) *Confirmer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Confirmer{
		client:       client,
		loc:          loc,
		maxDesc:      opts.DescriptionMaxChars,
		maxTokens:    opts.MaxTokens,
		systemPrompt: SystemPrompt(opts.Sources.Names(sources.KindAggregator)),
		logger:       logger,
	}
}

// Available reports whether the reasoning service can be called at all.
func (c *Confirmer) Available() bool {
	return c.client != nil && c.client.Available()
}

// ConfirmDay sends one day's records and maps the answer back to durable IDs.
// A malformed answer is not an error: the day yields no groups and a ParseError.
// The returned error is set only when the call itself failed; the DayResult
// carries the same message.
func (c *Confirmer) ConfirmDay(ctx context.Context, day string, records []domain.EventRecord) (DayResult, error) {
	result := DayResult{Day: day, Candidates: len(records)}

	if len(records) < 2 {
		observability.AIDays.WithLabelValues(dayStatusSkipped).Inc()

		return result, nil
	}

	if !c.Available() {
		result.Error = apperrors.ErrServiceUnavailable.Error()

		return result, apperrors.ErrServiceUnavailable
	}

	index := NewIndexMap(records)

	resp, err := c.client.Complete(ctx, llm.Request{
		Task:      llm.TaskTypeDedupConfirm,
		System:    c.systemPrompt,
		User:      UserPrompt(day, records, index, c.loc, c.maxDesc),
		MaxTokens: c.maxTokens,
		JSON:      true,
	})
	if err != nil {
		observability.AIDays.WithLabelValues(dayStatusCallError).Inc()

		err = fmt.Errorf("confirm day %s: %w", day, err)
		result.Error = err.Error()

		return result, err
	}

	result.TokensUsed = resp.TotalTokens()

	parsed := ParseResponse(resp.Text)
	result.Warnings = parsed.Warnings

	if len(parsed.Warnings) > 0 {
		c.logger.Warn().Str(logKeyDay, day).Strs(logKeyWarnings, parsed.Warnings).Msg("dropped invalid duplicate groups")
	}

	if !parsed.Success {
		observability.AIDays.WithLabelValues(dayStatusParseError).Inc()

		result.ParseError = parsed.Error

		c.logger.Warn().
			Err(fmt.Errorf("%w: %s", apperrors.ErrMalformedResponse, parsed.Error)).
			Str(logKeyDay, day).
			Msg("could not parse confirmation response")

		return result, nil
	}

	c.mapGroups(&result, parsed.Groups, records, index)

	observability.AIDays.WithLabelValues(dayStatusOK).Inc()

	return result, nil
}

// mapGroups turns index groups into record groups. Unmappable indices are dropped one
// by one; a group survives if any index maps. A record already removed by an earlier
// group of the same day is not listed twice.
func (c *Confirmer) mapGroups(result *DayResult, groups []ParsedGroup, records []domain.EventRecord, index *IndexMap) {
	byID := make(map[string]domain.EventRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	claimed := make(map[string]bool)

	for _, g := range groups {
		var remove []domain.EventRecord

		for _, raw := range g.Remove {
			id, ok := lookup(index, raw)
			if !ok {
				result.Dropped++
				observability.AIDroppedIndices.Inc()

				c.logger.Warn().Err(apperrors.ErrUnknownIndex).Str(logKeyDay, result.Day).Float64(logKeyIndex, raw).Msg("dropping listing index")

				continue
			}

			if claimed[id] {
				continue
			}

			claimed[id] = true

			remove = append(remove, byID[id])
		}

		if len(remove) == 0 {
			continue
		}

		group := domain.DuplicateGroup{
			Remove:     remove,
			Method:     domain.MethodAI,
			Reason:     g.Reason,
			Confidence: domain.ConfidenceMedium,
			Day:        result.Day,
		}

		observability.DuplicateGroups.WithLabelValues(string(group.Method), string(group.Confidence)).Inc()

		result.Groups = append(result.Groups, group)
		result.RemoveIDs = append(result.RemoveIDs, group.RemoveIDs()...)
	}
}

func lookup(index *IndexMap, raw float64) (string, bool) {
	if raw != math.Trunc(raw) || raw < 1 || raw > float64(index.Len()) {
		return "", false
	}

	return index.ID(int(raw))
}
