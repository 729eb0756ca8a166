// Package pipeline runs one duplicate detection pass over the catalog: the rule-based
// sweep over everything, then day-by-day confirmation over what the rules left.
// It only plans; deleting is a separate step the caller takes with Apply.
package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
	"github.com/lueurxax/event-dedup/internal/platform/observability"
	"github.com/lueurxax/event-dedup/internal/process/confirm"
	"github.com/lueurxax/event-dedup/internal/process/dedup"
	"github.com/lueurxax/event-dedup/internal/process/filters"
)

// EventSource lists catalog records.
type EventSource interface {
	ListEvents(ctx context.Context, filter domain.EventFilter) ([]domain.EventRecord, error)
}

// Confirmer asks the reasoning service about one day.
type Confirmer interface {
	Available() bool
	ConfirmDay(ctx context.Context, day string, records []domain.EventRecord) (confirm.DayResult, error)
}

// RecordFilter drops records that should not be sent for confirmation.
type RecordFilter interface {
	Apply(records []domain.EventRecord, logger *zerolog.Logger) (kept []domain.EventRecord, rejected []filters.Rejection)
}

// Options tune a run.
type Options struct {
	Location  *time.Location
	AIEnabled bool
	DayDelay  time.Duration
	// MaxDays caps how many days are sent for confirmation; 0 means all.
	MaxDays int
}

// Pipeline runs the rule pass and then the AI confirmation pass over one catalog load.
// It never deletes; callers pass the report's RemoveIDs to Apply.
type Pipeline struct {
	source    EventSource
	sweeper   *dedup.Sweeper
	filter    RecordFilter
	confirmer Confirmer
	opts      Options
	logger    *zerolog.Logger

	now     func() time.Time
	entropy *ulid.MonotonicEntropy
}

// New creates a pipeline. filter and confirmer may be nil; without a confirmer the AI
// phase reports the service as unavailable.
func New(source EventSource, sweeper *dedup.Sweeper, filter RecordFilter, confirmer Confirmer, opts Options, logger *zerolog.Logger) *Pipeline {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if opts.Location == nil {
		opts.Location = time.UTC
	}

	if opts.DayDelay < 0 {
		opts.DayDelay = 0
	}

	return &Pipeline{
		source:    source,
		sweeper:   sweeper,
		filter:    filter,
		confirmer: confirmer,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		entropy:   ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0), //nolint:gosec // run IDs are not secrets
	}
}

// Run loads the records matching filter and computes the full removal plan.
// A zero filter.From defaults to now, so only upcoming events are considered.
// Errors are returned only when loading or the rule sweep fails; confirmation problems
// are reported in the Report.
func (p *Pipeline) Run(ctx context.Context, filter domain.EventFilter) (*Report, error) {
	started := p.now()

	report := &Report{
		RunID:     ulid.MustNew(ulid.Timestamp(started), p.entropy).String(),
		StartedAt: started,
	}

	logger := p.logger.With().Str(logKeyRunID, report.RunID).Logger()

	if filter.From.IsZero() {
		filter.From = started
	}

	records, err := p.load(ctx, filter)
	if err != nil {
		return nil, err
	}

	report.Loaded = len(records)

	logger.Info().Int(logKeyLoaded, len(records)).Msg("loaded events")

	rules, err := p.runRules(ctx, records)
	if err != nil {
		return nil, err
	}

	report.Rules = rules

	logger.Info().
		Str("strategy", rules.Strategy).
		Int(logKeyBuckets, rules.Buckets).
		Int(logKeyRemoved, len(rules.RemoveIDs)).
		Msg("rule pass complete")

	remaining := domain.Without(records, rules.RemoveIDs)
	report.AI = p.runAI(ctx, remaining, &logger)

	report.FinishedAt = p.now()
	report.finalize()

	logger.Info().
		Int(logKeyRemoved, report.DuplicatesFound).
		Int("days", report.DaysProcessed).
		Int(logKeyTokens, report.TokensUsed).
		Int("errors", len(report.Errors)).
		Msg("dedup run complete")

	return report, nil
}

// AnalyzeDay runs sweeper over the records of a single local day and returns what it
// would group. It never looks at other days and never calls the reasoning service.
func (p *Pipeline) AnalyzeDay(ctx context.Context, day string, sweeper *dedup.Sweeper, sources []domain.Source) (RulePhase, error) {
	start, err := time.ParseInLocation(dedup.DateKeyLayout, day, p.opts.Location)
	if err != nil {
		return RulePhase{}, fmt.Errorf("parse day %q: %w", day, apperrors.ErrInvalidInput)
	}

	records, err := p.load(ctx, domain.EventFilter{Sources: sources, From: start, Until: start.AddDate(0, 0, 1)})
	if err != nil {
		return RulePhase{}, err
	}

	buckets := dedup.BucketByDate(records, p.opts.Location)
	groups := sweeper.SweepDay(day, buckets[day])

	return RulePhase{
		Strategy:  sweeper.Strategy().Name(),
		Buckets:   len(buckets),
		Groups:    groups,
		RemoveIDs: dedup.RemoveIDs(groups),
	}, nil
}

func (p *Pipeline) load(ctx context.Context, filter domain.EventFilter) ([]domain.EventRecord, error) {
	defer observeSince(phaseLoad, time.Now())

	records, err := p.source.ListEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	observability.EventsLoaded.Add(float64(len(records)))

	return records, nil
}

func (p *Pipeline) runRules(ctx context.Context, records []domain.EventRecord) (RulePhase, error) {
	defer observeSince(phaseRules, time.Now())

	buckets := dedup.BucketByDate(records, p.opts.Location)

	groups, err := p.sweeper.Sweep(ctx, buckets)
	if err != nil {
		return RulePhase{}, fmt.Errorf("rule pass: %w", err)
	}

	return RulePhase{
		Strategy:  p.sweeper.Strategy().Name(),
		Buckets:   len(buckets),
		Groups:    groups,
		RemoveIDs: dedup.RemoveIDs(groups),
	}, nil
}

// runAI confirms days in ascending order, one at a time. A failing day is recorded and
// the loop moves on; cancellation stops it between days.
func (p *Pipeline) runAI(ctx context.Context, records []domain.EventRecord, logger *zerolog.Logger) AIPhase {
	phase := AIPhase{Enabled: p.opts.AIEnabled}
	if !phase.Enabled {
		return phase
	}

	if p.confirmer == nil || !p.confirmer.Available() {
		phase.Error = fmt.Sprintf("ai phase: %v", apperrors.ErrServiceUnavailable)

		logger.Warn().Msg("reasoning service not configured, skipping confirmation")

		return phase
	}

	defer observeSince(phaseAI, time.Now())

	candidates := records

	if p.filter != nil {
		kept, rejected := p.filter.Apply(records, logger)
		candidates = kept
		phase.Filtered = len(rejected)
	}

	buckets := dedup.BucketByDate(candidates, p.opts.Location)

	days := buckets.Comparable()
	if p.opts.MaxDays > 0 && len(days) > p.opts.MaxDays {
		days = days[:p.opts.MaxDays]
	}

	logger.Info().
		Int("days", len(days)).
		Int("candidates", buckets.Size()).
		Int(logKeyFiltered, phase.Filtered).
		Msg("starting confirmation")

	phase.Success = true

	for i, day := range days {
		if err := p.pause(ctx, i > 0); err != nil {
			phase.Success = false
			phase.Error = fmt.Sprintf("ai phase stopped before %s: %v", day, err)

			logger.Warn().Err(err).Str(logKeyDay, day).Msg("confirmation interrupted")

			break
		}

		result, err := p.confirmer.ConfirmDay(ctx, day, buckets[day])
		if err != nil {
			logger.Warn().Err(err).Str(logKeyDay, day).Msg("confirmation failed for day")
		} else {
			logger.Debug().
				Str(logKeyDay, day).
				Int(logKeyRemoved, len(result.RemoveIDs)).
				Int(logKeyTokens, result.TokensUsed).
				Msg("day confirmed")
		}

		phase.Days = append(phase.Days, result)
		phase.TokensUsed += result.TokensUsed
	}

	return phase
}

// pause waits the inter-day delay when delay is set and reports cancellation.
func (p *Pipeline) pause(ctx context.Context, delay bool) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // context error passed through
	}

	if !delay || p.opts.DayDelay == 0 {
		return nil
	}

	timer := time.NewTimer(p.opts.DayDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // context error passed through
	case <-timer.C:
		return nil
	}
}

func observeSince(phase string, start time.Time) {
	observability.RunDurationSeconds.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}
