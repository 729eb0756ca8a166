// Package app wires configuration, storage, the reasoning service and the dedup
// pipeline together and exposes the operations the CLI runs:
//
//   - Run: plan duplicate removals for upcoming events and optionally apply them
//   - Analyze: graded, read-only analysis of a single day
//   - Usage: persisted reasoning service usage for a day
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	"github.com/lueurxax/event-dedup/internal/core/llm"
	"github.com/lueurxax/event-dedup/internal/core/sources"
	"github.com/lueurxax/event-dedup/internal/output/report"
	"github.com/lueurxax/event-dedup/internal/platform/config"
	"github.com/lueurxax/event-dedup/internal/platform/observability"
	"github.com/lueurxax/event-dedup/internal/process/confirm"
	"github.com/lueurxax/event-dedup/internal/process/dedup"
	"github.com/lueurxax/event-dedup/internal/process/filters"
	"github.com/lueurxax/event-dedup/internal/process/pipeline"
	db "github.com/lueurxax/event-dedup/internal/storage"
)

const (
	logFieldRunID  = "run_id"
	logFieldFormat = "format"
)

// Store is everything the job needs from the catalog database.
type Store interface {
	pipeline.EventSource
	pipeline.EventDeleter
	llm.UsageStore
	GetDailyLLMUsage(ctx context.Context, day time.Time) (*db.LLMUsageSummary, error)
	SaveRun(ctx context.Context, run db.RunRecord) error
	WithApplyLock(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
}

// RunOptions are the per-invocation choices of a run.
type RunOptions struct {
	Filter domain.EventFilter
	Apply  bool
	Format string
}

// App holds the application dependencies.
type App struct {
	cfg     *config.Config
	store   Store
	loc     *time.Location
	sources *sources.Registry
	logger  *zerolog.Logger
}

// New creates an App. The source registry comes from cfg.SourcesFile or the built-in list.
func New(cfg *config.Config, store Store, logger *zerolog.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	registry, err := sources.Load(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	return &App{
		cfg:     cfg,
		store:   store,
		loc:     loc,
		sources: registry,
		logger:  logger,
	}, nil
}

// Location returns the catalog's home timezone.
func (a *App) Location() *time.Location {
	return a.loc
}

// StartHealthServer serves metrics and probes until ctx is done. It is a no-op when
// METRICS_PORT is not set.
func (a *App) StartHealthServer(ctx context.Context) error {
	if a.cfg.MetricsPort <= 0 {
		return nil
	}

	srv := observability.NewServer(a.store, a.cfg.MetricsPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// NewSweeper builds the rule-based sweeper for strictness.
func NewSweeper(cfg config.DedupConfig, strictness string, logger *zerolog.Logger) *dedup.Sweeper {
	var strategy dedup.Strategy = dedup.NewStrictStrategy(cfg.StrictMinSharedWords)
	if strictness == config.StrictnessGraded {
		strategy = dedup.NewGradedStrategy(cfg.GradedMinSharedWords)
	}

	return dedup.NewSweeper(strategy, cfg.Workers, logger)
}

// newLLM builds the provider registry with today's budget seeded from persisted usage.
func (a *App) newLLM(ctx context.Context) *llm.Registry {
	client := llm.New(ctx, a.cfg.LLM, a.store, a.logger)

	today, err := a.store.GetDailyLLMUsage(ctx, time.Now().UTC())
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to load today's usage; budget starts at zero")
		return client
	}

	client.RestoreBudget(today.TotalPromptTokens + today.TotalCompletionTokens)

	return client
}

func (a *App) newPipeline(ctx context.Context) *pipeline.Pipeline {
	var confirmer pipeline.Confirmer

	if a.cfg.AI.Enabled {
		client := a.newLLM(ctx)
		confirmer = confirm.New(client, confirm.Options{
			Location:            a.loc,
			DescriptionMaxChars: a.cfg.AI.DescriptionMaxChars,
			MaxTokens:           a.cfg.LLM.MaxTokens,
			Sources:             a.sources,
		}, a.logger)
	}

	return pipeline.New(
		a.store,
		NewSweeper(a.cfg.Dedup, a.cfg.Dedup.Strictness, a.logger),
		filters.New(a.cfg.Filter.MinTitleLength, a.cfg.Filter.DenyKeywords),
		confirmer,
		pipeline.Options{
			Location:  a.loc,
			AIEnabled: a.cfg.AI.Enabled,
			DayDelay:  a.cfg.AI.DayDelay,
			MaxDays:   a.cfg.AI.MaxDays,
		},
		a.logger,
	)
}

// Run computes the plan, applies it when asked, records the run and writes the report.
// Deletion starts only after the whole plan is known. A failed apply still records and
// reports the plan with whatever was deleted before the failure.
func (a *App) Run(ctx context.Context, opts RunOptions, w io.Writer) error {
	plan, err := a.newPipeline(ctx).Run(ctx, opts.Filter)
	if err != nil {
		return fmt.Errorf("dedup run: %w", err)
	}

	var (
		applied  *pipeline.ApplyResult
		applyErr error
	)

	if opts.Apply {
		result, err := a.apply(ctx, plan, opts.Filter)
		applied = &result
		applyErr = err

		if err != nil {
			a.logger.Error().Err(err).Str(logFieldRunID, plan.RunID).Int("deleted", result.Deleted).Msg("apply stopped early")
		}
	}

	if err := a.store.SaveRun(ctx, BuildRunRecord(plan, opts.Apply)); err != nil {
		a.logger.Error().Err(err).Str(logFieldRunID, plan.RunID).Msg("failed to save run audit record")
	}

	if err := report.Write(w, opts.Format, plan, applied); err != nil {
		return errors.Join(applyErr, fmt.Errorf("write report: %w", err))
	}

	return applyErr
}

func (a *App) apply(ctx context.Context, plan *pipeline.Report, filter domain.EventFilter) (pipeline.ApplyResult, error) {
	var result pipeline.ApplyResult

	if filter.From.IsZero() {
		filter.From = plan.StartedAt
	}

	err := a.store.WithApplyLock(ctx, func(ctx context.Context) error {
		var err error

		result, err = pipeline.Apply(ctx, a.store, plan.RemoveIDs, a.cfg.Store.DeleteBatchSize, filter, a.logger)

		return err
	})
	if err != nil {
		return result, fmt.Errorf("apply removals: %w", err)
	}

	return result, nil
}

// Analyze runs the graded strategy over one day and writes the tiered groups.
func (a *App) Analyze(ctx context.Context, day string, srcs []domain.Source, format string, w io.Writer) error {
	p := a.newPipeline(ctx)

	phase, err := p.AnalyzeDay(ctx, day, NewSweeper(a.cfg.Dedup, config.StrictnessGraded, a.logger), srcs)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", day, err)
	}

	if err := report.WriteAnalysis(w, format, day, phase); err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}

	return nil
}

// Usage writes the persisted token usage for day along with provider health and
// today's budget.
func (a *App) Usage(ctx context.Context, day time.Time, format string, w io.Writer) error {
	summary, err := a.store.GetDailyLLMUsage(ctx, day)
	if err != nil {
		return fmt.Errorf("load usage: %w", err)
	}

	a.logger.Debug().Str(logFieldFormat, format).Int64("requests", summary.TotalRequests).Msg("loaded usage")

	client := a.newLLM(ctx)
	tokens, limit, pct := client.GetBudgetStatus()

	view := report.UsageView{
		Usage:     summary,
		Providers: client.GetProviderStatuses(),
		Budget:    report.BudgetView{DailyTokens: tokens, DailyLimit: limit, Percentage: pct},
	}

	if err := report.WriteUsage(w, format, view); err != nil {
		return fmt.Errorf("write usage: %w", err)
	}

	return nil
}

// BuildRunRecord converts a plan into its audit record.
func BuildRunRecord(plan *pipeline.Report, applied bool) db.RunRecord {
	run := db.RunRecord{
		RunID:      plan.RunID,
		StartedAt:  plan.StartedAt,
		FinishedAt: plan.FinishedAt,
		Strategy:   plan.Rules.Strategy,
		Applied:    applied,
		Loaded:     plan.Loaded,
		TokensUsed: plan.TokensUsed,
		Errors:     plan.Errors,
	}

	for _, g := range plan.Groups {
		keepID := ""
		if g.Keep != nil {
			keepID = g.Keep.ID
		}

		for _, r := range g.Remove {
			run.Removals = append(run.Removals, db.RunRemoval{
				EventID:    r.ID,
				KeepID:     keepID,
				Method:     string(g.Method),
				Confidence: string(g.Confidence),
				Reason:     g.Reason,
				Day:        g.Day,
			})
		}
	}

	return run
}
