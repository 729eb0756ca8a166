package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/event-dedup/internal/platform/observability"
)

// UsageStore persists daily token usage.
type UsageStore interface {
	IncrementLLMUsage(ctx context.Context, provider, model, task string, promptTokens, completionTokens int, cost float64) error
}

// UsageRecorder records token usage for LLM requests.
type UsageRecorder interface {
	RecordTokenUsage(provider, model, task string, promptTokens, completionTokens int, success bool)
}

// usageRecorder implements UsageRecorder with metrics, budget tracking, and persistence.
type usageRecorder struct {
	budgetTracker *BudgetTracker
	usageStore    UsageStore
	logger        *zerolog.Logger
}

// NewUsageRecorder creates a new UsageRecorder. Both budgetTracker and usageStore may be nil.
func NewUsageRecorder(budgetTracker *BudgetTracker, usageStore UsageStore, logger *zerolog.Logger) UsageRecorder {
	return &usageRecorder{
		budgetTracker: budgetTracker,
		usageStore:    usageStore,
		logger:        logger,
	}
}

// RecordTokenUsage records token usage metrics for an LLM request.
func (r *usageRecorder) RecordTokenUsage(provider, model, task string, promptTokens, completionTokens int, success bool) {
	r.recordTokenMetrics(provider, model, task, promptTokens, completionTokens, success)

	cost := estimateCost(provider, model, promptTokens, completionTokens)
	r.recordCostMetric(provider, model, task, cost, success)
	r.recordToBudgetTracker(promptTokens, completionTokens, success)
	r.persistUsage(provider, model, task, promptTokens, completionTokens, cost, success)
}

func (r *usageRecorder) recordTokenMetrics(provider, model, task string, promptTokens, completionTokens int, success bool) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}

	observability.LLMRequests.WithLabelValues(provider, model, task, status).Inc()

	if promptTokens > 0 {
		observability.LLMTokensPrompt.WithLabelValues(provider, model, task).Add(float64(promptTokens))
	}

	if completionTokens > 0 {
		observability.LLMTokensCompletion.WithLabelValues(provider, model, task).Add(float64(completionTokens))
	}
}

func (r *usageRecorder) recordCostMetric(provider, model, task string, cost float64, success bool) {
	if cost > 0 && success {
		observability.LLMEstimatedCost.WithLabelValues(provider, model, task).Add(cost * usdToMillicents)
	}
}

func (r *usageRecorder) recordToBudgetTracker(promptTokens, completionTokens int, success bool) {
	if r.budgetTracker == nil || !success {
		return
	}

	if total := promptTokens + completionTokens; total > 0 {
		r.budgetTracker.RecordTokens(total)
	}
}

// persistUsage writes synchronously. Failures are logged and never fail the request.
func (r *usageRecorder) persistUsage(provider, model, task string, promptTokens, completionTokens int, cost float64, success bool) {
	if r.usageStore == nil || !success {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), usageStorageTimeout)
	defer cancel()

	if err := r.usageStore.IncrementLLMUsage(ctx, provider, model, task, promptTokens, completionTokens, cost); err != nil {
		r.logger.Warn().Err(err).Str(logKeyProvider, provider).Msg("failed to persist LLM usage")
	}
}

// noopUsageRecorder is a no-op implementation for testing or when usage tracking is disabled.
type noopUsageRecorder struct{}

// NoopUsageRecorder returns a no-op implementation of UsageRecorder.
func NoopUsageRecorder() UsageRecorder {
	return &noopUsageRecorder{}
}

func (r *noopUsageRecorder) RecordTokenUsage(_, _, _ string, _, _ int, _ bool) {}
