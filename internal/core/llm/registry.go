package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
	"github.com/lueurxax/event-dedup/internal/platform/observability"
)

// Registry errors.
var (
	ErrNoProvidersAvailable = fmt.Errorf("no LLM providers available: %w", apperrors.ErrServiceUnavailable)
	ErrAllProvidersFailed   = errors.New("all LLM providers failed")
)

// Registry manages LLM providers with fallback support.
type Registry struct {
	mu              sync.RWMutex
	providers       map[ProviderName]Provider
	order           []ProviderName // Priority order (highest first)
	circuitBreakers map[ProviderName]*CircuitBreaker
	taskConfig      map[TaskType]TaskProviderChain
	budgetTracker   *BudgetTracker
	recorder        UsageRecorder
	logger          *zerolog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTaskConfig sets the per-task provider chains.
func WithTaskConfig(taskConfig map[TaskType]TaskProviderChain) RegistryOption {
	return func(r *Registry) {
		r.taskConfig = taskConfig
	}
}

// WithBudgetTracker sets the daily budget tracker checked before each request.
func WithBudgetTracker(bt *BudgetTracker) RegistryOption {
	return func(r *Registry) {
		r.budgetTracker = bt
	}
}

// WithUsageRecorder sets where token usage is reported.
func WithUsageRecorder(recorder UsageRecorder) RegistryOption {
	return func(r *Registry) {
		r.recorder = recorder
	}
}

// NewRegistry creates a new provider registry.
func NewRegistry(logger *zerolog.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	r := &Registry{
		providers:       make(map[ProviderName]Provider),
		order:           make([]ProviderName, 0),
		circuitBreakers: make(map[ProviderName]*CircuitBreaker),
		taskConfig:      make(map[TaskType]TaskProviderChain),
		recorder:        NoopUsageRecorder(),
		logger:          logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider, cfg CircuitBreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}

	r.providers[name] = p
	r.circuitBreakers[name] = NewCircuitBreaker(cfg, r.logger)

	r.sortProvidersByPriority()

	available := MetricValueUnavailable
	if p.IsAvailable() {
		available = MetricValueAvailable
	}

	observability.LLMProviderAvailable.WithLabelValues(string(name)).Set(available)

	r.logger.Info().
		Str(logKeyProvider, string(name)).
		Int("priority", p.Priority()).
		Msg("registered LLM provider")
}

// ProviderCount returns the number of registered providers.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// Available reports whether at least one registered provider is configured.
func (r *Registry) Available() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.providers {
		if p.IsAvailable() {
			return true
		}
	}

	return false
}

// Complete runs the request against the task's provider chain, falling back on failure.
func (r *Registry) Complete(ctx context.Context, req Request) (Response, error) {
	if req.Task == "" {
		req.Task = TaskTypeComplete
	}

	if r.budgetTracker != nil && r.budgetTracker.Exceeded() {
		return Response{}, apperrors.ErrBudgetExceeded
	}

	providerModels := r.getProviderChainForTask(req.Task)
	if len(providerModels) == 0 {
		return Response{}, ErrNoProvidersAvailable
	}

	var (
		lastErr          error
		previousProvider ProviderName
	)

	for _, pm := range providerModels {
		if err := ctx.Err(); err != nil {
			return Response{}, fmt.Errorf("llm complete: %w", err)
		}

		resp, attempted, err := r.tryProvider(ctx, pm, req)
		if !attempted {
			continue
		}

		if err != nil {
			lastErr = err

			if previousProvider == "" {
				previousProvider = pm.Provider
			}

			continue
		}

		if previousProvider != "" {
			observability.LLMFallbacks.WithLabelValues(
				string(previousProvider),
				string(pm.Provider),
				string(req.Task),
			).Inc()

			r.logger.Info().
				Str(logKeyProvider, string(pm.Provider)).
				Str("from_provider", string(previousProvider)).
				Str(logKeyTask, string(req.Task)).
				Msg("used fallback LLM provider")
		}

		return resp, nil
	}

	if lastErr != nil {
		return Response{}, errors.Join(ErrAllProvidersFailed, lastErr)
	}

	return Response{}, ErrNoProvidersAvailable
}

// tryProvider calls one provider. attempted is false when the provider was skipped.
func (r *Registry) tryProvider(ctx context.Context, pm ProviderModel, req Request) (resp Response, attempted bool, err error) {
	r.mu.RLock()
	p, exists := r.providers[pm.Provider]
	cb := r.circuitBreakers[pm.Provider]
	r.mu.RUnlock()

	if !exists || !p.IsAvailable() {
		return Response{}, false, nil
	}

	if !cb.CanAttempt() {
		observability.LLMCircuitBreakerState.WithLabelValues(string(pm.Provider)).Set(MetricValueCBOpen)
		observability.LLMProviderAvailable.WithLabelValues(string(pm.Provider)).Set(MetricValueUnavailable)

		r.logger.Debug().
			Str(logKeyProvider, string(pm.Provider)).
			Str(logKeyTask, string(req.Task)).
			Msg(logMsgCircuitBreakerOpen)

		return Response{}, false, nil
	}

	if req.Model == "" {
		req.Model = pm.Model
	}

	start := time.Now()
	resp, err = p.Complete(ctx, req)
	duration := time.Since(start)

	model := resp.Model
	if model == "" {
		model = req.Model
	}

	observability.LLMRequestLatency.WithLabelValues(string(pm.Provider), model, string(req.Task)).Observe(duration.Seconds())

	if err != nil {
		r.recorder.RecordTokenUsage(string(pm.Provider), model, string(req.Task), 0, 0, false)

		if cb.RecordFailure(pm.Provider) {
			observability.LLMCircuitBreakerOpens.WithLabelValues(string(pm.Provider)).Inc()
			observability.LLMCircuitBreakerState.WithLabelValues(string(pm.Provider)).Set(MetricValueCBOpen)
			observability.LLMProviderAvailable.WithLabelValues(string(pm.Provider)).Set(MetricValueUnavailable)
		}

		r.logger.Warn().
			Err(err).
			Str(logKeyProvider, string(pm.Provider)).
			Str(logKeyModel, model).
			Str(logKeyTask, string(req.Task)).
			Float64("duration_seconds", duration.Seconds()).
			Msg("LLM provider failed, trying fallback")

		return Response{}, true, fmt.Errorf("%s: %w", pm.Provider, err)
	}

	cb.RecordSuccess()

	observability.LLMCircuitBreakerState.WithLabelValues(string(pm.Provider)).Set(MetricValueCBClosed)
	observability.LLMProviderAvailable.WithLabelValues(string(pm.Provider)).Set(MetricValueAvailable)

	resp.Model = model
	r.recorder.RecordTokenUsage(string(pm.Provider), model, string(req.Task), resp.PromptTokens, resp.CompletionTokens, true)

	return resp, true, nil
}

// getProviderChainForTask returns task-specific providers first, then the remaining
// registered providers in priority order.
func (r *Registry) getProviderChainForTask(taskType TaskType) []ProviderModel {
	r.mu.RLock()
	taskChain, hasConfig := r.taskConfig[taskType]
	order := append([]ProviderName(nil), r.order...)
	r.mu.RUnlock()

	var providerModels []ProviderModel

	if hasConfig {
		providerModels = taskChain.GetProviderChain()
	}

	seen := make(map[ProviderName]bool)

	for _, pm := range providerModels {
		seen[pm.Provider] = true
	}

	for _, name := range order {
		if !seen[name] {
			providerModels = append(providerModels, ProviderModel{Provider: name})
			seen[name] = true
		}
	}

	return providerModels
}

func (r *Registry) sortProvidersByPriority() {
	sort.SliceStable(r.order, func(i, j int) bool {
		return r.providers[r.order[i]].Priority() > r.providers[r.order[j]].Priority()
	})
}

// ProviderStatus holds status information for a provider.
type ProviderStatus struct {
	Name             ProviderName `json:"name"`
	Priority         int          `json:"priority"`
	Available        bool         `json:"available"`
	CircuitBreakerOK bool         `json:"circuit_breaker_ok"`
}

// GetProviderStatuses returns status information for all registered providers.
func (r *Registry) GetProviderStatuses() []ProviderStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]ProviderStatus, 0, len(r.order))

	for _, name := range r.order {
		p := r.providers[name]

		statuses = append(statuses, ProviderStatus{
			Name:             name,
			Priority:         p.Priority(),
			Available:        p.IsAvailable(),
			CircuitBreakerOK: r.circuitBreakers[name].CanAttempt(),
		})
	}

	return statuses
}

// GetBudgetStatus returns today's token usage against the configured limit.
func (r *Registry) GetBudgetStatus() (dailyTokens, dailyLimit int64, percentage float64) {
	if r.budgetTracker == nil {
		return 0, 0, 0
	}

	return r.budgetTracker.GetStatus()
}

// RestoreBudget seeds the daily budget with tokens persisted by earlier runs today.
func (r *Registry) RestoreBudget(tokens int64) {
	if r.budgetTracker == nil {
		return
	}

	r.budgetTracker.Restore(tokens)
}
