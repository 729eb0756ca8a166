// Package llm provides the reasoning service client: a registry of chat completion
// providers with priority fallback, per-provider circuit breakers and rate limits,
// and token usage accounting.
package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/event-dedup/internal/platform/config"
	"github.com/lueurxax/event-dedup/internal/platform/observability"
)

// Client is what callers need from the reasoning service.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Available() bool
}

// buildCircuitConfig creates a CircuitBreakerConfig with defaults applied.
func buildCircuitConfig(cfg config.LLMConfig) CircuitBreakerConfig {
	circuitCfg := CircuitBreakerConfig{
		Threshold:  cfg.CircuitThreshold,
		ResetAfter: cfg.CircuitTimeout,
	}

	if circuitCfg.Threshold == 0 {
		circuitCfg.Threshold = defaultCircuitThreshold
	}

	if circuitCfg.ResetAfter == 0 {
		circuitCfg.ResetAfter = defaultCircuitTimeout
	}

	return circuitCfg
}

// registerProviders registers every provider that has credentials.
func registerProviders(ctx context.Context, registry *Registry, cfg config.LLMConfig, logger *zerolog.Logger, circuitCfg CircuitBreakerConfig) {
	if cfg.OpenAIAPIKey != "" {
		registry.Register(NewOpenAIProvider(cfg, logger), circuitCfg)
	}

	if cfg.AnthropicAPIKey != "" {
		registry.Register(NewAnthropicProvider(cfg, logger), circuitCfg)
	}

	if cfg.GoogleAPIKey != "" {
		googleProvider, err := NewGoogleProvider(ctx, cfg, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create Google LLM provider")
		} else {
			registry.Register(googleProvider, circuitCfg)
		}
	}

	if cfg.OpenRouterAPIKey != "" {
		registry.Register(NewOpenRouterProvider(cfg, logger), circuitCfg)
	}

	// A canned reply is opt-in; with no credentials the registry stays empty and
	// callers see the service as unavailable.
	if cfg.MockResponse != "" {
		registry.Register(NewStaticMockProvider(cfg.MockResponse), circuitCfg)
	}
}

// New creates a registry with every configured provider. usageStore may be nil.
func New(ctx context.Context, cfg config.LLMConfig, usageStore UsageStore, logger *zerolog.Logger) *Registry {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	budget := NewBudgetTracker(cfg.DailyTokenBudget, logger)
	budget.SetAlertCallback(func(alert BudgetAlert) {
		observability.LLMBudgetAlerts.WithLabelValues(alert.Level).Inc()
	})

	registry := NewRegistry(logger,
		WithTaskConfig(DefaultTaskConfig(cfg)),
		WithBudgetTracker(budget),
		WithUsageRecorder(NewUsageRecorder(budget, usageStore, logger)),
	)

	registerProviders(ctx, registry, cfg, logger, buildCircuitConfig(cfg))

	if registry.ProviderCount() == 0 {
		logger.Warn().Msg("no LLM provider configured; AI confirmation will be skipped")
	}

	return registry
}

var _ Client = (*Registry)(nil)
