package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dedup_events_loaded_total",
		Help: "The total number of event records loaded for deduplication",
	})

	DuplicateGroups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_groups_total",
		Help: "The total number of duplicate groups found by method and confidence",
	}, []string{"method", "confidence"})

	EventsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dedup_events_removed_total",
		Help: "The total number of event records deleted as duplicates",
	})

	FilteredEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_filtered_events_total",
		Help: "Records excluded from AI confirmation by the default filter",
	}, []string{"reason"})

	RunDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dedup_run_duration_seconds",
		Help:    "Duration of a deduplication phase",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 1800},
	}, []string{"phase"})

	AIDays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_ai_days_total",
		Help: "Days sent to AI confirmation by outcome",
	}, []string{"status"})

	AIDroppedIndices = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dedup_ai_dropped_indices_total",
		Help: "Indices returned by the AI service that did not map to a record",
	})

	LLMTokensPrompt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_llm_tokens_prompt_total",
		Help: "Total number of prompt tokens used",
	}, []string{"provider", "model", "task"})

	LLMTokensCompletion = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_llm_tokens_completion_total",
		Help: "Total number of completion tokens used",
	}, []string{"provider", "model", "task"})

	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_llm_requests_total",
		Help: "Total number of LLM requests",
	}, []string{"provider", "model", "task", "status"})

	// LLM fallback and circuit breaker metrics
	LLMFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_llm_fallbacks_total",
		Help: "Total number of LLM fallback events",
	}, []string{"from_provider", "to_provider", "task"})

	LLMCircuitBreakerOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_llm_circuit_breaker_opens_total",
		Help: "Total number of times LLM circuit breaker opened",
	}, []string{"provider"})

	LLMCircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dedup_llm_circuit_breaker_state",
		Help: "Current state of LLM circuit breaker (0=closed, 1=open)",
	}, []string{"provider"})

	LLMRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dedup_llm_request_latency_seconds",
		Help:    "Latency of LLM requests by provider and task",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "model", "task"})

	// LLM estimated costs (in millicents to avoid floating point issues)
	LLMEstimatedCost = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_llm_estimated_cost_millicents_total",
		Help: "Estimated LLM cost in millicents (0.001 cents)",
	}, []string{"provider", "model", "task"})

	LLMBudgetAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_llm_budget_alerts_total",
		Help: "Daily token budget threshold alerts by level",
	}, []string{"level"})

	LLMProviderAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dedup_llm_provider_available",
		Help: "Whether LLM provider is currently available (0=no, 1=yes)",
	}, []string{"provider"})
)
