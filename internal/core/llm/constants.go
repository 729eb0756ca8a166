package llm

import "time"

// Error message templates
const (
	errRateLimiter        = "rate limiter: %w"
	errOpenAICompletion   = "openai chat completion: %w"
	errAnthropicMessage   = "anthropic message: %w"
	errGoogleGenAIContent = "google genai completion: %w"
)

// Model mapping strings
const (
	modelPrefixClaude = "claude"
	modelPrefixGemini = "gemini"
)

// Circuit breaker defaults
const (
	defaultCircuitThreshold = 5
	defaultCircuitTimeout   = time.Minute
)

// Provider request defaults
const (
	defaultMaxTokens    = 2048
	rateLimiterBurst    = 5
	usageStorageTimeout = 5 * time.Second
)

// Cost conversion
const (
	usdToMillicents = 100000.0 // 1 USD = 100,000 millicents
)

// Log field keys
const (
	logKeyProvider = "provider"
	logKeyTask     = "task"
	logKeyModel    = "model"
)

// Log message strings
const (
	logMsgCircuitBreakerOpen = "skipping provider - circuit breaker open"
)

// Request status for metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metric gauge values.
const (
	MetricValueAvailable   = 1.0
	MetricValueUnavailable = 0.0
	MetricValueCBOpen      = 1.0 // Circuit breaker is open (blocking requests)
	MetricValueCBClosed    = 0.0 // Circuit breaker is closed (allowing requests)
)
