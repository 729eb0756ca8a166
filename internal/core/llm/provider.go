package llm

import "context"

// ProviderName identifies an LLM provider.
type ProviderName string

// Provider name constants.
const (
	ProviderOpenAI     ProviderName = "openai"
	ProviderAnthropic  ProviderName = "anthropic"
	ProviderGoogle     ProviderName = "google"
	ProviderOpenRouter ProviderName = "openrouter"
	ProviderMock       ProviderName = "mock"
)

// Priority constants for provider ordering.
const (
	PriorityPrimary        = 100 // Primary provider (OpenAI)
	PriorityFallback       = 50  // First fallback (Anthropic)
	PrioritySecondFallback = 25  // Second fallback (Google)
	PriorityThirdFallback  = 10  // Third fallback (OpenRouter)
	PriorityMock           = 0   // Mock provider for testing
)

// Request is a single-turn completion request.
type Request struct {
	Task      TaskType
	System    string
	User      string
	Model     string
	MaxTokens int
	// JSON asks the provider for a JSON object response where it supports it.
	JSON bool
}

// Response is the completion text together with the usage reported by the provider.
type Response struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// TotalTokens returns prompt plus completion tokens.
func (r Response) TotalTokens() int {
	return r.PromptTokens + r.CompletionTokens
}

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// IsAvailable returns true if the provider is configured and available.
	IsAvailable() bool

	// Priority returns the provider priority (higher = preferred).
	Priority() int

	// Complete runs one request. Model is already resolved by the registry; empty means provider default.
	Complete(ctx context.Context, req Request) (Response, error)
}
