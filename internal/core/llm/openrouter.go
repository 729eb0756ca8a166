package llm

import (
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/lueurxax/event-dedup/internal/platform/config"
)

// OpenRouter API constants.
const (
	OpenRouterBaseURL      = "https://openrouter.ai/api/v1"
	ModelLlama31Instruct   = "meta-llama/llama-3.1-8b-instruct"
	defaultOpenRouterModel = ModelLlama31Instruct
)

// NewOpenRouterProvider creates an OpenRouter provider. OpenRouter speaks the OpenAI
// chat completions protocol, so it reuses the OpenAI client with a different base URL.
func NewOpenRouterProvider(cfg config.LLMConfig, logger *zerolog.Logger) *openaiProvider {
	clientCfg := openai.DefaultConfig(cfg.OpenRouterAPIKey)
	clientCfg.BaseURL = OpenRouterBaseURL

	model := cfg.OpenRouterModel
	if model == "" {
		model = defaultOpenRouterModel
	}

	return &openaiProvider{
		name:         ProviderOpenRouter,
		priority:     PriorityThirdFallback,
		apiKey:       cfg.OpenRouterAPIKey,
		defaultModel: model,
		maxTokens:    cfg.MaxTokens,
		client:       openai.NewClientWithConfig(clientCfg),
		logger:       logger,
		rateLimiter:  newRateLimiter(cfg.RateLimitRPS),
	}
}
