package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
	"github.com/lueurxax/event-dedup/internal/platform/config"
)

// OpenAI model constants.
const (
	ModelGPT4oMini     = "gpt-4o-mini"
	defaultOpenAIModel = ModelGPT4oMini
)

// openaiProvider implements Provider for the OpenAI chat completions API and
// any endpoint compatible with it.
type openaiProvider struct {
	name         ProviderName
	priority     int
	apiKey       string
	defaultModel string
	maxTokens    int
	client       *openai.Client
	logger       *zerolog.Logger
	rateLimiter  *rate.Limiter
}

// NewOpenAIProvider creates a new OpenAI LLM provider.
func NewOpenAIProvider(cfg config.LLMConfig, logger *zerolog.Logger) *openaiProvider {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	model := cfg.OpenAIModel
	if model == "" {
		model = defaultOpenAIModel
	}

	return &openaiProvider{
		name:         ProviderOpenAI,
		priority:     PriorityPrimary,
		apiKey:       cfg.OpenAIAPIKey,
		defaultModel: model,
		maxTokens:    cfg.MaxTokens,
		client:       openai.NewClientWithConfig(clientCfg),
		logger:       logger,
		rateLimiter:  newRateLimiter(cfg.RateLimitRPS),
	}
}

// Name returns the provider identifier.
func (p *openaiProvider) Name() ProviderName {
	return p.name
}

// IsAvailable returns true if the provider is configured and available.
func (p *openaiProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Priority returns the provider priority.
func (p *openaiProvider) Priority() int {
	return p.priority
}

// Complete implements Provider.
func (p *openaiProvider) Complete(ctx context.Context, req Request) (Response, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf(errRateLimiter, err)
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}

	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	chatReq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: resolveMaxTokens(req.MaxTokens, p.maxTokens),
	}

	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Response{}, fmt.Errorf(errOpenAICompletion, err)
	}

	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("%s: %w", p.name, apperrors.ErrEmptyResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	p.logger.Debug().Str(logKeyProvider, string(p.name)).Str(logKeyModel, model).Int("length", len(content)).Msg("LLM response")

	return Response{
		Text:             content,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func newRateLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		rps = 1
	}

	return rate.NewLimiter(rate.Limit(rps), rateLimiterBurst)
}

func resolveMaxTokens(requested, configured int) int {
	switch {
	case requested > 0:
		return requested
	case configured > 0:
		return configured
	default:
		return defaultMaxTokens
	}
}
