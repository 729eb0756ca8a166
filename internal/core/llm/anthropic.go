package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
	"github.com/lueurxax/event-dedup/internal/platform/config"
)

// Anthropic model constants.
const (
	ModelClaudeHaiku      = "claude-haiku-4-5"
	defaultAnthropicModel = ModelClaudeHaiku
	contentTypeText       = "text"
)

// anthropicProvider implements the Provider interface for Anthropic Claude.
type anthropicProvider struct {
	apiKey       string
	defaultModel string
	maxTokens    int
	client       anthropic.Client
	logger       *zerolog.Logger
	rateLimiter  *rate.Limiter
}

// NewAnthropicProvider creates a new Anthropic LLM provider.
func NewAnthropicProvider(cfg config.LLMConfig, logger *zerolog.Logger) *anthropicProvider {
	model := cfg.AnthropicModel
	if model == "" {
		model = defaultAnthropicModel
	}

	return &anthropicProvider{
		apiKey:       cfg.AnthropicAPIKey,
		defaultModel: model,
		maxTokens:    cfg.MaxTokens,
		client:       anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		logger:       logger,
		rateLimiter:  newRateLimiter(cfg.RateLimitRPS),
	}
}

// Name returns the provider identifier.
func (p *anthropicProvider) Name() ProviderName {
	return ProviderAnthropic
}

// IsAvailable returns true if the provider is configured and available.
func (p *anthropicProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Priority returns the provider priority.
func (p *anthropicProvider) Priority() int {
	return PriorityFallback
}

// resolveModel keeps Claude model names and maps anything else to the configured default,
// since the task chain may hand over another vendor's model on fallback.
func (p *anthropicProvider) resolveModel(model string) string {
	if strings.HasPrefix(model, modelPrefixClaude) {
		return model
	}

	return p.defaultModel
}

// Complete implements Provider.
func (p *anthropicProvider) Complete(ctx context.Context, req Request) (Response, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf(errRateLimiter, err)
	}

	model := p.resolveModel(req.Model)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(resolveMaxTokens(req.MaxTokens, p.maxTokens)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf(errAnthropicMessage, err)
	}

	text := strings.TrimSpace(extractTextFromResponse(resp))
	if text == "" {
		return Response{}, fmt.Errorf("%s: %w", ProviderAnthropic, apperrors.ErrEmptyResponse)
	}

	return Response{
		Text:             text,
		Model:            model,
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}, nil
}

func extractTextFromResponse(resp *anthropic.Message) string {
	var result strings.Builder

	for _, block := range resp.Content {
		if block.Type == contentTypeText {
			result.WriteString(block.Text)
		}
	}

	return result.String()
}
