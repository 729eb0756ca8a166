package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
	"github.com/lueurxax/event-dedup/internal/platform/config"
)

// Google model constants.
const (
	ModelGeminiFlashLite = "gemini-2.5-flash-lite"
	defaultGoogleModel   = ModelGeminiFlashLite
	mimeTypeJSON         = "application/json"
)

// sanitizeUTF8 replaces invalid UTF-8 sequences; the protobuf API rejects them and
// scraped listing descriptions sometimes carry broken bytes.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// googleProvider implements the Provider interface for Google Gemini.
type googleProvider struct {
	apiKey       string
	defaultModel string
	maxTokens    int
	client       *genai.Client
	logger       *zerolog.Logger
	rateLimiter  *rate.Limiter
}

// NewGoogleProvider creates a new Google Gemini LLM provider.
func NewGoogleProvider(ctx context.Context, cfg config.LLMConfig, logger *zerolog.Logger) (*googleProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GoogleAPIKey))
	if err != nil {
		return nil, fmt.Errorf("creating google genai client: %w", err)
	}

	model := cfg.GoogleModel
	if model == "" {
		model = defaultGoogleModel
	}

	return &googleProvider{
		apiKey:       cfg.GoogleAPIKey,
		defaultModel: model,
		maxTokens:    cfg.MaxTokens,
		client:       client,
		logger:       logger,
		rateLimiter:  newRateLimiter(cfg.RateLimitRPS),
	}, nil
}

// Close closes the Google client.
func (p *googleProvider) Close() error {
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("closing google genai client: %w", err)
		}
	}

	return nil
}

// Name returns the provider identifier.
func (p *googleProvider) Name() ProviderName {
	return ProviderGoogle
}

// IsAvailable returns true if the provider is configured and available.
func (p *googleProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Priority returns the provider priority.
func (p *googleProvider) Priority() int {
	return PrioritySecondFallback
}

func (p *googleProvider) resolveModel(model string) string {
	if strings.HasPrefix(model, modelPrefixGemini) {
		return model
	}

	return p.defaultModel
}

// Complete implements Provider.
func (p *googleProvider) Complete(ctx context.Context, req Request) (Response, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf(errRateLimiter, err)
	}

	model := p.resolveModel(req.Model)

	genModel := p.client.GenerativeModel(model)
	genModel.SetMaxOutputTokens(int32(resolveMaxTokens(req.MaxTokens, p.maxTokens))) //nolint:gosec // bounded by config

	if req.System != "" {
		genModel.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(sanitizeUTF8(req.System))}}
	}

	if req.JSON {
		genModel.ResponseMIMEType = mimeTypeJSON
	}

	resp, err := genModel.GenerateContent(ctx, genai.Text(sanitizeUTF8(req.User)))
	if err != nil {
		return Response{}, fmt.Errorf(errGoogleGenAIContent, err)
	}

	text := strings.TrimSpace(extractGoogleResponseText(resp))
	if text == "" {
		return Response{}, fmt.Errorf("%s: %w", ProviderGoogle, apperrors.ErrEmptyResponse)
	}

	out := Response{Text: text, Model: model}

	if resp.UsageMetadata != nil {
		out.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return out, nil
}

func extractGoogleResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var result strings.Builder

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				result.WriteString(string(text))
			}
		}
	}

	return result.String()
}

var _ Provider = (*googleProvider)(nil)
