package llm

import (
	"context"
	"sync"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
)

// Approximate token accounting for scripted responses.
const mockCharsPerToken = 4

// MockStep is one scripted reply of the mock provider.
type MockStep struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	Err              error
}

// MockProvider replays scripted responses in order and repeats the last one when the
// script runs out. It records every request it receives.
type MockProvider struct {
	mu       sync.Mutex
	steps    []MockStep
	calls    int
	requests []Request
}

// NewMockProvider creates a mock provider with a scripted sequence of replies.
func NewMockProvider(steps ...MockStep) *MockProvider {
	return &MockProvider{steps: steps}
}

// NewStaticMockProvider returns a mock that answers every request with text and
// estimates token usage from the prompt and reply lengths.
func NewStaticMockProvider(text string) *MockProvider {
	return &MockProvider{steps: []MockStep{{Text: text, PromptTokens: -1, CompletionTokens: -1}}}
}

// Name returns the provider identifier.
func (p *MockProvider) Name() ProviderName {
	return ProviderMock
}

// IsAvailable returns true as mock is always available.
func (p *MockProvider) IsAvailable() bool {
	return true
}

// Priority returns the provider priority.
func (p *MockProvider) Priority() int {
	return PriorityMock
}

// Complete implements Provider.
func (p *MockProvider) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err //nolint:wrapcheck // context error passed through
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)

	if len(p.steps) == 0 {
		return Response{}, apperrors.ErrEmptyResponse
	}

	idx := p.calls
	if idx >= len(p.steps) {
		idx = len(p.steps) - 1
	}

	p.calls++

	step := p.steps[idx]
	if step.Err != nil {
		return Response{}, step.Err
	}

	resp := Response{
		Text:             step.Text,
		Model:            string(ProviderMock),
		PromptTokens:     step.PromptTokens,
		CompletionTokens: step.CompletionTokens,
	}

	if resp.PromptTokens < 0 {
		resp.PromptTokens = (len(req.System) + len(req.User)) / mockCharsPerToken
	}

	if resp.CompletionTokens < 0 {
		resp.CompletionTokens = len(step.Text) / mockCharsPerToken
	}

	return resp, nil
}

// Requests returns a copy of the requests received so far.
func (p *MockProvider) Requests() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Request(nil), p.requests...)
}

// Calls returns how many requests were answered or failed.
func (p *MockProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.calls
}

var _ Provider = (*MockProvider)(nil)
