package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
	"github.com/lueurxax/event-dedup/internal/platform/config"
)

const methodIncrementLLMUsage = "IncrementLLMUsage"

var errUpstream = errors.New("upstream 500")

type stubProvider struct {
	name      ProviderName
	priority  int
	available bool
	resp      Response
	err       error
	calls     int
	lastReq   Request
}

func (p *stubProvider) Name() ProviderName { return p.name }
func (p *stubProvider) IsAvailable() bool { return p.available }
func (p *stubProvider) Priority() int { return p.priority }

func (p *stubProvider) Complete(_ context.Context, req Request) (Response, error) {
	p.calls++
	p.lastReq = req

	if p.err != nil {
		return Response{}, p.err
	}

	return p.resp, nil
}

type mockUsageStore struct {
	mock.Mock
}

func (m *mockUsageStore) IncrementLLMUsage(ctx context.Context, provider, model, task string, promptTokens, completionTokens int, cost float64) error {
	args := m.Called(ctx, provider, model, task, promptTokens, completionTokens, cost)

	return args.Error(0) //nolint:wrapcheck // test double
}

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()

	return &logger
}

func TestRegistry_UsesHighestPriorityProvider(t *testing.T) {
	registry := NewRegistry(nopLogger())
	primary := &stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, resp: Response{Text: "primary"}}
	fallback := &stubProvider{name: ProviderAnthropic, priority: PriorityFallback, available: true, resp: Response{Text: "fallback"}}

	registry.Register(fallback, CircuitBreakerConfig{})
	registry.Register(primary, CircuitBreakerConfig{})

	resp, err := registry.Complete(context.Background(), Request{User: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
	assert.Equal(t, 0, fallback.calls)
	assert.Equal(t, TaskTypeComplete, primary.lastReq.Task)
}

func TestRegistry_FallsBackOnError(t *testing.T) {
	registry := NewRegistry(nopLogger())
	primary := &stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, err: errUpstream}
	fallback := &stubProvider{name: ProviderAnthropic, priority: PriorityFallback, available: true, resp: Response{Text: "ok", PromptTokens: 10, CompletionTokens: 2}}

	registry.Register(primary, CircuitBreakerConfig{})
	registry.Register(fallback, CircuitBreakerConfig{})

	resp, err := registry.Complete(context.Background(), Request{Task: TaskTypeDedupConfirm, User: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 12, resp.TotalTokens())
	assert.Equal(t, 1, primary.calls)
}

func TestRegistry_SkipsUnavailableProviders(t *testing.T) {
	registry := NewRegistry(nopLogger())
	registry.Register(&stubProvider{name: ProviderOpenAI, priority: PriorityPrimary}, CircuitBreakerConfig{})

	assert.False(t, registry.Available())

	_, err := registry.Complete(context.Background(), Request{User: "hi"})

	assert.ErrorIs(t, err, ErrNoProvidersAvailable)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
}

func TestRegistry_EmptyIsUnavailable(t *testing.T) {
	registry := NewRegistry(nopLogger())

	assert.False(t, registry.Available())
	assert.Equal(t, 0, registry.ProviderCount())

	_, err := registry.Complete(context.Background(), Request{User: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
}

func TestRegistry_AllProvidersFail(t *testing.T) {
	registry := NewRegistry(nopLogger())
	registry.Register(&stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, err: errUpstream}, CircuitBreakerConfig{})
	registry.Register(&stubProvider{name: ProviderGoogle, priority: PrioritySecondFallback, available: true, err: errUpstream}, CircuitBreakerConfig{})

	_, err := registry.Complete(context.Background(), Request{User: "hi"})

	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.ErrorIs(t, err, errUpstream)
}

func TestRegistry_CircuitBreakerSkipsFailingProvider(t *testing.T) {
	registry := NewRegistry(nopLogger())
	primary := &stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, err: errUpstream}
	fallback := &stubProvider{name: ProviderAnthropic, priority: PriorityFallback, available: true, resp: Response{Text: "ok"}}

	cbCfg := CircuitBreakerConfig{Threshold: 2, ResetAfter: time.Hour}
	registry.Register(primary, cbCfg)
	registry.Register(fallback, cbCfg)

	for range 4 {
		_, err := registry.Complete(context.Background(), Request{User: "hi"})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, primary.calls, "primary is skipped once its circuit opens")
	assert.Equal(t, 4, fallback.calls)

	statuses := registry.GetProviderStatuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, ProviderOpenAI, statuses[0].Name)
	assert.False(t, statuses[0].CircuitBreakerOK)
	assert.True(t, statuses[1].CircuitBreakerOK)
}

func TestRegistry_TaskChainSuppliesModel(t *testing.T) {
	cfg := config.LLMConfig{OpenAIModel: "gpt-4o-mini", AnthropicModel: "claude-haiku-4-5"}
	registry := NewRegistry(nopLogger(), WithTaskConfig(DefaultTaskConfig(cfg)))
	anthropicStub := &stubProvider{name: ProviderAnthropic, priority: PriorityFallback, available: true, resp: Response{Text: "ok"}}

	registry.Register(anthropicStub, CircuitBreakerConfig{})

	_, err := registry.Complete(context.Background(), Request{Task: TaskTypeDedupConfirm, User: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5", anthropicStub.lastReq.Model)
}

func TestRegistry_BudgetExceeded(t *testing.T) {
	budget := NewBudgetTracker(100, nopLogger())
	budget.RecordTokens(100)

	provider := &stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, resp: Response{Text: "ok"}}
	registry := NewRegistry(nopLogger(), WithBudgetTracker(budget))
	registry.Register(provider, CircuitBreakerConfig{})

	_, err := registry.Complete(context.Background(), Request{User: "hi"})

	assert.ErrorIs(t, err, apperrors.ErrBudgetExceeded)
	assert.Equal(t, 0, provider.calls)
}

func TestRegistry_RecordsUsage(t *testing.T) {
	store := &mockUsageStore{}
	store.On(methodIncrementLLMUsage, mock.Anything, "openai", "gpt-4o-mini", "dedup_confirm", 120, 30, mock.AnythingOfType("float64")).Return(nil).Once()

	budget := NewBudgetTracker(0, nopLogger())
	registry := NewRegistry(nopLogger(),
		WithBudgetTracker(budget),
		WithUsageRecorder(NewUsageRecorder(budget, store, nopLogger())),
	)
	registry.Register(&stubProvider{
		name:      ProviderOpenAI,
		priority:  PriorityPrimary,
		available: true,
		resp:      Response{Text: "ok", Model: "gpt-4o-mini", PromptTokens: 120, CompletionTokens: 30},
	}, CircuitBreakerConfig{})

	_, err := registry.Complete(context.Background(), Request{Task: TaskTypeDedupConfirm, User: "hi"})
	require.NoError(t, err)

	store.AssertExpectations(t)

	tokens, limit, _ := registry.GetBudgetStatus()
	assert.Equal(t, int64(150), tokens)
	assert.Equal(t, int64(0), limit)
}

func TestRegistry_RestoreBudget(t *testing.T) {
	provider := &stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true, resp: Response{Text: "ok"}}
	registry := NewRegistry(nopLogger(), WithBudgetTracker(NewBudgetTracker(500, nopLogger())))
	registry.Register(provider, CircuitBreakerConfig{})

	registry.RestoreBudget(500)

	tokens, limit, pct := registry.GetBudgetStatus()
	assert.Equal(t, int64(500), tokens)
	assert.Equal(t, int64(500), limit)
	assert.InDelta(t, 1.0, pct, 0.0001)

	_, err := registry.Complete(context.Background(), Request{User: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrBudgetExceeded)
	assert.Equal(t, 0, provider.calls)

	NewRegistry(nopLogger()).RestoreBudget(10)
}

func TestRegistry_CanceledContext(t *testing.T) {
	registry := NewRegistry(nopLogger())
	registry.Register(&stubProvider{name: ProviderOpenAI, priority: PriorityPrimary, available: true}, CircuitBreakerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := registry.Complete(ctx, Request{User: "hi"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_ProviderSelection(t *testing.T) {
	t.Run("no credentials", func(t *testing.T) {
		registry := New(context.Background(), config.LLMConfig{}, nil, nopLogger())

		assert.False(t, registry.Available())
	})

	t.Run("mock response", func(t *testing.T) {
		registry := New(context.Background(), config.LLMConfig{MockResponse: `{"duplicates":[]}`}, nil, nopLogger())

		require.True(t, registry.Available())

		resp, err := registry.Complete(context.Background(), Request{Task: TaskTypeDedupConfirm, User: "list"})
		require.NoError(t, err)
		assert.Equal(t, `{"duplicates":[]}`, resp.Text)
		assert.Positive(t, resp.CompletionTokens)
	})

	t.Run("openai and anthropic keys", func(t *testing.T) {
		registry := New(context.Background(), config.LLMConfig{OpenAIAPIKey: "sk-test", AnthropicAPIKey: "sk-ant-test"}, nil, nopLogger())

		statuses := registry.GetProviderStatuses()
		require.Len(t, statuses, 2)
		assert.Equal(t, ProviderOpenAI, statuses[0].Name)
		assert.Equal(t, ProviderAnthropic, statuses[1].Name)
	})
}
