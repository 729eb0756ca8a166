package llm

import "github.com/lueurxax/event-dedup/internal/platform/config"

// TaskType identifies the type of LLM task.
type TaskType string

// Task type constants.
const (
	TaskTypeDedupConfirm TaskType = "dedup_confirm"
	TaskTypeComplete     TaskType = "complete"
)

// ProviderModel specifies a provider and model combination.
type ProviderModel struct {
	Provider ProviderName
	Model    string
}

// TaskProviderChain defines the provider/model fallback chain for a task.
type TaskProviderChain struct {
	Default   ProviderModel
	Fallbacks []ProviderModel
}

// GetProviderChain returns the full provider chain (default + fallbacks).
func (c TaskProviderChain) GetProviderChain() []ProviderModel {
	chain := make([]ProviderModel, 0, 1+len(c.Fallbacks))
	chain = append(chain, c.Default)
	chain = append(chain, c.Fallbacks...)

	return chain
}

// DefaultTaskConfig builds per-task chains from the configured models.
// Every task starts at OpenAI; the rest follow in registration priority.
func DefaultTaskConfig(cfg config.LLMConfig) map[TaskType]TaskProviderChain {
	confirm := TaskProviderChain{
		Default: ProviderModel{Provider: ProviderOpenAI, Model: cfg.OpenAIModel},
		Fallbacks: []ProviderModel{
			{Provider: ProviderAnthropic, Model: cfg.AnthropicModel},
			{Provider: ProviderGoogle, Model: cfg.GoogleModel},
			{Provider: ProviderOpenRouter, Model: cfg.OpenRouterModel},
		},
	}

	return map[TaskType]TaskProviderChain{
		TaskTypeDedupConfirm: confirm,
		TaskTypeComplete:     confirm,
	}
}
