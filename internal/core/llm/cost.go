package llm

import "strings"

// Cost per 1M tokens (in USD). Approximate list prices.
const (
	costGPT4OPromptPer1M     = 2.50
	costGPT4OCompletionPer1M = 10.00
	costGPT4OMiniPrompt      = 0.15
	costGPT4OMiniComplete    = 0.60

	costClaudeHaikuPrompt    = 1.00
	costClaudeHaikuComplete  = 5.00
	costClaudeSonnetPrompt   = 3.00
	costClaudeSonnetComplete = 15.00

	costGeminiFlashPrompt   = 0.10
	costGeminiFlashComplete = 0.40
	costGeminiProPrompt     = 3.50
	costGeminiProComplete   = 10.50

	// OpenRouter - varies by model, using defaults
	costOpenRouterDefaultPrompt   = 1.00
	costOpenRouterDefaultComplete = 2.00

	tokensPerMillion = 1000000.0
)

// estimateCost returns the estimated request cost in USD.
func estimateCost(provider, model string, promptTokens, completionTokens int) float64 {
	promptCost, completionCost := getCostRates(provider, model)

	promptUSD := float64(promptTokens) * promptCost / tokensPerMillion
	completionUSD := float64(completionTokens) * completionCost / tokensPerMillion

	return promptUSD + completionUSD
}

func getCostRates(provider, model string) (promptRate, completionRate float64) {
	modelLower := strings.ToLower(model)

	switch ProviderName(provider) {
	case ProviderOpenAI:
		return getOpenAICostRates(modelLower)
	case ProviderAnthropic:
		return getAnthropicCostRates(modelLower)
	case ProviderGoogle:
		return getGoogleCostRates(modelLower)
	case ProviderOpenRouter:
		return costOpenRouterDefaultPrompt, costOpenRouterDefaultComplete
	case ProviderMock:
		return 0, 0
	default:
		return costGPT4OMiniPrompt, costGPT4OMiniComplete
	}
}

func getOpenAICostRates(model string) (float64, float64) {
	switch {
	case strings.Contains(model, "gpt-4o-mini"):
		return costGPT4OMiniPrompt, costGPT4OMiniComplete
	case strings.Contains(model, "gpt-4"):
		return costGPT4OPromptPer1M, costGPT4OCompletionPer1M
	default:
		return costGPT4OMiniPrompt, costGPT4OMiniComplete
	}
}

func getAnthropicCostRates(model string) (float64, float64) {
	switch {
	case strings.Contains(model, "sonnet"), strings.Contains(model, "opus"):
		return costClaudeSonnetPrompt, costClaudeSonnetComplete
	default:
		return costClaudeHaikuPrompt, costClaudeHaikuComplete
	}
}

func getGoogleCostRates(model string) (float64, float64) {
	if strings.Contains(model, "pro") {
		return costGeminiProPrompt, costGeminiProComplete
	}

	return costGeminiFlashPrompt, costGeminiFlashComplete
}
