package db

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// LLMUsage is one day's usage row for a provider, model and task.
type LLMUsage struct {
	Date             string
	Provider         string
	Model            string
	Task             string
	PromptTokens     int64
	CompletionTokens int64
	RequestCount     int64
	CostUSD          float64
}

// LLMUsageSummary aggregates usage rows.
type LLMUsageSummary struct {
	Date                  string                 `json:"date"`
	TotalPromptTokens     int64                  `json:"total_prompt_tokens"`
	TotalCompletionTokens int64                  `json:"total_completion_tokens"`
	TotalRequests         int64                  `json:"total_requests"`
	TotalCostUSD          float64                `json:"total_cost_usd"`
	ByProvider            map[string]UsageTotals `json:"by_provider"`
	ByTask                map[string]UsageTotals `json:"by_task"`
}

// UsageTotals holds usage for one provider or task.
type UsageTotals struct {
	Name             string  `json:"name"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	RequestCount     int64   `json:"request_count"`
	CostUSD          float64 `json:"cost_usd"`
}

// NewLLMUsageSummary returns an empty summary for date.
func NewLLMUsageSummary(date string) *LLMUsageSummary {
	return &LLMUsageSummary{
		Date:       date,
		ByProvider: make(map[string]UsageTotals),
		ByTask:     make(map[string]UsageTotals),
	}
}

// Add folds one row into the summary.
func (s *LLMUsageSummary) Add(u LLMUsage) {
	s.TotalPromptTokens += u.PromptTokens
	s.TotalCompletionTokens += u.CompletionTokens
	s.TotalRequests += u.RequestCount
	s.TotalCostUSD += u.CostUSD

	s.ByProvider[u.Provider] = addTotals(s.ByProvider[u.Provider], u.Provider, u)
	s.ByTask[u.Task] = addTotals(s.ByTask[u.Task], u.Task, u)
}

// Providers returns provider totals sorted by name.
func (s *LLMUsageSummary) Providers() []UsageTotals {
	return sortedTotals(s.ByProvider)
}

// Tasks returns task totals sorted by name.
func (s *LLMUsageSummary) Tasks() []UsageTotals {
	return sortedTotals(s.ByTask)
}

func addTotals(t UsageTotals, name string, u LLMUsage) UsageTotals {
	t.Name = name
	t.PromptTokens += u.PromptTokens
	t.CompletionTokens += u.CompletionTokens
	t.RequestCount += u.RequestCount
	t.CostUSD += u.CostUSD

	return t
}

func sortedTotals(m map[string]UsageTotals) []UsageTotals {
	out := make([]UsageTotals, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// IncrementLLMUsage increments LLM usage counters for the current day.
func (db *DB) IncrementLLMUsage(ctx context.Context, provider, model, task string, promptTokens, completionTokens int, cost float64) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO llm_usage (date, provider, model, task, prompt_tokens, completion_tokens, request_count, cost_usd)
		VALUES (CURRENT_DATE, $1, $2, $3, $4, $5, 1, $6)
		ON CONFLICT (date, provider, model, task)
		DO UPDATE SET
			prompt_tokens = llm_usage.prompt_tokens + EXCLUDED.prompt_tokens,
			completion_tokens = llm_usage.completion_tokens + EXCLUDED.completion_tokens,
			request_count = llm_usage.request_count + 1,
			cost_usd = llm_usage.cost_usd + EXCLUDED.cost_usd,
			updated_at = now()
	`, provider, model, task, promptTokens, completionTokens, cost)
	if err != nil {
		return fmt.Errorf("increment llm usage: %w", err)
	}

	return nil
}

// GetDailyLLMUsage returns aggregated LLM usage for the given calendar day.
func (db *DB) GetDailyLLMUsage(ctx context.Context, day time.Time) (*LLMUsageSummary, error) {
	date := day.Format(DateLayout)

	rows, err := db.Pool.Query(ctx, `
		SELECT provider, model, task, prompt_tokens, completion_tokens, request_count, cost_usd::float8
		FROM llm_usage
		WHERE date = $1::date
		ORDER BY provider, model, task
	`, date)
	if err != nil {
		return nil, fmt.Errorf("get llm usage: %w", err)
	}
	defer rows.Close()

	summary := NewLLMUsageSummary(date)

	for rows.Next() {
		u := LLMUsage{Date: date}

		if err := rows.Scan(&u.Provider, &u.Model, &u.Task, &u.PromptTokens, &u.CompletionTokens, &u.RequestCount, &u.CostUSD); err != nil {
			return nil, fmt.Errorf("scan llm usage row: %w", err)
		}

		summary.Add(u)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate llm usage rows: %w", rows.Err())
	}

	return summary, nil
}
