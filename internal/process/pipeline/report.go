package pipeline

import (
	"time"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	"github.com/lueurxax/event-dedup/internal/process/confirm"
)

// RulePhase is the outcome of the rule-based sweep.
type RulePhase struct {
	Strategy  string                  `json:"strategy"`
	Buckets   int                     `json:"buckets"`
	Groups    []domain.DuplicateGroup `json:"groups,omitempty"`
	RemoveIDs []string                `json:"remove_ids,omitempty"`
}

// AIPhase is the outcome of the confirmation pass.
// Success is false when the pass could not run at all or was interrupted.
type AIPhase struct {
	Enabled    bool                `json:"enabled"`
	Success    bool                `json:"success"`
	Error      string              `json:"error,omitempty"`
	Days       []confirm.DayResult `json:"days,omitempty"`
	TokensUsed int                 `json:"tokens_used"`
	Filtered   int                 `json:"filtered"`
}

// RemoveIDs returns the IDs recommended by all days, in day order.
func (a AIPhase) RemoveIDs() []string {
	var ids []string

	for _, d := range a.Days {
		ids = append(ids, d.RemoveIDs...)
	}

	return ids
}

// Groups returns the groups of all days, in day order.
func (a AIPhase) Groups() []domain.DuplicateGroup {
	var groups []domain.DuplicateGroup

	for _, d := range a.Days {
		groups = append(groups, d.Groups...)
	}

	return groups
}

// Report is the full plan of one run. Nothing in it has been applied yet.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Loaded     int       `json:"loaded"`

	Rules RulePhase `json:"rules"`
	AI    AIPhase   `json:"ai"`

	RemoveIDs       []string                `json:"remove_ids"`
	Groups          []domain.DuplicateGroup `json:"groups"`
	TokensUsed      int                     `json:"tokens_used"`
	Errors          []string                `json:"errors"`
	Warnings        []string                `json:"warnings,omitempty"`
	DaysProcessed   int                     `json:"days_processed"`
	DuplicatesFound int                     `json:"duplicates_found"`
}

// finalize merges both phases into the summary fields. Rule removals come first.
func (r *Report) finalize() {
	r.RemoveIDs = append(append([]string{}, r.Rules.RemoveIDs...), r.AI.RemoveIDs()...)
	r.Groups = append(append([]domain.DuplicateGroup{}, r.Rules.Groups...), r.AI.Groups()...)
	r.TokensUsed = r.AI.TokensUsed
	r.DaysProcessed = len(r.AI.Days)
	r.DuplicatesFound = len(r.RemoveIDs)

	if r.Errors == nil {
		r.Errors = []string{}
	}

	if r.AI.Error != "" {
		r.Errors = append(r.Errors, r.AI.Error)
	}

	for _, d := range r.AI.Days {
		if d.Error != "" {
			r.Errors = append(r.Errors, d.Error)
		}

		if d.ParseError != "" {
			r.Warnings = append(r.Warnings, d.Day+": "+d.ParseError)
		}

		for _, w := range d.Warnings {
			r.Warnings = append(r.Warnings, d.Day+": "+w)
		}
	}
}
