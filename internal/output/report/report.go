// Package report renders dedup plans for people (colored text) and machines (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	"github.com/lueurxax/event-dedup/internal/core/llm"
	"github.com/lueurxax/event-dedup/internal/process/pipeline"
	db "github.com/lueurxax/event-dedup/internal/storage"
)

// Formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const timeLayout = "2006-01-02 15:04"

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	keepColor   = color.New(color.FgGreen)
	removeColor = color.New(color.FgRed)
	warnColor   = color.New(color.FgYellow)
	dimColor    = color.New(color.FgHiBlack)
)

// RecordView is the JSON shape of a record inside a group.
type RecordView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Organizer string `json:"organizer,omitempty"`
	StartDate string `json:"start_date"`
	Price     string `json:"price,omitempty"`
	Source    string `json:"source"`
}

// GroupView is the JSON shape of a duplicate group.
type GroupView struct {
	Day        string       `json:"day"`
	Method     string       `json:"method"`
	Confidence string       `json:"confidence"`
	Reason     string       `json:"reason"`
	Keep       *RecordView  `json:"keep,omitempty"`
	Remove     []RecordView `json:"remove"`
}

// View is the JSON document for a run.
type View struct {
	RunID           string                `json:"run_id"`
	DryRun          bool                  `json:"dry_run"`
	StartedAt       string                `json:"started_at"`
	FinishedAt      string                `json:"finished_at"`
	Loaded          int                   `json:"loaded"`
	Strategy        string                `json:"strategy"`
	RuleRemovals    int                   `json:"rule_removals"`
	AIEnabled       bool                  `json:"ai_enabled"`
	AISuccess       bool                  `json:"ai_success"`
	AIError         string                `json:"ai_error,omitempty"`
	AIFiltered      int                   `json:"ai_filtered"`
	RemoveIDs       []string              `json:"remove_ids"`
	Groups          []GroupView           `json:"groups"`
	TokensUsed      int                   `json:"tokens_used"`
	Errors          []string              `json:"errors"`
	Warnings        []string              `json:"warnings,omitempty"`
	DaysProcessed   int                   `json:"days_processed"`
	DuplicatesFound int                   `json:"duplicates_found"`
	Applied         *pipeline.ApplyResult `json:"applied,omitempty"`
}

func recordView(r domain.EventRecord) RecordView {
	return RecordView{
		ID:        r.ID,
		Title:     r.Title,
		Organizer: r.Organizer,
		StartDate: r.StartDate.Format(timeLayout),
		Price:     r.Price,
		Source:    string(r.Source),
	}
}

func groupViews(groups []domain.DuplicateGroup) []GroupView {
	out := make([]GroupView, 0, len(groups))

	for _, g := range groups {
		v := GroupView{
			Day:        g.Day,
			Method:     string(g.Method),
			Confidence: string(g.Confidence),
			Reason:     g.Reason,
			Remove:     make([]RecordView, 0, len(g.Remove)),
		}

		if g.Keep != nil {
			keep := recordView(*g.Keep)
			v.Keep = &keep
		}

		for _, r := range g.Remove {
			v.Remove = append(v.Remove, recordView(r))
		}

		out = append(out, v)
	}

	return out
}

// NewView flattens a report. applied is nil for a dry run.
func NewView(r *pipeline.Report, applied *pipeline.ApplyResult) View {
	return View{
		RunID:           r.RunID,
		DryRun:          applied == nil,
		StartedAt:       r.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		FinishedAt:      r.FinishedAt.Format("2006-01-02T15:04:05Z07:00"),
		Loaded:          r.Loaded,
		Strategy:        r.Rules.Strategy,
		RuleRemovals:    len(r.Rules.RemoveIDs),
		AIEnabled:       r.AI.Enabled,
		AISuccess:       r.AI.Success,
		AIError:         r.AI.Error,
		AIFiltered:      r.AI.Filtered,
		RemoveIDs:       nonNil(r.RemoveIDs),
		Groups:          groupViews(r.Groups),
		TokensUsed:      r.TokensUsed,
		Errors:          nonNil(r.Errors),
		Warnings:        r.Warnings,
		DaysProcessed:   r.DaysProcessed,
		DuplicatesFound: r.DuplicatesFound,
		Applied:         applied,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

// Write renders a run in the given format.
func Write(w io.Writer, format string, r *pipeline.Report, applied *pipeline.ApplyResult) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, NewView(r, applied))
	case FormatText, "":
		return WriteText(w, r, applied)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return nil
}

// WriteText prints the plan group by group, then the summary.
func WriteText(w io.Writer, r *pipeline.Report, applied *pipeline.ApplyResult) error {
	p := &printer{w: w}

	if applied == nil {
		p.line(warnColor.Sprint("DRY RUN - nothing will be deleted"))
		p.line("")
	}

	p.line(headerColor.Sprintf("=== Dedup run %s ===", r.RunID))
	p.line(fmt.Sprintf("Loaded %d events", r.Loaded))
	p.line("")

	p.line(headerColor.Sprintf("Rule pass (%s): %d groups", r.Rules.Strategy, len(r.Rules.Groups)))
	p.groups(r.Rules.Groups)

	switch {
	case !r.AI.Enabled:
		p.line(dimColor.Sprint("AI pass: disabled"))
	case r.AI.Error != "" && len(r.AI.Days) == 0:
		p.line(removeColor.Sprintf("AI pass failed: %s", r.AI.Error))
	default:
		p.line(headerColor.Sprintf("AI pass: %d days, %d groups, %d filtered", len(r.AI.Days), len(r.AI.Groups()), r.AI.Filtered))
		p.groups(r.AI.Groups())
	}

	p.line("")
	p.line(headerColor.Sprint("Summary"))
	p.line(fmt.Sprintf("  Duplicates found: %d", r.DuplicatesFound))
	p.line(fmt.Sprintf("  Days processed:   %d", r.DaysProcessed))
	p.line(fmt.Sprintf("  Tokens used:      %d", r.TokensUsed))

	if len(r.Errors) > 0 {
		p.line(removeColor.Sprintf("  Errors: %d", len(r.Errors)))

		for _, e := range r.Errors {
			p.line("    - " + e)
		}
	}

	if len(r.Warnings) > 0 {
		p.line(warnColor.Sprintf("  Warnings: %d", len(r.Warnings)))

		for _, wn := range r.Warnings {
			p.line("    - " + wn)
		}
	}

	if applied != nil {
		p.line(keepColor.Sprintf("  Deleted %d of %d in %d batches, %d events remain",
			applied.Deleted, applied.Requested, applied.Batches, applied.Remaining))
	}

	return p.err
}

// WriteAnalysis prints one day's graded groups, highest confidence first.
func WriteAnalysis(w io.Writer, format, day string, phase pipeline.RulePhase) error {
	groups := append([]domain.DuplicateGroup(nil), phase.Groups...)
	sort.SliceStable(groups, func(i, j int) bool {
		return confidenceRank(groups[i].Confidence) < confidenceRank(groups[j].Confidence)
	})

	if format == FormatJSON {
		return writeJSON(w, struct {
			Day      string      `json:"day"`
			Strategy string      `json:"strategy"`
			Groups   []GroupView `json:"groups"`
		}{day, phase.Strategy, groupViews(groups)})
	}

	p := &printer{w: w}
	p.line(headerColor.Sprintf("=== %s analysis for %s: %d groups ===", phase.Strategy, day, len(groups)))
	p.groups(groups)

	return p.err
}

// BudgetView is today's token count against the daily limit. A zero limit means none.
type BudgetView struct {
	DailyTokens int64   `json:"daily_tokens"`
	DailyLimit  int64   `json:"daily_limit"`
	Percentage  float64 `json:"percentage"`
}

// UsageView is the usage command's document: persisted usage for a day plus the live
// provider and budget state.
type UsageView struct {
	Usage     *db.LLMUsageSummary  `json:"usage"`
	Providers []llm.ProviderStatus `json:"providers"`
	Budget    BudgetView           `json:"budget"`
}

// WriteUsage prints a day's persisted token usage, provider health and today's budget.
func WriteUsage(w io.Writer, format string, v UsageView) error {
	if format == FormatJSON {
		return writeJSON(w, v)
	}

	s := v.Usage

	p := &printer{w: w}
	p.line(headerColor.Sprintf("=== LLM usage for %s ===", s.Date))
	p.line(fmt.Sprintf("  Requests:   %d", s.TotalRequests))
	p.line(fmt.Sprintf("  Tokens:     %d prompt / %d completion", s.TotalPromptTokens, s.TotalCompletionTokens))
	p.line(fmt.Sprintf("  Cost:       $%.4f", s.TotalCostUSD))

	for _, section := range []struct {
		title  string
		totals []db.UsageTotals
	}{{"By provider", s.Providers()}, {"By task", s.Tasks()}} {
		if len(section.totals) == 0 {
			continue
		}

		p.line("")
		p.line(warnColor.Sprint(section.title + ":"))

		for _, t := range section.totals {
			p.line(fmt.Sprintf("  %-14s %6d req  %8d tok  $%.4f", t.Name, t.RequestCount, t.PromptTokens+t.CompletionTokens, t.CostUSD))
		}
	}

	p.line("")
	p.line(warnColor.Sprint("Providers:"))

	if len(v.Providers) == 0 {
		p.line(dimColor.Sprint("  none configured"))
	}

	for _, ps := range v.Providers {
		available := keepColor.Sprint("available")
		if !ps.Available {
			available = removeColor.Sprint("unavailable")
		}

		circuit := keepColor.Sprint("circuit closed")
		if !ps.CircuitBreakerOK {
			circuit = removeColor.Sprint("circuit open")
		}

		p.line(fmt.Sprintf("  %-14s priority %-4d %s  %s", ps.Name, ps.Priority, available, circuit))
	}

	p.line("")

	if v.Budget.DailyLimit > 0 {
		budgetColor := keepColor
		if v.Budget.Percentage >= llm.BudgetThresholdWarning {
			budgetColor = warnColor
		}

		p.line(budgetColor.Sprintf("Budget today: %d / %d tokens (%.1f%%)", v.Budget.DailyTokens, v.Budget.DailyLimit, v.Budget.Percentage*100))
	} else {
		p.line(fmt.Sprintf("Budget today: %d tokens (no limit)", v.Budget.DailyTokens))
	}

	return p.err
}

func confidenceRank(c domain.Confidence) int {
	switch c {
	case domain.ConfidenceHigh:
		return 0
	case domain.ConfidenceMedium:
		return 1
	default:
		return 2
	}
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(s string) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintln(p.w, s)
}

func (p *printer) groups(groups []domain.DuplicateGroup) {
	for _, g := range groups {
		p.line(fmt.Sprintf("  %s [%s/%s] %s", g.Day, g.Method, g.Confidence, dimColor.Sprint(g.Reason)))

		if g.Keep != nil {
			p.line(keepColor.Sprint("    keep   ") + describe(*g.Keep))
		}

		for _, r := range g.Remove {
			p.line(removeColor.Sprint("    remove ") + describe(r))
		}
	}
}

func describe(r domain.EventRecord) string {
	parts := []string{r.ID, fmt.Sprintf("%q", r.Title)}

	if r.Organizer != "" {
		parts = append(parts, "by "+r.Organizer)
	}

	parts = append(parts, r.StartDate.Format(timeLayout))

	if r.Price != "" {
		parts = append(parts, r.Price)
	}

	parts = append(parts, "("+string(r.Source)+")")

	return strings.Join(parts, " ")
}
