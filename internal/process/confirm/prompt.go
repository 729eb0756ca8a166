package confirm

import (
	"fmt"
	"strings"
	"time"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	"github.com/lueurxax/event-dedup/internal/platform/htmlutils"
)

const (
	// DefaultDescriptionMaxChars bounds each description in the prompt.
	DefaultDescriptionMaxChars = 300

	noDescription = "No description"
	unknownValue  = "Unknown"
	timeOfDay     = "3:04 PM"
)

const systemPromptBase = `You review one day of event listings from a local events catalog and find duplicates.

A duplicate is the same real-world event listed more than once. Examples:
- the same performer at the same venue listed under different titles
- the same event imported from different sources
- title variations of one event at the same time and venue

These are NOT duplicates:
- different events at the same venue whose start times are 2 or more hours apart
- similar events at different venues

For every set of duplicates, keep the best listing and remove the others. Prefer to remove:
1. a listing whose price is Unknown when another has a price
2. a listing with a shorter or less complete title or description
3. a listing from an aggregator source when another comes from the venue or organizer

Respond with JSON only, exactly in this shape:
{"duplicates": [{"remove": [<listing number>, ...], "reason": "<short explanation>"}]}
Use the listing numbers shown in brackets. If there are no duplicates respond with {"duplicates": []}.`

// SystemPrompt returns the fixed instruction, naming the known aggregator sources when there are any.
func SystemPrompt(aggregators []string) string {
	if len(aggregators) == 0 {
		return systemPromptBase
	}

	return systemPromptBase + "\n\nAggregator sources: " + strings.Join(aggregators, ", ") + "."
}

// FormatRecord renders one listing as a compact prompt line.
func FormatRecord(idx int, r domain.EventRecord, loc *time.Location, maxDescription int) string {
	if loc == nil {
		loc = time.UTC
	}

	return fmt.Sprintf("[%d] Title: %s | Description: %s | Organizer: %s | Location: %s | Time: %s | Price: %s | Source: %s",
		idx,
		oneLine(r.Title),
		describe(r.Description, maxDescription),
		orUnknown(r.Organizer),
		orUnknown(r.Location),
		r.StartDate.In(loc).Format(timeOfDay),
		orUnknown(r.Price),
		orUnknown(string(r.Source)),
	)
}

// UserPrompt lists a day's records numbered through m.
func UserPrompt(day string, records []domain.EventRecord, m *IndexMap, loc *time.Location, maxDescription int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Event listings for %s:\n\n", day)

	for _, r := range records {
		idx, _ := m.Index(r.ID)
		sb.WriteString(FormatRecord(idx, r, loc, maxDescription))
		sb.WriteByte('\n')
	}

	return sb.String()
}

func describe(description string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultDescriptionMaxChars
	}

	text := htmlutils.PlainText(description)
	if text == "" {
		return noDescription
	}

	return htmlutils.Truncate(text, maxChars)
}

func orUnknown(s string) string {
	s = oneLine(s)
	if s == "" {
		return unknownValue
	}

	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
