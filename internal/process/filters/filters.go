// Package filters drops low-quality listings before they are sent for AI confirmation.
//
// Records are checked in this order, and the first failing check wins:
//   - title shorter than the minimum length
//   - title with no letters or digits
//   - placeholder titles such as "TBA"
//   - promotional or deny keywords in the title or organizer
//   - descriptions that are only call-to-action boilerplate
package filters

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/lueurxax/event-dedup/internal/core/domain"
	"github.com/lueurxax/event-dedup/internal/platform/observability"
)

const (
	DefaultMinTitleLength = 4

	ReasonMinLength   = "filter_min_length"
	ReasonEmojiOnly   = "filter_emoji_only"
	ReasonPlaceholder = "filter_placeholder"
	ReasonAds         = "filter_ads"
	ReasonDeny        = "filter_deny"
	ReasonBoilerplate = "filter_boilerplate"
)

var defaultAdsKeywords = []string{"#ad", "sponsored", "promoted", "advertisement"}

var placeholderTitles = map[string]bool{
	"tba":        true,
	"tbd":        true,
	"test":       true,
	"test event": true,
	"untitled":   true,
	"event":      true,
	"private":    true,
	"closed":     true,
	"cancelled":  true,
	"canceled":   true,
}

// Rejection records why a listing was excluded.
type Rejection struct {
	Record domain.EventRecord
	Reason string
}

// Filterer applies content filters to event records.
type Filterer struct {
	minTitleLength int
	adsKeywords    []string
	denyKeywords   []string
	caser          cases.Caser
}

// New creates a new Filterer. A non-positive minTitleLength selects the default.
func New(minTitleLength int, denyKeywords []string) *Filterer {
	if minTitleLength <= 0 {
		minTitleLength = DefaultMinTitleLength
	}

	caser := cases.Fold()

	deny := make([]string, 0, len(denyKeywords))

	for _, kw := range denyKeywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			deny = append(deny, caser.String(kw))
		}
	}

	ads := make([]string, 0, len(defaultAdsKeywords))
	for _, kw := range defaultAdsKeywords {
		ads = append(ads, caser.String(kw))
	}

	return &Filterer{
		minTitleLength: minTitleLength,
		adsKeywords:    ads,
		denyKeywords:   deny,
		caser:          caser,
	}
}

// FilterReason returns whether the record is filtered and the reason code.
func (f *Filterer) FilterReason(r domain.EventRecord) (bool, string) {
	title := strings.TrimSpace(r.Title)

	if utf8.RuneCountInString(title) < f.minTitleLength {
		return true, ReasonMinLength
	}

	if IsEmojiOnly(title) {
		return true, ReasonEmojiOnly
	}

	foldedTitle := f.caser.String(title)

	if placeholderTitles[strings.Join(strings.Fields(foldedTitle), " ")] {
		return true, ReasonPlaceholder
	}

	haystack := foldedTitle + "\n" + f.caser.String(r.Organizer)

	if containsAny(haystack, f.adsKeywords) {
		return true, ReasonAds
	}

	if containsAny(haystack, f.denyKeywords) {
		return true, ReasonDeny
	}

	if strings.TrimSpace(r.Description) != "" && IsBoilerplateOnly(r.Description) {
		return true, ReasonBoilerplate
	}

	return false, ""
}

// IsFiltered returns true if the record should be excluded.
func (f *Filterer) IsFiltered(r domain.EventRecord) bool {
	filtered, _ := f.FilterReason(r)

	return filtered
}

// Apply splits records into those that pass and those rejected, preserving order.
// It is pure apart from metrics and debug logging.
func (f *Filterer) Apply(records []domain.EventRecord, logger *zerolog.Logger) (kept []domain.EventRecord, rejected []Rejection) {
	kept = make([]domain.EventRecord, 0, len(records))

	for _, r := range records {
		filtered, reason := f.FilterReason(r)
		if !filtered {
			kept = append(kept, r)
			continue
		}

		rejected = append(rejected, Rejection{Record: r, Reason: reason})
		observability.FilteredEvents.WithLabelValues(reason).Inc()

		if logger != nil {
			logger.Debug().Str("event_id", r.ID).Str("reason", reason).Msg("event filtered")
		}
	}

	return kept, rejected
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}

	return false
}
