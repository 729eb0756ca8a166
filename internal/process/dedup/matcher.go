package dedup

import (
	"fmt"
	"strings"
	"time"

	"github.com/lueurxax/event-dedup/internal/core/domain"
)

// Default shared-word thresholds. They are tuned independently per strategy.
const (
	DefaultStrictMinSharedWords = 1
	DefaultGradedMinSharedWords = 2
)

// Signals are the pairwise predicates every strategy draws on.
type Signals struct {
	SameOrganizer bool
	SameTime      bool
	ExactTitle    bool
	CrossSource   bool
	SharedWords   WordSet
}

// Compare evaluates the pairwise predicates for two records.
func Compare(a, b domain.EventRecord) Signals {
	return Signals{
		SameOrganizer: NormalizeOrganizer(a.Organizer) == NormalizeOrganizer(b.Organizer),
		SameTime:      sameMinute(a.StartDate, b.StartDate),
		ExactTitle:    NormalizeTitle(a.Title) == NormalizeTitle(b.Title),
		CrossSource:   a.Source != b.Source,
		SharedWords:   SignificantWords(a.Title).Intersect(SignificantWords(b.Title)),
	}
}

func sameMinute(a, b time.Time) bool {
	return a.Truncate(time.Minute).Equal(b.Truncate(time.Minute))
}

// Match is a positive strategy decision.
type Match struct {
	Confidence domain.Confidence
	Reason     string
}

// Strategy decides whether two records from the same day are duplicates.
type Strategy interface {
	Name() string
	Method() domain.Method
	Match(a, b domain.EventRecord) (Match, bool)
}

// StrictStrategy is the catalog-wide sweep predicate: same organizer, same minute and
// at least MinSharedWords significant title words in common. It has no confidence tiers.
type StrictStrategy struct {
	MinSharedWords int
}

// NewStrictStrategy returns a strict strategy; a non-positive threshold selects the default.
func NewStrictStrategy(minSharedWords int) StrictStrategy {
	if minSharedWords <= 0 {
		minSharedWords = DefaultStrictMinSharedWords
	}

	return StrictStrategy{MinSharedWords: minSharedWords}
}

func (s StrictStrategy) Name() string { return "strict" }

func (s StrictStrategy) Method() domain.Method { return domain.MethodRuleStrict }

func (s StrictStrategy) Match(a, b domain.EventRecord) (Match, bool) {
	sig := Compare(a, b)

	if !sig.SameOrganizer || !sig.SameTime || len(sig.SharedWords) < s.MinSharedWords {
		return Match{}, false
	}

	return Match{
		Confidence: domain.ConfidenceHigh,
		Reason:     fmt.Sprintf("same organizer and start time, shared words: %s", strings.Join(sig.SharedWords.Sorted(), ", ")),
	}, true
}

// GradedStrategy is the ad-hoc day analysis predicate. It ignores start time and scores
// title overlap, organizer and source diversity into a confidence tier.
type GradedStrategy struct {
	MinSharedWords int
}

// NewGradedStrategy returns a graded strategy; a non-positive threshold selects the default.
func NewGradedStrategy(minSharedWords int) GradedStrategy {
	if minSharedWords <= 0 {
		minSharedWords = DefaultGradedMinSharedWords
	}

	return GradedStrategy{MinSharedWords: minSharedWords}
}

func (s GradedStrategy) Name() string { return "graded" }

func (s GradedStrategy) Method() domain.Method { return domain.MethodRuleGraded }

// Classify returns the confidence tier for a pair without filtering low matches.
func (s GradedStrategy) Classify(sig Signals) domain.Confidence {
	significant := len(sig.SharedWords) >= s.MinSharedWords

	switch {
	case sig.ExactTitle && (sig.SameOrganizer || sig.CrossSource):
		return domain.ConfidenceHigh
	case significant && sig.SameOrganizer && sig.CrossSource:
		return domain.ConfidenceHigh
	case significant && (sig.SameOrganizer || sig.CrossSource):
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func (s GradedStrategy) Match(a, b domain.EventRecord) (Match, bool) {
	sig := Compare(a, b)

	confidence := s.Classify(sig)
	if !confidence.Emits() {
		return Match{}, false
	}

	return Match{Confidence: confidence, Reason: describeSignals(sig)}, true
}

func describeSignals(sig Signals) string {
	parts := make([]string, 0, 4)

	if sig.ExactTitle {
		parts = append(parts, "exact title")
	}

	if sig.SameOrganizer {
		parts = append(parts, "same organizer")
	}

	if sig.CrossSource {
		parts = append(parts, "cross-source")
	}

	if len(sig.SharedWords) > 0 {
		parts = append(parts, "shared words: "+strings.Join(sig.SharedWords.Sorted(), ", "))
	}

	return strings.Join(parts, "; ")
}

var (
	_ Strategy = StrictStrategy{}
	_ Strategy = GradedStrategy{}
)
