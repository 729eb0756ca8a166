package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/event-dedup/internal/core/domain"
)

var testStart = time.Date(2025, 5, 10, 20, 0, 0, 0, time.UTC)

func event(id, title, organizer string, source domain.Source) domain.EventRecord {
	return domain.EventRecord{
		ID:        id,
		Title:     title,
		Organizer: organizer,
		Source:    source,
		StartDate: testStart,
		Price:     domain.PriceUnknown,
	}
}

func TestStrictStrategy_Match(t *testing.T) {
	strict := NewStrictStrategy(0)

	tests := []struct {
		name string
		a, b domain.EventRecord
		want bool
	}{
		{
			name: "same organizer time and title",
			a:    event("1", "Jazz Night", "Blue Note", "venue"),
			b:    event("2", "jazz night", "BLUE NOTE", "aggregator"),
			want: true,
		},
		{
			name: "one shared word is enough",
			a:    event("1", "Jazz Brunch", "Blue Note", "venue"),
			b:    event("2", "Sunday Jazz", "Blue Note", "venue"),
			want: true,
		},
		{
			name: "different organizer",
			a:    event("1", "Jazz Night", "Blue Note", "venue"),
			b:    event("2", "Jazz Night", "Village Vanguard", "venue"),
			want: false,
		},
		{
			name: "only stop words shared",
			a:    event("1", "The Night Of", "Blue Note", "venue"),
			b:    event("2", "The Day Of", "Blue Note", "venue"),
			want: false,
		},
		{
			name: "both organizers absent",
			a:    event("1", "Jazz Night", "", "venue"),
			b:    event("2", "Jazz Night", "", "aggregator"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := strict.Match(tt.a, tt.b)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrictStrategy_DifferentMinute(t *testing.T) {
	a := event("1", "Jazz Night", "Blue Note", "venue")
	b := event("2", "Jazz Night", "Blue Note", "venue")

	b.StartDate = testStart.Add(30 * time.Second)
	_, ok := NewStrictStrategy(0).Match(a, b)
	assert.True(t, ok, "seconds within the same minute match")

	b.StartDate = testStart.Add(time.Minute)
	_, ok = NewStrictStrategy(0).Match(a, b)
	assert.False(t, ok)
}

func TestStrictStrategy_Symmetric(t *testing.T) {
	records := []domain.EventRecord{
		event("1", "Jazz Night", "Blue Note", "venue"),
		event("2", "Late Jazz Session", "blue note", "aggregator"),
		event("3", "Comedy Hour", "Blue Note", "venue"),
		event("4", "Jazz Night", "Other Place", "venue"),
		event("5", "Night Market", "", "aggregator"),
	}

	strict := NewStrictStrategy(0)

	for _, a := range records {
		for _, b := range records {
			_, ab := strict.Match(a, b)
			_, ba := strict.Match(b, a)
			assert.Equal(t, ab, ba, "%s vs %s", a.ID, b.ID)
		}
	}
}

// Scenario: identical titles from two sources under one organizer.
func TestStrictStrategy_CrossSourceExactTitle(t *testing.T) {
	priced := event("priced", "Summer Jazz Night", "Blue Note NYC", "venue")
	priced.Price = "$25"
	unpriced := event("unpriced", "SUMMER JAZZ NIGHT", "blue note nyc", "aggregator")

	match, ok := NewStrictStrategy(0).Match(unpriced, priced)

	assert.True(t, ok)
	assert.Equal(t, domain.ConfidenceHigh, match.Confidence)
	assert.Contains(t, match.Reason, "jazz")
	assert.Equal(t, "priced", ChooseToKeep(unpriced, priced).ID)
	assert.Equal(t, "priced", ChooseToKeep(priced, unpriced).ID)
}

func TestGradedStrategy_Classify(t *testing.T) {
	graded := NewGradedStrategy(0)
	two := WordSet{"jazz": {}, "night": {}}
	one := WordSet{"jazz": {}}

	tests := []struct {
		name string
		sig  Signals
		want domain.Confidence
	}{
		{name: "exact title same organizer", sig: Signals{ExactTitle: true, SameOrganizer: true, SharedWords: two}, want: domain.ConfidenceHigh},
		{name: "exact title cross source", sig: Signals{ExactTitle: true, CrossSource: true, SharedWords: two}, want: domain.ConfidenceHigh},
		{name: "significant overlap same organizer cross source", sig: Signals{SameOrganizer: true, CrossSource: true, SharedWords: two}, want: domain.ConfidenceHigh},
		{name: "significant overlap same organizer", sig: Signals{SameOrganizer: true, SharedWords: two}, want: domain.ConfidenceMedium},
		{name: "significant overlap cross source", sig: Signals{CrossSource: true, SharedWords: two}, want: domain.ConfidenceMedium},
		{name: "one shared word is not significant", sig: Signals{SameOrganizer: true, CrossSource: true, SharedWords: one}, want: domain.ConfidenceLow},
		{name: "exact title alone", sig: Signals{ExactTitle: true, SharedWords: two}, want: domain.ConfidenceLow},
		{name: "nothing", sig: Signals{}, want: domain.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, graded.Classify(tt.sig))
		})
	}
}

// Scenario: different organizers, two shared words, different sources.
func TestGradedStrategy_MediumOnSharedWordsAcrossSources(t *testing.T) {
	a := event("a", "Jazz Night Downtown", "Blue Note", "venue")
	b := event("b", "Friday Jazz Night", "City Events Co", "aggregator")

	match, ok := NewGradedStrategy(0).Match(a, b)

	assert.True(t, ok)
	assert.Equal(t, domain.ConfidenceMedium, match.Confidence)
	assert.Contains(t, match.Reason, "cross-source")
	assert.Contains(t, match.Reason, "jazz, night")
}

func TestGradedStrategy_IgnoresStartTime(t *testing.T) {
	a := event("a", "Jazz Night", "Blue Note", "venue")
	b := event("b", "Jazz Night", "Blue Note", "venue")
	b.StartDate = testStart.Add(3 * time.Hour)

	match, ok := NewGradedStrategy(0).Match(a, b)

	assert.True(t, ok)
	assert.Equal(t, domain.ConfidenceHigh, match.Confidence)
}

func TestGradedStrategy_LowIsNotEmitted(t *testing.T) {
	a := event("a", "Jazz Night", "Blue Note", "venue")
	b := event("b", "Jazz Brunch", "Other Club", "venue")

	_, ok := NewGradedStrategy(0).Match(a, b)

	assert.False(t, ok)
}

func TestStrategyThresholdsAreIndependent(t *testing.T) {
	assert.Equal(t, DefaultStrictMinSharedWords, NewStrictStrategy(0).MinSharedWords)
	assert.Equal(t, DefaultGradedMinSharedWords, NewGradedStrategy(-1).MinSharedWords)
	assert.Equal(t, 3, NewStrictStrategy(3).MinSharedWords)
	assert.Equal(t, domain.MethodRuleStrict, NewStrictStrategy(0).Method())
	assert.Equal(t, domain.MethodRuleGraded, NewGradedStrategy(0).Method())
}
