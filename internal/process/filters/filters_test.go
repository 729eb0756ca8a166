package filters

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/event-dedup/internal/core/domain"
)

func TestFilterer_FilterReason(t *testing.T) {
	f := New(0, []string{"Webinar", " ", "MLM"})

	tests := []struct {
		name       string
		record     domain.EventRecord
		filtered   bool
		wantReason string
	}{
		{name: "ordinary listing", record: domain.EventRecord{Title: "Jazz Night", Organizer: "Blue Note", Description: "Live trio."}, filtered: false},
		{name: "short title", record: domain.EventRecord{Title: " Hi "}, filtered: true, wantReason: ReasonMinLength},
		{name: "short title counts runes", record: domain.EventRecord{Title: "Café"}, filtered: false},
		{name: "emoji title", record: domain.EventRecord{Title: "🎉🎉🎉🎉"}, filtered: true, wantReason: ReasonEmojiOnly},
		{name: "placeholder", record: domain.EventRecord{Title: "  Test   Event "}, filtered: true, wantReason: ReasonPlaceholder},
		{name: "sponsored", record: domain.EventRecord{Title: "Sponsored: Free Concert"}, filtered: true, wantReason: ReasonAds},
		{name: "deny keyword in title", record: domain.EventRecord{Title: "Crypto WEBINAR series"}, filtered: true, wantReason: ReasonDeny},
		{name: "deny keyword in organizer", record: domain.EventRecord{Title: "Wellness Expo", Organizer: "Best MLM Group"}, filtered: true, wantReason: ReasonDeny},
		{name: "boilerplate description", record: domain.EventRecord{Title: "Open Mic", Description: "Buy tickets\nFollow us"}, filtered: true, wantReason: ReasonBoilerplate},
		{name: "empty description is fine", record: domain.EventRecord{Title: "Open Mic"}, filtered: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, reason := f.FilterReason(tt.record)

			assert.Equal(t, tt.filtered, filtered)
			assert.Equal(t, tt.wantReason, reason)
			assert.Equal(t, tt.filtered, f.IsFiltered(tt.record))
		})
	}
}

func TestFilterer_Apply(t *testing.T) {
	logger := zerolog.Nop()
	f := New(DefaultMinTitleLength, nil)

	records := []domain.EventRecord{
		{ID: "1", Title: "Jazz Night"},
		{ID: "2", Title: "TBA"},
		{ID: "3", Title: "Poetry Slam"},
		{ID: "4", Title: "🎶🎶🎶🎶"},
	}

	kept, rejected := f.Apply(records, &logger)

	assert.Equal(t, []string{"1", "3"}, domain.IDs(kept))
	assert.Len(t, rejected, 2)
	assert.Equal(t, "2", rejected[0].Record.ID)
	assert.Equal(t, ReasonMinLength, rejected[0].Reason)
	assert.Equal(t, ReasonEmojiOnly, rejected[1].Reason)
	assert.Len(t, records, 4, "input is not modified")
}
