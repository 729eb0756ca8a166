package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventRecord_HasKnownPrice(t *testing.T) {
	tests := []struct {
		price string
		want  bool
	}{
		{price: "", want: false},
		{price: "   ", want: false},
		{price: PriceUnknown, want: false},
		{price: "$10", want: true},
		{price: "Free", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			assert.Equal(t, tt.want, EventRecord{Price: tt.price}.HasKnownPrice())
		})
	}
}

func TestEventRecord_DescriptionLengthCountsRunes(t *testing.T) {
	assert.Equal(t, 0, EventRecord{}.DescriptionLength())
	assert.Equal(t, 5, EventRecord{Description: "café!"}.DescriptionLength())
}

func TestEventRecord_CreatedAtOrZero(t *testing.T) {
	assert.True(t, EventRecord{}.CreatedAtOrZero().IsZero())

	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, ts, EventRecord{CreatedAt: &ts}.CreatedAtOrZero())
}

func TestWithout(t *testing.T) {
	records := []EventRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.Equal(t, []string{"a", "c"}, IDs(Without(records, []string{"b", "zzz"})))
	assert.Equal(t, records, Without(records, nil))
}

func TestConfidence_Emits(t *testing.T) {
	assert.True(t, ConfidenceHigh.Emits())
	assert.True(t, ConfidenceMedium.Emits())
	assert.False(t, ConfidenceLow.Emits())
}
