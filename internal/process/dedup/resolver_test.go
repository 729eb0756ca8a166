package dedup

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/event-dedup/internal/core/domain"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestChooseToKeep(t *testing.T) {
	older := ptrTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := ptrTime(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name   string
		x, y   domain.EventRecord
		wantID string
	}{
		{
			name:   "known price beats longer description",
			x:      domain.EventRecord{ID: "x", Price: "$10", Description: "short"},
			y:      domain.EventRecord{ID: "y", Price: domain.PriceUnknown, Description: strings.Repeat("a", 500)},
			wantID: "x",
		},
		{
			name:   "empty price counts as unknown",
			x:      domain.EventRecord{ID: "x", Price: "  "},
			y:      domain.EventRecord{ID: "y", Price: "Free"},
			wantID: "y",
		},
		{
			name:   "longer description when prices tie",
			x:      domain.EventRecord{ID: "x", Price: "$5", Description: "abc"},
			y:      domain.EventRecord{ID: "y", Price: "$7", Description: "abcdef"},
			wantID: "y",
		},
		{
			name:   "description length counts runes",
			x:      domain.EventRecord{ID: "x", Description: "ééé"},
			y:      domain.EventRecord{ID: "y", Description: "abcd"},
			wantID: "y",
		},
		{
			name:   "more recent ingestion",
			x:      domain.EventRecord{ID: "x", CreatedAt: older},
			y:      domain.EventRecord{ID: "y", CreatedAt: newer},
			wantID: "y",
		},
		{
			name:   "missing created at loses",
			x:      domain.EventRecord{ID: "x"},
			y:      domain.EventRecord{ID: "y", CreatedAt: older},
			wantID: "y",
		},
		{
			name:   "full tie keeps first argument",
			x:      domain.EventRecord{ID: "x", CreatedAt: older},
			y:      domain.EventRecord{ID: "y", CreatedAt: older},
			wantID: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantID, ChooseToKeep(tt.x, tt.y).ID)
		})
	}
}

func TestChooseToKeep_PriceSymmetry(t *testing.T) {
	priced := domain.EventRecord{ID: "priced", Price: "$12"}
	unpriced := domain.EventRecord{ID: "unpriced", Price: domain.PriceUnknown, Description: "much longer description"}

	assert.Equal(t, "priced", ChooseToKeep(priced, unpriced).ID)
	assert.Equal(t, "priced", ChooseToKeep(unpriced, priced).ID)
}

func TestFold_ThreeWayCluster(t *testing.T) {
	cluster := []domain.EventRecord{
		{ID: "unknown", Price: domain.PriceUnknown, Description: strings.Repeat("a", 50)},
		{ID: "best", Price: "$10", Description: strings.Repeat("b", 200)},
		{ID: "short", Price: "$10", Description: strings.Repeat("c", 80)},
	}

	keep, remove := Fold(cluster)

	assert.Equal(t, "best", keep.ID)
	require.Len(t, remove, 2)
	assert.ElementsMatch(t, []string{"unknown", "short"}, domain.IDs(remove))
}

func TestFold_SurvivorIndependentOfOrderWhenNoTies(t *testing.T) {
	a := domain.EventRecord{ID: "a", Price: domain.PriceUnknown, Description: strings.Repeat("a", 50)}
	b := domain.EventRecord{ID: "b", Price: "$10", Description: strings.Repeat("b", 200)}
	c := domain.EventRecord{ID: "c", Price: "$10", Description: strings.Repeat("c", 80)}

	for _, cluster := range [][]domain.EventRecord{{a, b, c}, {c, b, a}, {b, a, c}, {c, a, b}} {
		keep, remove := Fold(cluster)
		assert.Equal(t, "b", keep.ID)
		assert.Len(t, remove, 2)
	}
}

func TestFold_ExactTiesResolveToEarliest(t *testing.T) {
	cluster := []domain.EventRecord{{ID: "first"}, {ID: "second"}, {ID: "third"}}

	keep, remove := Fold(cluster)

	assert.Equal(t, "first", keep.ID)
	assert.Equal(t, []string{"second", "third"}, domain.IDs(remove))
}

func TestFold_Degenerate(t *testing.T) {
	keep, remove := Fold(nil)
	assert.Empty(t, keep.ID)
	assert.Empty(t, remove)

	keep, remove = Fold([]domain.EventRecord{{ID: "only"}})
	assert.Equal(t, "only", keep.ID)
	assert.Empty(t, remove)
}
