package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/event-dedup/internal/core/domain"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation(name)
	require.NoError(t, err)

	return loc
}

func TestBucketByDate_SplitsAroundLocalMidnight(t *testing.T) {
	loc := mustLocation(t, "America/New_York")

	late := domain.EventRecord{ID: "late", StartDate: time.Date(2025, 3, 14, 23, 59, 0, 0, loc)}
	early := domain.EventRecord{ID: "early", StartDate: time.Date(2025, 3, 15, 0, 1, 0, 0, loc)}

	buckets := BucketByDate([]domain.EventRecord{late, early}, loc)

	require.Len(t, buckets, 2)
	assert.Equal(t, []string{"late"}, domain.IDs(buckets["2025-03-14"]))
	assert.Equal(t, []string{"early"}, domain.IDs(buckets["2025-03-15"]))
}

func TestBucketByDate_UsesLocalNotUTCDate(t *testing.T) {
	loc := mustLocation(t, "America/New_York")

	// 02:00 UTC on the 15th is 22:00 on the 14th in New York.
	rec := domain.EventRecord{ID: "a", StartDate: time.Date(2025, 3, 15, 2, 0, 0, 0, time.UTC)}

	buckets := BucketByDate([]domain.EventRecord{rec}, loc)

	assert.Contains(t, buckets, "2025-03-14")
	assert.Equal(t, "2025-03-15", BucketByDate([]domain.EventRecord{rec}, nil).SortedKeys()[0])
}

func TestBucketByDate_IsPartition(t *testing.T) {
	base := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	var records []domain.EventRecord
	for i := range 10 {
		records = append(records, domain.EventRecord{
			ID:        string(rune('a' + i)),
			StartDate: base.Add(time.Duration(i*7) * time.Hour),
		})
	}

	buckets := BucketByDate(records, time.UTC)

	assert.Equal(t, len(records), buckets.Size())

	seen := make(map[string]int)

	for _, day := range buckets.SortedKeys() {
		for _, r := range buckets[day] {
			seen[r.ID]++
			assert.Equal(t, day, DateKey(r.StartDate, time.UTC))
		}
	}

	for _, r := range records {
		assert.Equal(t, 1, seen[r.ID], r.ID)
	}
}

func TestBuckets_Comparable(t *testing.T) {
	buckets := Buckets{
		"2025-01-03": {{ID: "a"}, {ID: "b"}},
		"2025-01-01": {{ID: "c"}},
		"2025-01-02": {{ID: "d"}, {ID: "e"}, {ID: "f"}},
	}

	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, buckets.SortedKeys())
	assert.Equal(t, []string{"2025-01-02", "2025-01-03"}, buckets.Comparable())
}
