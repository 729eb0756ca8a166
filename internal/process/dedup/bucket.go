package dedup

import (
	"sort"
	"time"

	"github.com/lueurxax/event-dedup/internal/core/domain"
)

// DateKeyLayout is the layout of day bucket keys.
const DateKeyLayout = "2006-01-02"

// Buckets maps a local calendar date to the records starting that day, in input order.
type Buckets map[string][]domain.EventRecord

// DateKey returns the calendar date of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

// BucketByDate partitions records by the local calendar date of their start time.
// A nil location means UTC.
func BucketByDate(records []domain.EventRecord, loc *time.Location) Buckets {
	if loc == nil {
		loc = time.UTC
	}

	buckets := make(Buckets)

	for _, r := range records {
		key := DateKey(r.StartDate, loc)
		buckets[key] = append(buckets[key], r)
	}

	return buckets
}

// SortedKeys returns the bucket dates in ascending order.
func (b Buckets) SortedKeys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Comparable returns the dates that hold at least two records.
func (b Buckets) Comparable() []string {
	keys := make([]string, 0, len(b))

	for _, k := range b.SortedKeys() {
		if len(b[k]) >= 2 {
			keys = append(keys, k)
		}
	}

	return keys
}

// Size returns the total number of records across all buckets.
func (b Buckets) Size() int {
	total := 0
	for _, records := range b {
		total += len(records)
	}

	return total
}
