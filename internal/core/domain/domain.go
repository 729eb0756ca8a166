// Package domain holds the catalog types shared by the dedup pipeline.
package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// PriceUnknown is the sentinel sources use when they do not know the price.
const PriceUnknown = "Unknown"

// Source identifies the upstream feed an event came from.
type Source string

// EventRecord is a read-only snapshot of one catalog listing.
type EventRecord struct {
	ID          string
	Title       string
	Description string
	Organizer   string
	Location    string
	StartDate   time.Time
	Price       string
	Source      Source
	CreatedAt   *time.Time
}

// HasKnownPrice reports whether the record carries a real price.
func (e EventRecord) HasKnownPrice() bool {
	price := strings.TrimSpace(e.Price)

	return price != "" && price != PriceUnknown
}

// DescriptionLength returns the description length in characters; absent counts as zero.
func (e EventRecord) DescriptionLength() int {
	return utf8.RuneCountInString(e.Description)
}

// CreatedAtOrZero returns the ingestion time or the zero time when unknown.
func (e EventRecord) CreatedAtOrZero() time.Time {
	if e.CreatedAt == nil {
		return time.Time{}
	}

	return *e.CreatedAt
}

// IDs returns the identifiers of records in order.
func IDs(records []EventRecord) []string {
	ids := make([]string, 0, len(records))

	for _, r := range records {
		ids = append(ids, r.ID)
	}

	return ids
}

// Without returns records whose ID is not in exclude, preserving order.
func Without(records []EventRecord, exclude []string) []EventRecord {
	if len(exclude) == 0 {
		return records
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	kept := make([]EventRecord, 0, len(records))

	for _, r := range records {
		if _, ok := skip[r.ID]; ok {
			continue
		}

		kept = append(kept, r)
	}

	return kept
}

// EventFilter restricts the records a store lists. From is inclusive and Until exclusive;
// zero values mean no restriction.
type EventFilter struct {
	Sources []Source
	From    time.Time
	Until   time.Time
}
