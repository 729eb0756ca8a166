package confirm

import "github.com/lueurxax/event-dedup/internal/core/domain"

// IndexMap is a per-day bijection between 1-based prompt indices and record IDs.
// It only lives for one confirmation call.
type IndexMap struct {
	ids   []string
	index map[string]int
}

// NewIndexMap numbers records from 1 in input order.
func NewIndexMap(records []domain.EventRecord) *IndexMap {
	m := &IndexMap{
		ids:   make([]string, len(records)),
		index: make(map[string]int, len(records)),
	}

	for i, r := range records {
		m.ids[i] = r.ID
		m.index[r.ID] = i + 1
	}

	return m
}

// ID returns the record ID for a prompt index.
func (m *IndexMap) ID(idx int) (string, bool) {
	if idx < 1 || idx > len(m.ids) {
		return "", false
	}

	return m.ids[idx-1], true
}

// Index returns the prompt index for a record ID.
func (m *IndexMap) Index(id string) (int, bool) {
	idx, ok := m.index[id]

	return idx, ok
}

// Len returns the number of mapped records.
func (m *IndexMap) Len() int {
	return len(m.ids)
}
