package confirm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/event-dedup/internal/core/domain"
)

func TestIndexMap(t *testing.T) {
	m := NewIndexMap([]domain.EventRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	assert.Equal(t, 3, m.Len())

	for i, want := range []string{"a", "b", "c"} {
		id, ok := m.ID(i + 1)
		assert.True(t, ok)
		assert.Equal(t, want, id)

		idx, ok := m.Index(want)
		assert.True(t, ok)
		assert.Equal(t, i+1, idx)
	}

	for _, idx := range []int{0, -1, 4, 999} {
		_, ok := m.ID(idx)
		assert.False(t, ok, "index %d", idx)
	}

	_, ok := m.Index("missing")
	assert.False(t, ok)
}
