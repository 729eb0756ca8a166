package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/event-dedup/internal/core/domain"
)

type mockDeleter struct {
	total    int
	batches  [][]string
	failAt   int
	countErr error
}

func (m *mockDeleter) DeleteEvents(_ context.Context, ids []string) (int64, error) {
	if m.failAt > 0 && len(m.batches)+1 == m.failAt {
		return 0, errors.New("deadlock detected")
	}

	m.batches = append(m.batches, append([]string(nil), ids...))
	m.total -= len(ids)

	return int64(len(ids)), nil
}

func (m *mockDeleter) CountEvents(_ context.Context, _ domain.EventFilter) (int, error) {
	return m.total, m.countErr
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%03d", i)
	}

	return ids
}

func TestApply_Batches(t *testing.T) {
	store := &mockDeleter{total: 500}

	result, err := Apply(context.Background(), store, makeIDs(120), 50, domain.EventFilter{}, nil)
	require.NoError(t, err)

	require.Len(t, store.batches, 3)
	assert.Len(t, store.batches[0], 50)
	assert.Len(t, store.batches[1], 50)
	assert.Len(t, store.batches[2], 20)
	assert.Equal(t, "id-119", store.batches[2][19])

	assert.Equal(t, ApplyResult{Requested: 120, Deleted: 120, Batches: 3, Remaining: 380}, result)
}

func TestApply_DefaultBatchSize(t *testing.T) {
	store := &mockDeleter{total: 100}

	result, err := Apply(context.Background(), store, makeIDs(51), 0, domain.EventFilter{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Batches)
	assert.Len(t, store.batches[0], DefaultDeleteBatchSize)
}

func TestApply_NothingToDelete(t *testing.T) {
	store := &mockDeleter{total: 42}

	result, err := Apply(context.Background(), store, nil, 50, domain.EventFilter{}, nil)
	require.NoError(t, err)

	assert.Empty(t, store.batches)
	assert.Equal(t, 42, result.Remaining)
}

func TestApply_StopsOnFailedBatch(t *testing.T) {
	store := &mockDeleter{total: 500, failAt: 2}

	result, err := Apply(context.Background(), store, makeIDs(120), 50, domain.EventFilter{}, nil)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "delete batch 2")
	assert.Equal(t, 1, result.Batches)
	assert.Equal(t, 50, result.Deleted)
	assert.Equal(t, 450, result.Remaining)
}

func TestApply_CountError(t *testing.T) {
	store := &mockDeleter{countErr: errors.New("timeout")}

	_, err := Apply(context.Background(), store, makeIDs(3), 50, domain.EventFilter{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count remaining events")
}
