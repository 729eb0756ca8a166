package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
)

func TestDefault(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)

	assert.Equal(t, KindVenue, r.Kind("venue"))
	assert.Equal(t, KindAggregator, r.Kind("Eventbrite"))
	assert.True(t, r.IsAggregator("meetup"))
	assert.False(t, r.IsAggregator("venue"))
	assert.Equal(t, KindUnknown, r.Kind("carrier-pigeon"))
	assert.Contains(t, r.Names(KindAggregator), "eventbrite")
	assert.Positive(t, r.Len())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown kind", yaml: "sources:\n  - name: x\n    kind: blog\n"},
		{name: "empty name", yaml: "sources:\n  - name: ''\n    kind: venue\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}

	_, err := Parse([]byte("sources: [unclosed"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  - name: citypaper\n    kind: aggregator\n"), 0o600))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"citypaper"}, r.Names(KindAggregator))
	assert.Equal(t, KindUnknown, r.Kind("venue"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, KindVenue, def.Kind("venue"))
}

func TestNilRegistry(t *testing.T) {
	var r *Registry

	assert.Equal(t, KindUnknown, r.Kind("venue"))
	assert.Nil(t, r.Names(KindVenue))
	assert.Zero(t, r.Len())
}
