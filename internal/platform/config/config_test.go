package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lueurxax/event-dedup/internal/core/errors"
)

// Test environment variable keys.
const (
	testEnvStoreDriver  = "STORE_DRIVER"
	testEnvPostgresDSN  = "POSTGRES_DSN"
	testEnvSQLitePath   = "SQLITE_PATH"
	testEnvStrictness   = "DEDUP_STRICTNESS"
	testEnvTimezone     = "HOME_TIMEZONE"
	testEnvDenyKeywords = "FILTER_DENY_KEYWORDS"
)

const testPostgresDSN = "postgres://localhost/test"

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		if val, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { _ = os.Setenv(key, val) })
		}

		_ = os.Unsetenv(key)
	}
}

func TestLoad_MissingPostgresDSN(t *testing.T) {
	clearEnv(t, testEnvPostgresDSN, testEnvStoreDriver)

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t, testEnvStoreDriver, testEnvStrictness, testEnvTimezone, "AI_DAY_DELAY", "DELETE_BATCH_SIZE", "AI_MAX_DAYS")
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, testPostgresDSN, cfg.Store.PostgresDSN)
	assert.Equal(t, StrictnessStrict, cfg.Dedup.Strictness)
	assert.Equal(t, 1, cfg.Dedup.StrictMinSharedWords)
	assert.Equal(t, 2, cfg.Dedup.GradedMinSharedWords)
	assert.Equal(t, 500*time.Millisecond, cfg.AI.DayDelay)
	assert.Equal(t, 0, cfg.AI.MaxDays)
	assert.Equal(t, 300, cfg.AI.DescriptionMaxChars)
	assert.Equal(t, 50, cfg.Store.DeleteBatchSize)
	assert.True(t, cfg.AI.Enabled)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestLoad_SQLiteDriver(t *testing.T) {
	clearEnv(t, testEnvPostgresDSN)
	t.Setenv(testEnvStoreDriver, StoreDriverSQLite)
	t.Setenv(testEnvSQLitePath, "/tmp/events.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/events.db", cfg.Store.SQLitePath)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv(testEnvStoreDriver, "mongo")

	_, err := Load()
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedDriver)
}

func TestLoad_InvalidStrictness(t *testing.T) {
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
	t.Setenv(testEnvStoreDriver, StoreDriverPostgres)
	t.Setenv(testEnvStrictness, "fuzzy")

	_, err := Load()
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
	t.Setenv(testEnvStoreDriver, StoreDriverPostgres)
	t.Setenv(testEnvStrictness, StrictnessStrict)
	t.Setenv(testEnvTimezone, "Mars/Olympus_Mons")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DenyKeywords(t *testing.T) {
	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
	t.Setenv(testEnvStoreDriver, StoreDriverPostgres)
	t.Setenv(testEnvStrictness, StrictnessGraded)
	t.Setenv(testEnvTimezone, "UTC")
	t.Setenv(testEnvDenyKeywords, "test event,cancelled")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"test event", "cancelled"}, cfg.Filter.DenyKeywords)
	assert.Equal(t, StrictnessGraded, cfg.Dedup.Strictness)
}
