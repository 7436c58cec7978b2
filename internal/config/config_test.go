package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.Lifecycle.LockTimeout)
	assert.Equal(t, 30*time.Second, cfg.Lifecycle.LockTTL)
	assert.Equal(t, 50.0, cfg.Maps.DefaultRoundTripKm)
	assert.Empty(t, cfg.DB.DSN)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RECLAIM_ENV", "production")
	t.Setenv("RECLAIM_HTTP_ADDR", ":9090")
	t.Setenv("RECLAIM_DB_DSN", "postgres://u:p@db:5432/reclaim")
	t.Setenv("RECLAIM_REDIS_ADDR", "redis:6379")
	t.Setenv("RECLAIM_MAPS_API_KEY", "key")
	t.Setenv("RECLAIM_LIFECYCLE_LOCK_TIMEOUT", "250ms")
	t.Setenv("RECLAIM_RATELIMIT_RPS", "5")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "postgres://u:p@db:5432/reclaim", cfg.DB.DSN)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "key", cfg.Maps.APIKey)
	assert.Equal(t, 250*time.Millisecond, cfg.Lifecycle.LockTimeout)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RECLAIM_MAPS_DEPOT_POSTCODE=M1 1AE\nRECLAIM_HTTP_ADDR=:7000\n"), 0o600))
	t.Setenv("RECLAIM_HTTP_ADDR", ":9000")
	t.Cleanup(func() { os.Unsetenv("RECLAIM_MAPS_DEPOT_POSTCODE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "M1 1AE", cfg.Maps.DepotPostcode)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
}

func TestLoadRejectsBadValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Run("unparsable duration", func(t *testing.T) {
		t.Setenv("RECLAIM_LIFECYCLE_STORE_TIMEOUT", "soon")
		_, err := Load(missing)
		assert.Error(t, err)
	})
	t.Run("zero lock timeout", func(t *testing.T) {
		t.Setenv("RECLAIM_LIFECYCLE_LOCK_TIMEOUT", "0s")
		_, err := Load(missing)
		assert.Error(t, err)
	})
	t.Run("redis lock ttl not above store timeout", func(t *testing.T) {
		t.Setenv("RECLAIM_REDIS_ADDR", "redis:6379")
		t.Setenv("RECLAIM_LIFECYCLE_LOCK_TTL", "5s")
		t.Setenv("RECLAIM_LIFECYCLE_STORE_TIMEOUT", "5s")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "lock ttl")
	})
	t.Run("short ttl without redis", func(t *testing.T) {
		t.Setenv("RECLAIM_LIFECYCLE_LOCK_TTL", "1s")
		t.Setenv("RECLAIM_LIFECYCLE_STORE_TIMEOUT", "5s")
		_, err := Load(missing)
		assert.NoError(t, err)
	})
}
