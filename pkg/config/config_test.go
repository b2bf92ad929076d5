package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store.Backend)
	assert.Equal(t, 10, cfg.Dashboard.OverdueListLimit)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
}

func TestLoadKVBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", " KV ")
	t.Setenv("DASHBOARD_CACHE_TTL", "not-a-duration")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreKV, cfg.Store.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
}

func TestDatabaseURL(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "lms", Password: "secret", Name: "lms", SSLMode: "disable"}
	assert.Equal(t, "postgres://lms:secret@db:5432/lms?sslmode=disable", db.DatabaseURL())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, (&Config{Timezone: "Nowhere/Invalid"}).Location())
	assert.Equal(t, time.UTC, (*Config)(nil).Location())
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
	assert.Nil(t, splitAndTrim(""))
}
