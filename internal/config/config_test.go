package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{"RUN_ADDRESS", "LOG_LEVEL", "LEAD_RATE_LIMIT", "CATALOG_TTL", "REFRESH_SCHEDULE", "DATABASE_URI", "TRUST_PROXY"} {
		t.Setenv(key, "")
	}

	o := NewOptions()
	require.NoError(t, o.Parse(nil))

	assert.Equal(t, ":8080", o.RunAddr())
	assert.Equal(t, "info", o.LogLevel())
	assert.Equal(t, 10, o.LeadRateLimit())
	assert.Equal(t, 5*time.Minute, o.CatalogTTL())
	assert.Equal(t, "@every 5m", o.RefreshSchedule())
	assert.Empty(t, o.DataBaseDSN())
	assert.False(t, o.TrustProxy())
}

func TestEnvironmentThenFlags(t *testing.T) {
	t.Setenv("RUN_ADDRESS", ":9090")
	t.Setenv("LEAD_RATE_LIMIT", "3")
	t.Setenv("CATALOG_TTL", "30s")
	t.Setenv("FIRESTORE_PROJECT_ID", "macc-prod")

	o := NewOptions()
	require.NoError(t, o.Parse([]string{"-a", ":7070", "-redis", "redis://localhost:6379/0"}))

	assert.Equal(t, ":7070", o.RunAddr())
	assert.Equal(t, 3, o.LeadRateLimit())
	assert.Equal(t, 30*time.Second, o.CatalogTTL())
	assert.Equal(t, "macc-prod", o.FirestoreProject())
	assert.Equal(t, "redis://localhost:6379/0", o.RedisURL())
	assert.False(t, o.TrustProxy())
}

func TestTrustProxy(t *testing.T) {
	t.Setenv("TRUST_PROXY", "true")
	o := NewOptions()
	require.NoError(t, o.Parse(nil))
	assert.True(t, o.TrustProxy())

	t.Setenv("TRUST_PROXY", "")
	o = NewOptions()
	require.NoError(t, o.Parse([]string{"-trust-proxy"}))
	assert.True(t, o.TrustProxy())
}

func TestUnknownFlag(t *testing.T) {
	assert.Error(t, NewOptions().Parse([]string{"-nope"}))
}
