package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.TGApiID)
	assert.Equal(t, "./data/forwarder.db", cfg.SessionDBPath)
	assert.Equal(t, "./data/forward_history.txt", cfg.HistoryFile)
	assert.Equal(t, "./jobs.yaml", cfg.JobsFile)
	assert.Equal(t, 60, cfg.DedupTTLSec)
	assert.Equal(t, 600, cfg.AlbumWindowMS)
	assert.Equal(t, "nats://localhost:4222", cfg.NatsURL)
	assert.Equal(t, 3200, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TG_API_ID", "12345")
	t.Setenv("TG_API_HASH", "abcdef")
	t.Setenv("DEDUP_TTL_SECONDS", "120")
	t.Setenv("HTTP_PORT", "8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.TGApiID)
	assert.Equal(t, "abcdef", cfg.TGApiHash)
	assert.Equal(t, 120, cfg.DedupTTLSec)
	assert.Equal(t, 8080, cfg.HTTPPort)
}

func TestLoadIgnoresMalformedInts(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3200, cfg.HTTPPort)
}
