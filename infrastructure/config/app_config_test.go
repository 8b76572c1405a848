package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spshare/infrastructure/spclient"
)

func TestDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "./spshare.db", cfg.Database.Path)
	assert.Equal(t, 4, cfg.SharePoint.MaxRetries)
	assert.Equal(t, time.Second, cfg.SharePoint.RetryStep)
	assert.Equal(t, 500, cfg.Snapshot.PageSize)
	assert.Equal(t, "json", cfg.SharePoint.Format)
}

func TestFileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spshare.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9000"
database:
  path: /var/lib/spshare/catalog.db
logging:
  level: debug
sharepoint:
  format: atom
  retry_step: 20ms
  max_retries: 6
  requests_per_second: 2.5
snapshot:
  page_size: 1000
  include_hidden: true
`), 0o600))

	t.Setenv(ConfigFileEnv, path)
	t.Setenv("SP_RETRY_MAX", "2")
	t.Setenv("DB_ENABLE_WAL", "off")
	t.Setenv("SNAPSHOT_CONCURRENCY", "not-a-number")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "/var/lib/spshare/catalog.db", cfg.Database.Path)
	assert.Equal(t, 5000, cfg.Database.BusyTimeoutMs, "unset keys keep defaults")
	assert.False(t, cfg.Database.EnableWAL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 20*time.Millisecond, cfg.SharePoint.RetryStep)
	assert.Equal(t, 2, cfg.SharePoint.MaxRetries)
	assert.Equal(t, 2.5, cfg.SharePoint.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.Snapshot.PageSize)
	assert.Equal(t, 4, cfg.Snapshot.Concurrency)
	assert.True(t, cfg.Snapshot.IncludeHidden)
}

func TestMissingFile(t *testing.T) {
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadAppConfig()
	assert.Error(t, err)
}

func TestSharePointOptions(t *testing.T) {
	sp := DefaultAppConfig().SharePoint
	sp.RetryStep = 20 * time.Millisecond

	p := sp.RetryPolicy()
	assert.Equal(t, 40*time.Millisecond, p.NextRetryDelay(2, &spclient.ServiceError{StatusCode: 503, RetryAfter: -1}))
	assert.Equal(t, 20, sp.RateLimit().BurstSize)
	assert.Len(t, sp.ServiceOptions(), 4)
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("Yes", false))
	assert.False(t, parseBool("0", true))
	assert.True(t, parseBool("maybe", true))
}
