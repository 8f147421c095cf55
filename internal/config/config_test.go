package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasaraujosgc-hue/crm/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sefaz_uploads", cfg.Upload.Dir)
	assert.Equal(t, 15*time.Second, cfg.Registry.LookupTimeout)
	assert.Equal(t, 10*time.Second, cfg.Registry.ExtractTimeout)
	assert.Equal(t, time.Second, cfg.Progress.PollInterval)
	assert.Equal(t, time.Duration(0), cfg.Registry.CacheTTL)
	assert.True(t, cfg.Browser.Headless)
	assert.Contains(t, cfg.Registry.QueryURL, "consultaBa.asp")
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WORKERS", "50")
	t.Setenv("REGISTRY_LOOKUP_TIMEOUT", "3")
	t.Setenv("PROGRESS_POLL_INTERVAL", "250ms")
	t.Setenv("UPLOAD_ALLOWED_EXTENSIONS", "pdf, txt")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Workers.Count, "worker count is clamped")
	assert.Equal(t, 3*time.Second, cfg.Registry.LookupTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Progress.PollInterval)
	assert.Equal(t, []string{"pdf", "txt"}, cfg.Upload.AllowedExtensions)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 7070
database:
  path: /tmp/other.db
workers:
  count: 4
registry:
  cache_ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7171")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 7171, cfg.Server.Port, "environment wins over file")
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, 4, cfg.Workers.Count)
	assert.Equal(t, time.Hour, cfg.Registry.CacheTTL)
}

func TestLoadConfigFileMissing(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load()
	require.Error(t, err)
}

func TestIsAllowedExtension(t *testing.T) {
	upload := config.UploadConfig{AllowedExtensions: []string{"pdf", ".TXT"}}

	assert.True(t, upload.IsAllowedExtension(".pdf"))
	assert.True(t, upload.IsAllowedExtension("PDF"))
	assert.True(t, upload.IsAllowedExtension("txt"))
	assert.False(t, upload.IsAllowedExtension(".docx"))
	assert.False(t, upload.IsAllowedExtension(""))
}
