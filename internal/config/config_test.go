package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: production
jwt:
  secret: bearer-secret
preview:
  secret: `+testSecret+`
  ttl: 30m
scheduler:
  publish_interval: 1m
versions:
  max: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 30*time.Minute, cfg.Preview.TTL)
	assert.Equal(t, time.Minute, cfg.Scheduler.PublishInterval)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.TrashInterval, "unset values keep defaults")
	assert.Equal(t, 5, cfg.Versions.Max)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: bearer-secret
preview:
  secret: `+testSecret+`
`)
	t.Setenv("SCHEDULER_TRASH_RETENTION", "720h")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 720*time.Hour, cfg.Scheduler.TrashRetention)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "bearer-secret")
	t.Setenv("PREVIEW_SECRET", testSecret)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.PublishInterval)
	assert.Equal(t, 3, cfg.Versions.Max)
}

func TestValidate_ShortPreviewSecret(t *testing.T) {
	cfg := Default()
	cfg.JWT.Secret = "x"
	cfg.Preview.Secret = "short"
	assert.Error(t, cfg.Validate())
}

func TestGetDSN(t *testing.T) {
	d := DatabaseConfig{Host: "127.0.0.1", Port: 3306, User: "u", Password: "p", Name: "blog"}
	dsn := d.GetDSN()
	assert.Contains(t, dsn, "u:p@tcp(127.0.0.1:3306)/blog")
	assert.Contains(t, dsn, "parseTime=true")
}
