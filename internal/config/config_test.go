package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/intake/internal/blob"
)

func env(kv map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := kv[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultDatabaseURL, cfg.Database.URL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, 24*time.Hour, cfg.MaxAge())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: pgx
  url: postgres://localhost/intake
server:
  port: 9090
blob:
  driver: s3
  s3:
    bucket: exports
    path_style: true
live:
  idle_timeout: 5m
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, blob.DriverS3, cfg.Blob.Driver)
	assert.Equal(t, "exports", cfg.Blob.S3.Bucket)
	assert.True(t, cfg.Blob.S3.PathStyle)
	assert.Equal(t, 5*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, DefaultMaxAge, cfg.MaxAge(), "unset keys keep defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(env(map[string]string{
		"DATABASE_URL":       "postgres://db/intake",
		"DATABASE_DRIVER":    "postgres",
		"PORT":               "9000",
		"BLOB_DRIVER":        "fs",
		"BLOB_FS_ROOT":       "/var/exports",
		"BLOB_S3_PATH_STYLE": "true",
		"EVENTBUS_BUFFER":    "64",
		"LIVE_MAX_AGE":       "2h",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/intake", cfg.Database.URL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, blob.DriverFilesystem, cfg.Blob.Driver)
	assert.Equal(t, "/var/exports", cfg.Blob.FSRoot)
	assert.True(t, cfg.Blob.S3.PathStyle)
	assert.Equal(t, 64, cfg.EventBus.Buffer)
	assert.Equal(t, 2*time.Hour, cfg.MaxAge())
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrideErrors(t *testing.T) {
	assert.Error(t, Default().applyEnv(env(map[string]string{"PORT": "eighty"})))
	assert.Error(t, Default().applyEnv(env(map[string]string{"BLOB_S3_PATH_STYLE": "sometimes"})))
	assert.Error(t, Default().applyEnv(env(map[string]string{"EVENTBUS_BUFFER": "x"})))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown database driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"empty url", func(c *Config) { c.Database.URL = "" }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown blob driver", func(c *Config) { c.Blob.Driver = "gcs" }},
		{"s3 without bucket", func(c *Config) { c.Blob.Driver = blob.DriverS3 }},
		{"fs without root", func(c *Config) { c.Blob.Driver = blob.DriverFilesystem }},
		{"bad idle timeout", func(c *Config) { c.Live.IdleTimeout = "soon" }},
		{"negative max age", func(c *Config) { c.Live.MaxAge = "-1h" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
