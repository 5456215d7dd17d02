// Package config loads the console's settings from an optional YAML file
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/matthewbaird/intake/internal/blob"
)

// Config is the full server configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Blob     blob.Config    `yaml:"blob"`
	EventBus EventBusConfig `yaml:"eventbus"`
	Live     LiveConfig     `yaml:"live"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or pgx
	URL    string `yaml:"url"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type EventBusConfig struct {
	Buffer int `yaml:"buffer"`
}

// LiveConfig bounds websocket session lifetimes. Durations are Go duration
// strings ("30m").
type LiveConfig struct {
	IdleTimeout string `yaml:"idle_timeout"`
	MaxAge      string `yaml:"max_age"`
}

// Defaults.
const (
	DefaultDatabaseURL = "file:intake.db?_pragma=foreign_keys(1)"
	DefaultPort        = 8080
	DefaultBuffer      = 256
	DefaultIdleTimeout = 30 * time.Minute
	DefaultMaxAge      = 24 * time.Hour
)

// ValidDatabaseDrivers lists the accepted database.driver values.
var ValidDatabaseDrivers = []string{"sqlite", "sqlite3", "postgres", "postgresql", "pgx"}

// ValidBlobDrivers lists the accepted blob.driver values.
var ValidBlobDrivers = []blob.Driver{blob.DriverMemory, blob.DriverFilesystem, blob.DriverS3}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite", URL: DefaultDatabaseURL},
		Server:   ServerConfig{Port: DefaultPort},
		Blob:     blob.Config{Driver: blob.DriverMemory},
		EventBus: EventBusConfig{Buffer: DefaultBuffer},
		Live: LiveConfig{
			IdleTimeout: DefaultIdleTimeout.String(),
			MaxAge:      DefaultMaxAge.String(),
		},
	}
}

// Load reads path when it exists (an empty path skips the file), then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("DATABASE_URL", &c.Database.URL)
	str("DATABASE_DRIVER", &c.Database.Driver)
	if err := num("PORT", &c.Server.Port); err != nil {
		return err
	}
	var driver string
	str("BLOB_DRIVER", &driver)
	if driver != "" {
		c.Blob.Driver = blob.Driver(driver)
	}
	str("BLOB_FS_ROOT", &c.Blob.FSRoot)
	str("BLOB_S3_BUCKET", &c.Blob.S3.Bucket)
	str("BLOB_S3_REGION", &c.Blob.S3.Region)
	str("BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	if v, ok := lookup("BLOB_S3_PATH_STYLE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing BLOB_S3_PATH_STYLE: %w", err)
		}
		c.Blob.S3.PathStyle = b
	}
	if err := num("EVENTBUS_BUFFER", &c.EventBus.Buffer); err != nil {
		return err
	}
	str("LIVE_IDLE_TIMEOUT", &c.Live.IdleTimeout)
	str("LIVE_MAX_AGE", &c.Live.MaxAge)
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if !slices.Contains(ValidDatabaseDrivers, strings.ToLower(c.Database.Driver)) {
		return fmt.Errorf("invalid database driver: %s (valid: %v)", c.Database.Driver, ValidDatabaseDrivers)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database url not configured (set DATABASE_URL)")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Blob.Driver != "" && !slices.Contains(ValidBlobDrivers, c.Blob.Driver) {
		return fmt.Errorf("invalid blob driver: %s (valid: %v)", c.Blob.Driver, ValidBlobDrivers)
	}
	if c.Blob.Driver == blob.DriverS3 && c.Blob.S3.Bucket == "" {
		return fmt.Errorf("blob driver s3 needs a bucket (set BLOB_S3_BUCKET)")
	}
	if c.Blob.Driver == blob.DriverFilesystem && c.Blob.FSRoot == "" {
		return fmt.Errorf("blob driver fs needs a root (set BLOB_FS_ROOT)")
	}
	for key, v := range map[string]string{"live.idle_timeout": c.Live.IdleTimeout, "live.max_age": c.Live.MaxAge} {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s: %q", key, v)
		}
	}
	return nil
}

// IdleTimeout returns the live session idle timeout as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return duration(c.Live.IdleTimeout, DefaultIdleTimeout)
}

// MaxAge returns the live session maximum age as a duration.
func (c *Config) MaxAge() time.Duration {
	return duration(c.Live.MaxAge, DefaultMaxAge)
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
