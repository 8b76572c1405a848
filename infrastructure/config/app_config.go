package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"spshare/database"
	"spshare/domain/snapshot"
	"spshare/infrastructure/spclient"
	"spshare/logging"
)

// ConfigFileEnv names the optional YAML file read before the environment.
const ConfigFileEnv = "SPSHARE_CONFIG"

// AppConfig holds application-wide system configuration. SharePoint
// credentials are read separately by spauth.FromEnv.
type AppConfig struct {
	HTTPAddr    string           `yaml:"http_addr"`
	HTTPLogPath string           `yaml:"http_log_path"`
	Database    database.Config  `yaml:"database"`
	Logging     logging.Config   `yaml:"logging"`
	SharePoint  SharePointConfig `yaml:"sharepoint"`
	Snapshot    SnapshotConfig   `yaml:"snapshot"`
}

// SharePointConfig tunes the request engine.
type SharePointConfig struct {
	Format            string        `yaml:"format"`
	Debug             bool          `yaml:"debug"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryStep         time.Duration `yaml:"retry_step"`
	MaxRetryDelay     time.Duration `yaml:"max_retry_delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size"`
	ThrottleBackoff   time.Duration `yaml:"throttle_backoff"`
}

// SnapshotConfig holds the defaults for snapshot runs.
type SnapshotConfig struct {
	PageSize      int  `yaml:"page_size"`
	Concurrency   int  `yaml:"concurrency"`
	IncludeHidden bool `yaml:"include_hidden"`
}

// DefaultAppConfig returns the configuration used when nothing is set.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		HTTPAddr: ":8080",
		Database: database.DefaultConfig(),
		Logging:  *logging.DefaultConfig(),
		SharePoint: SharePointConfig{
			Format:            spclient.FormatJSON.String(),
			MaxRetries:        spclient.DefaultMaxRetries,
			RetryStep:         spclient.DefaultRetryStep,
			MaxRetryDelay:     spclient.DefaultMaxDelay,
			RequestsPerSecond: spclient.DefaultRateLimit.RequestsPerSecond,
			BurstSize:         spclient.DefaultRateLimit.BurstSize,
			ThrottleBackoff:   spclient.DefaultRateLimit.ThrottleBackoff,
		},
		Snapshot: SnapshotConfig{
			PageSize:    snapshot.DefaultPageSize,
			Concurrency: snapshot.DefaultConcurrency,
		},
	}
}

// LoadAppConfig builds the configuration from defaults, then the YAML file
// named by SPSHARE_CONFIG if set, then environment variables.
func LoadAppConfig() (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	cfg.LoadFromEnv()
	return cfg, nil
}

// LoadFromFile overlays a YAML file onto cfg.
func (c *AppConfig) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

// LoadFromEnv overlays environment variables onto cfg.
func (c *AppConfig) LoadFromEnv() {
	c.HTTPAddr = getEnvWithDefault("HTTP_ADDR", c.HTTPAddr)
	c.HTTPLogPath = getEnvWithDefault("HTTP_LOG_PATH", c.HTTPLogPath)
	loadDatabaseConfigFromEnv(&c.Database)
	loadLoggingConfigFromEnv(&c.Logging)
	loadSharePointConfigFromEnv(&c.SharePoint)

	c.Snapshot.PageSize = getEnvIntWithDefault("SNAPSHOT_PAGE_SIZE", c.Snapshot.PageSize)
	c.Snapshot.Concurrency = getEnvIntWithDefault("SNAPSHOT_CONCURRENCY", c.Snapshot.Concurrency)
	c.Snapshot.IncludeHidden = getEnvBoolWithDefault("SNAPSHOT_INCLUDE_HIDDEN", c.Snapshot.IncludeHidden)
}

func loadDatabaseConfigFromEnv(d *database.Config) {
	d.Path = getEnvWithDefault("DB_PATH", d.Path)
	d.MaxOpenConns = getEnvIntWithDefault("DB_MAX_OPEN_CONNS", d.MaxOpenConns)
	d.MaxIdleConns = getEnvIntWithDefault("DB_MAX_IDLE_CONNS", d.MaxIdleConns)
	d.ConnMaxLifetime = getEnvDurationWithDefault("DB_CONN_MAX_LIFETIME", d.ConnMaxLifetime)
	d.ConnMaxIdleTime = getEnvDurationWithDefault("DB_CONN_MAX_IDLE_TIME", d.ConnMaxIdleTime)
	d.BusyTimeoutMs = getEnvIntWithDefault("DB_BUSY_TIMEOUT_MS", d.BusyTimeoutMs)
	d.EnableForeignKeys = getEnvBoolWithDefault("DB_ENABLE_FOREIGN_KEYS", d.EnableForeignKeys)
	d.EnableWAL = getEnvBoolWithDefault("DB_ENABLE_WAL", d.EnableWAL)
}

func loadLoggingConfigFromEnv(l *logging.Config) {
	l.Level = getEnvWithDefault("LOG_LEVEL", l.Level)
	l.Format = getEnvWithDefault("LOG_FORMAT", l.Format)
	l.Output = getEnvWithDefault("LOG_OUTPUT", l.Output)
}

func loadSharePointConfigFromEnv(s *SharePointConfig) {
	s.Format = getEnvWithDefault("SP_FORMAT", s.Format)
	s.Debug = getEnvBoolWithDefault("SP_DEBUG", s.Debug)
	s.MaxRetries = getEnvIntWithDefault("SP_RETRY_MAX", s.MaxRetries)
	s.RetryStep = getEnvDurationWithDefault("SP_RETRY_STEP", s.RetryStep)
	s.MaxRetryDelay = getEnvDurationWithDefault("SP_RETRY_MAX_DELAY", s.MaxRetryDelay)
	s.RequestsPerSecond = getEnvFloatWithDefault("SP_RATE_RPS", s.RequestsPerSecond)
	s.BurstSize = getEnvIntWithDefault("SP_RATE_BURST", s.BurstSize)
	s.ThrottleBackoff = getEnvDurationWithDefault("SP_RATE_THROTTLE_BACKOFF", s.ThrottleBackoff)
}

// RetryPolicy builds the engine retry policy.
func (s SharePointConfig) RetryPolicy() *spclient.DefaultRetryPolicy {
	return &spclient.DefaultRetryPolicy{
		MaxRetries: s.MaxRetries,
		Step:       s.RetryStep,
		MaxDelay:   s.MaxRetryDelay,
	}
}

// RateLimit returns the limiter settings.
func (s SharePointConfig) RateLimit() spclient.RateLimitConfig {
	return spclient.RateLimitConfig{
		RequestsPerSecond: s.RequestsPerSecond,
		BurstSize:         s.BurstSize,
		ThrottleBackoff:   s.ThrottleBackoff,
	}
}

// ServiceOptions returns the spclient options for these settings.
func (s SharePointConfig) ServiceOptions() []spclient.Option {
	return []spclient.Option{
		spclient.WithRetryPolicy(s.RetryPolicy()),
		spclient.WithRateLimiter(spclient.NewRateLimiter(s.RateLimit())),
		spclient.WithFormat(spclient.ParseFormat(s.Format)),
		spclient.WithDebug(s.Debug),
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(v string, def bool) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// Helper functions for environment variable parsing.
func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return parseBool(value, defaultValue)
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
