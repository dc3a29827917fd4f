package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sdko-org/areacheck/internal/profile"
	"github.com/sdko-org/areacheck/internal/validate"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Profile         profile.Profile
	HTTPAddr        string
	HTTPSAddr       string
	FCGIAddr        string
	CheckPath       string
	Workers         int
	MaxBodyBytes    int64
	RateLimit       int
	RateLimitWindow time.Duration
	LogLevel        logrus.Level

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string
	PostgresDatabase string
	PostgresSSLMode  string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	ArchiveInterval time.Duration
	ArchiveAfter    time.Duration
	ArchiveBatch    int
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv.
func LoadFrom(getenv func(string) string) (*Config, error) {
	e := env(getenv)

	p, err := profile.Lookup(e.get("PROFILE", "lab"))
	if err != nil {
		return nil, err
	}
	if v := e.get("VALIDATION_MODE", ""); v != "" {
		if p.Mode, err = validate.ParseMode(v); err != nil {
			return nil, err
		}
	}
	if v := e.get("HISTORY_SCOPE", ""); v != "" {
		if p.Scope, err = profile.ParseScope(v); err != nil {
			return nil, err
		}
	}
	p.HistoryCapacity = e.getInt("HISTORY_CAPACITY", p.HistoryCapacity)
	if p.HistoryCapacity <= 0 {
		return nil, fmt.Errorf("HISTORY_CAPACITY must be positive, got %d", p.HistoryCapacity)
	}

	level, err := logrus.ParseLevel(e.get("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Profile:         p,
		HTTPAddr:        e.get("HTTP_ADDR", ":8080"),
		HTTPSAddr:       e.get("HTTPS_ADDR", ""),
		FCGIAddr:        e.get("FCGI_ADDR", ""),
		CheckPath:       e.get("CHECK_PATH", "/calculate"),
		Workers:         e.getInt("WORKERS", 1),
		MaxBodyBytes:    int64(e.getInt("MAX_BODY_BYTES", 8192)),
		RateLimit:       e.getInt("RATE_LIMIT", 100),
		RateLimitWindow: e.getDuration("RATE_LIMIT_WINDOW", time.Minute),
		LogLevel:        level,

		PostgresUser:     e.get("POSTGRES_USER", "areacheck"),
		PostgresPassword: e.get("POSTGRES_PASSWORD", ""),
		PostgresHost:     e.get("POSTGRES_HOST", ""),
		PostgresPort:     e.get("POSTGRES_PORT", "5432"),
		PostgresDatabase: e.get("POSTGRES_DATABASE", "areacheck"),
		PostgresSSLMode:  e.get("POSTGRES_SSL_MODE", "disable"),

		S3Bucket:    e.get("S3_BUCKET", ""),
		S3Region:    e.get("AWS_REGION", "us-east-1"),
		S3Endpoint:  e.get("S3_ENDPOINT", ""),
		S3AccessKey: e.get("AWS_ACCESS_KEY_ID", ""),
		S3SecretKey: e.get("AWS_SECRET_ACCESS_KEY", ""),

		ArchiveInterval: e.getDuration("ARCHIVE_INTERVAL", time.Hour),
		ArchiveAfter:    e.getDuration("ARCHIVE_AFTER", 24*time.Hour),
		ArchiveBatch:    e.getInt("ARCHIVE_BATCH", 1000),
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 8192
	}
	if cfg.S3Bucket != "" && (cfg.S3AccessKey == "" || cfg.S3SecretKey == "") {
		return nil, fmt.Errorf("S3_BUCKET is set but AWS credentials are missing")
	}

	return cfg, nil
}

// DatabaseEnabled reports whether access logs go to Postgres.
func (c *Config) DatabaseEnabled() bool {
	return c.PostgresHost != ""
}

// ArchiveEnabled reports whether old access logs are moved to S3.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseEnabled() && c.S3Bucket != ""
}

type env func(string) string

func (e env) get(key, defaultValue string) string {
	if value := e(key); value != "" {
		return value
	}
	return defaultValue
}

func (e env) getInt(key string, defaultValue int) int {
	if value := e(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e env) getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := e(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
