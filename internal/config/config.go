// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"

	"quillpress/internal/models"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port     string `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Public base URL used in feeds, sitemaps and canonical links.
	SiteURL string `env:"SITE_URL" envDefault:"http://localhost:8080"`

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser     string `env:"POSTGRES_USER" envDefault:"quillpress"`
	DBPassword string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName     string `env:"POSTGRES_DB" envDefault:"quillpress"`
	DBSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Valkey (Redis-compatible session store)
	ValkeyHost     string `env:"VALKEY_HOST" envDefault:"localhost"`
	ValkeyPort     string `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`

	// First-run admin account.
	AdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@quillpress.local"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD" envDefault:"admin"`

	// Comments
	CommentDeletePolicy string `env:"COMMENT_DELETE_POLICY" envDefault:"orphan"`
	CommentRateLimit    int    `env:"COMMENT_RATE_LIMIT" envDefault:"5"` // per minute per IP
	CommentRateBurst    int    `env:"COMMENT_RATE_BURST" envDefault:"3"`

	// S3-compatible media storage. Media routes are disabled without a bucket.
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"20"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing or invalid in production mode.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !models.CommentDeletePolicy(c.CommentDeletePolicy).Valid() {
		return fmt.Errorf("COMMENT_DELETE_POLICY must be orphan, cascade or reject, got %q", c.CommentDeletePolicy)
	}
	if c.CommentRateLimit < 1 || c.CommentRateBurst < 1 {
		return errors.New("COMMENT_RATE_LIMIT and COMMENT_RATE_BURST must be positive")
	}
	if c.MaxUploadMB < 1 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}

	if c.Env == "production" {
		if c.DBPassword == "changeme" {
			return errors.New("POSTGRES_PASSWORD must be set in production")
		}
		if c.AdminPassword == "admin" {
			return errors.New("SEED_ADMIN_PASSWORD must be set in production")
		}
		u, err := url.Parse(c.SiteURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("SITE_URL must be an absolute URL in production, got %q", c.SiteURL)
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// StorageEnabled reports whether an S3 bucket is configured for media.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// DeletePolicy returns the configured comment delete policy.
func (c *Config) DeletePolicy() models.CommentDeletePolicy {
	return models.CommentDeletePolicy(c.CommentDeletePolicy)
}

// SlogLevel parses LOG_LEVEL, defaulting to info for unknown values.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
