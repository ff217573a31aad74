// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. TRIPLAN_DB_PATH.
const Prefix = "TRIPLAN"

const devSecret = "triplan-dev-secret-change-me"

// Config holds the configuration for the TriPlan server.
type Config struct {
	// Storage
	DBPath   string `envconfig:"DB_PATH" default:"./data/triplan.db"`
	MediaDir string `envconfig:"MEDIA_DIR" default:"./data/media"`

	// HTTP
	Port       int    `envconfig:"PORT" default:"8080"`
	PublicURL  string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
	StaticPath string `envconfig:"STATIC_PATH" default:"./frontend/static"`

	// Auth
	JWTSecret string        `envconfig:"JWT_SECRET" default:""`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// Collaborators. Empty values disable the feature.
	BillScanURL     string        `envconfig:"BILLSCAN_URL" default:""`
	BillScanTimeout time.Duration `envconfig:"BILLSCAN_TIMEOUT" default:"30s"`
	RedisURL        string        `envconfig:"REDIS_URL" default:""`

	// SplitIncludeOwner counts the owner in the expense divisor.
	SplitIncludeOwner bool `envconfig:"SPLIT_INCLUDE_OWNER" default:"false"`

	// SweepSchedule is the cron spec for completing ended projects.
	SweepSchedule string `envconfig:"SWEEP_SCHEDULE" default:"@hourly"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"LOG_JSON" default:"false"`
}

// Load reads envFiles (missing files are ignored) and then the environment.
// Values already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded",
		"db_path", cfg.DBPath,
		"port", cfg.Port,
		"public_url", cfg.PublicURL,
		"billscan_enabled", cfg.BillScanURL != "",
		"redis_enabled", cfg.RedisURL != "",
		"split_include_owner", cfg.SplitIncludeOwner,
		"sweep_schedule", cfg.SweepSchedule,
	)
	return &cfg, nil
}

// Validate fills derived defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid %s_PORT: %d", Prefix, c.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid %s_TOKEN_TTL: %s", Prefix, c.TokenTTL)
	}
	if c.JWTSecret == "" {
		slog.Warn("JWT secret not set, using development secret", "variable", Prefix+"_JWT_SECRET")
		c.JWTSecret = devSecret
	}
	c.PublicURL = strings.TrimSuffix(c.PublicURL, "/")
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MediaURL is the public base URL for object storage files.
func (c *Config) MediaURL() string {
	return c.PublicURL + "/media"
}
