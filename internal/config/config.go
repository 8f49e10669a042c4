package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Host string `env:"HOST,default=localhost"`
	Port int    `env:"PORT,default=3001"`

	// Database configuration
	DatabasePath string `env:"DATABASE_PATH,default=./data/health.db"`

	// Intervals.icu bridge API configuration
	IntervalsAPIKey    string `env:"INTERVALS_API_KEY"`
	IntervalsAthleteID string `env:"INTERVALS_ATHLETE_ID"`
	IntervalsBaseURL   string `env:"INTERVALS_BASE_URL,default=https://intervals.icu/api/v1"`

	// Metrics configuration
	MetricsEnabled bool   `env:"METRICS_ENABLED,default=false"`
	MetricsHost    string `env:"METRICS_HOST,default=localhost"`
	MetricsPort    int    `env:"METRICS_PORT,default=9091"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load reads configuration from environment variables.
// It fails fast if the bridge API credentials are missing.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	var missingVars []string
	if cfg.IntervalsAPIKey == "" {
		missingVars = append(missingVars, "INTERVALS_API_KEY")
	}
	if cfg.IntervalsAthleteID == "" {
		missingVars = append(missingVars, "INTERVALS_ATHLETE_ID")
	}
	if len(missingVars) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return &cfg, nil
}
