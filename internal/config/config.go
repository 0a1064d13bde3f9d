package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

// Config holds the environment driven configuration for the profile service.
type Config struct {
	// Service Configuration
	ServiceName      string        `env:"SERVICE_NAME" envDefault:"wayfinder-api"`
	ServiceNamespace string        `env:"SERVICE_NAMESPACE" envDefault:"wayfinder"`
	Environment      string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort         int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"console"`
	OTLPEndpoint     string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string        `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DatabaseURL    string        `env:"DATABASE_URL,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Redis (semantic cache keyspace + waitlist store)
	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Model Registry collaborator
	RegistryBaseURL           string        `env:"MODEL_REGISTRY_URL,notEmpty" validate:"url"`
	RegistryAPIKey            string        `env:"MODEL_REGISTRY_API_KEY"`
	RegistryTimeout           time.Duration `env:"MODEL_REGISTRY_TIMEOUT" envDefault:"10s"`
	RegistryValidationRelaxed bool          `env:"REGISTRY_VALIDATION_RELAXED" envDefault:"false"`

	// Default-token profile
	ProfileScope          string `env:"PROFILE_SCOPE" envDefault:"global"`
	RecommendedModelLimit int    `env:"RECOMMENDED_MODEL_LIMIT" envDefault:"5"`

	// Tokens
	TokenPrefix string `env:"TOKEN_PREFIX" envDefault:"wf"`

	// Admin surface
	AdminAPIKey string `env:"ADMIN_API_KEY,notEmpty"`

	// Drift monitor
	DriftCheckEnabled         bool `env:"DRIFT_CHECK_ENABLED" envDefault:"true"`
	DriftCheckIntervalMinutes int  `env:"DRIFT_CHECK_INTERVAL_MINUTES" envDefault:"60"`

	// Features
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.RegistryBaseURL = strings.TrimRight(strings.TrimSpace(cfg.RegistryBaseURL), "/")
	cfg.AdminAPIKey = strings.TrimSpace(cfg.AdminAPIKey)
	cfg.ProfileScope = strings.TrimSpace(cfg.ProfileScope)
	if cfg.ProfileScope == "" {
		cfg.ProfileScope = "global"
	}
	if cfg.RecommendedModelLimit <= 0 {
		cfg.RecommendedModelLimit = 5
	}
	if cfg.DriftCheckIntervalMinutes <= 0 {
		cfg.DriftCheckIntervalMinutes = 60
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
