// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// DatabaseURL wins over the discrete DB_* settings when present.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DB          DB     `envconfig:"DB"`

	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"event-cashless"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	CORSOrigin   string `envconfig:"CORS_ORIGIN" default:"*"`

	// LoginRatePerMin bounds login attempts per operator of an event.
	LoginRatePerMin int `envconfig:"LOGIN_RATE_PER_MIN" default:"30"`
}

// DB holds PostgreSQL connection settings, falling back to local-development
// defaults. Fields are untagged so only the DB_ prefixed names are read; a
// tag would also make envconfig fall back to the bare name (PORT, USER).
type DB struct {
	Host     string `default:"localhost"`
	Port     string `default:"5432"`
	User     string `default:"postgres"`
	Password string `default:"postgres"`
	Name     string `default:"cashless"`
	SSLMode  string `default:"disable"`
	MaxConns int32  `split_words:"true" default:"20"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return c, nil
}

// DSN returns the connection string for the relational store.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode,
	)
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
