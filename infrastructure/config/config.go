// Package config provides configuration loading for the agent.
package config

import (
	"errors"
	"fmt"

	"github.com/ssumakant/abp-agent/domain/constitution"
)

// Configuration errors.
var (
	// ErrConfigNotFound indicates the config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidFormat indicates the config file could not be parsed.
	ErrInvalidFormat = errors.New("invalid config format")

	// ErrValidationFailed indicates the config failed validation.
	ErrValidationFailed = errors.New("config validation failed")

	// ErrMissingEnvVar indicates a required environment variable is unset.
	ErrMissingEnvVar = errors.New("missing environment variable")
)

// Config is the application configuration.
type Config struct {
	User         UserConfig                `yaml:"user"`
	Storage      StorageConfig             `yaml:"storage"`
	Logging      LoggingConfig             `yaml:"logging"`
	Constitution constitution.Constitution `yaml:"constitution"`
}

// UserConfig identifies the user the agent acts for.
type UserConfig struct {
	Email          string   `yaml:"email" env:"ABP_USER_EMAIL"`
	Name           string   `yaml:"name" env:"ABP_USER_NAME"`
	InternalDomain string   `yaml:"internal_domain" env:"ABP_INTERNAL_DOMAIN"`
	CalendarIDs    []string `yaml:"calendar_ids" env:"ABP_CALENDAR_IDS"`
}

// StorageConfig selects and configures the checkpoint backend.
type StorageConfig struct {
	// Backend is one of "memory", "sqlite", or "redis".
	Backend string       `yaml:"backend" env:"ABP_STORAGE_BACKEND"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
	Redis   RedisConfig  `yaml:"redis"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	DSN string `yaml:"dsn" env:"ABP_SQLITE_DSN"`
}

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ABP_REDIS_ADDR"`
	Password string `yaml:"password" env:"ABP_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"ABP_REDIS_DB"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"ABP_LOG_LEVEL"`
	Format string `yaml:"format" env:"ABP_LOG_FORMAT"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		User: UserConfig{
			CalendarIDs: []string{"primary"},
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			SQLite:  SQLiteConfig{DSN: "file:abp.db?cache=shared&mode=rwc"},
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Constitution: constitution.Default(),
	}
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if c.User.Email == "" {
		return fmt.Errorf("%w: user email is required", ErrValidationFailed)
	}
	if len(c.User.CalendarIDs) == 0 {
		return fmt.Errorf("%w: at least one calendar id is required", ErrValidationFailed)
	}

	switch c.Storage.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrValidationFailed, c.Storage.Backend)
	}

	if err := c.Constitution.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	return nil
}
