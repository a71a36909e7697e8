package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Loader loads application configuration from YAML files, expanding
// environment variable references and overlaying process environment
// settings.
type Loader struct {
	// ExpandEnv enables ${VAR} expansion in the file contents.
	ExpandEnv bool
	// StrictEnv fails if referenced env vars are missing.
	StrictEnv bool
	// OverlayEnv applies ABP_* environment variables over file values.
	OverlayEnv bool
	// Validate enables configuration validation.
	Validate bool
}

// NewLoader creates a configuration loader with default settings.
func NewLoader() *Loader {
	return &Loader{
		ExpandEnv:  true,
		StrictEnv:  false,
		OverlayEnv: true,
		Validate:   true,
	}
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithEnvExpansion enables or disables ${VAR} expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) { l.ExpandEnv = enabled }
}

// WithStrictEnv enables strict environment variable checking.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) { l.StrictEnv = enabled }
}

// WithEnvOverlay enables or disables the ABP_* environment overlay.
func WithEnvOverlay(enabled bool) LoaderOption {
	return func(l *Loader) { l.OverlayEnv = enabled }
}

// WithValidation enables or disables configuration validation.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) { l.Validate = enabled }
}

// NewLoaderWithOptions creates a loader with the specified options.
func NewLoaderWithOptions(opts ...LoaderOption) *Loader {
	l := NewLoader()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile loads configuration from a YAML file path.
func (l *Loader) LoadFile(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return l.Load(f)
}

// Load loads configuration from a reader. Values start from Default so a
// partial file only overrides what it names.
func (l *Loader) Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if l.ExpandEnv {
		expander := &envExpander{strict: l.StrictEnv}
		expanded, err := expander.Expand(string(data))
		if err != nil {
			return nil, err
		}
		data = []byte(expanded)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if l.OverlayEnv {
		if err := env.Parse(cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
	}

	if l.Validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// LoadString loads configuration from a string.
func (l *Loader) LoadString(content string) (*Config, error) {
	return l.Load(strings.NewReader(content))
}
