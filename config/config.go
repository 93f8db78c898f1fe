package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

const (
	DefaultMaxConcurrency   = 4
	DefaultDeadline         = "50m"
	DefaultRateLimitMaxWait = "2m"
)

var (
	ErrInvalidDeadline       = errors.New("invalid run deadline")
	ErrInvalidMaxWait        = errors.New("invalid rate limit max wait")
	ErrInvalidRateLimitClass = errors.New("invalid rate limit class")
	ErrInvalidProviderConfig = errors.New("invalid provider config")
)

// RateLimitClass is a named token bucket definition,
// referenced by providers through their class field
type RateLimitClass struct {
	Name  string  `toml:"name"`
	Rate  float64 `toml:"rate"`  // tokens per second
	Burst int     `toml:"burst"` // bucket capacity
}

// ProviderConfig declares a single enabled provider.
// Kind selects the factory, the remaining fields parameterize it
type ProviderConfig struct {
	ID     string `toml:"id"`
	Kind   string `toml:"kind"`
	Class  string `toml:"class"`
	Weight int    `toml:"weight"`

	// Kind-specific settings
	URL         string            `toml:"url"`
	Timeout     string            `toml:"timeout"`
	RowSelector string            `toml:"row_selector"`
	Fields      map[string]string `toml:"fields"`

	// Inline records for the static kind
	Records []map[string]any `toml:"records"`
}

// Config defines the base-level run configuration
type Config struct {
	// Maximum number of providers executing at once
	MaxConcurrency int `toml:"max_concurrency"`

	// Overall wall-clock budget for the run, e.g. "50m"
	Deadline string `toml:"deadline"`

	// Maximum wait for a single rate limit permit, e.g. "2m"
	RateLimitMaxWait string `toml:"rate_limit_max_wait"`

	// The rate limit class definitions
	RateLimits []RateLimitClass `toml:"rate_limit"`

	// The enabled providers
	Providers []ProviderConfig `toml:"provider"`
}

// DefaultConfig returns the default run configuration
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrency:   DefaultMaxConcurrency,
		Deadline:         DefaultDeadline,
		RateLimitMaxWait: DefaultRateLimitMaxWait,
	}
}

// ValidateConfig validates the run configuration
func ValidateConfig(config *Config) error {
	if _, err := config.ParseDeadline(); err != nil {
		return err
	}

	if _, err := config.ParseRateLimitMaxWait(); err != nil {
		return err
	}

	classes := make(map[string]struct{}, len(config.RateLimits))

	for _, class := range config.RateLimits {
		if class.Name == "" || class.Rate <= 0 {
			return fmt.Errorf(
				"%w: %q must have a name and a positive rate",
				ErrInvalidRateLimitClass, class.Name,
			)
		}

		if _, exists := classes[class.Name]; exists {
			return fmt.Errorf("%w: duplicate class %q", ErrInvalidRateLimitClass, class.Name)
		}

		classes[class.Name] = struct{}{}
	}

	ids := make(map[string]struct{}, len(config.Providers))

	for _, provider := range config.Providers {
		if provider.ID == "" || provider.Kind == "" {
			return fmt.Errorf(
				"%w: id and kind are required",
				ErrInvalidProviderConfig,
			)
		}

		if _, exists := ids[provider.ID]; exists {
			return fmt.Errorf(
				"%w: duplicate provider %q",
				ErrInvalidProviderConfig, provider.ID,
			)
		}

		ids[provider.ID] = struct{}{}

		if provider.Class != "" {
			if _, exists := classes[provider.Class]; !exists {
				return fmt.Errorf(
					"%w: provider %q references unknown class %q",
					ErrInvalidProviderConfig, provider.ID, provider.Class,
				)
			}
		}
	}

	return nil
}

// ParseDeadline parses the configured run deadline duration.
// An empty value means no deadline
func (c *Config) ParseDeadline() (time.Duration, error) {
	if c.Deadline == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.Deadline)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDeadline, c.Deadline)
	}

	return d, nil
}

// ParseRateLimitMaxWait parses the configured permit wait cap.
// An empty value means the wait is bounded by the run deadline only
func (c *Config) ParseRateLimitMaxWait() (time.Duration, error) {
	if c.RateLimitMaxWait == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.RateLimitMaxWait)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxWait, c.RateLimitMaxWait)
	}

	return d, nil
}

// Read reads the configuration from the given path
func Read(path string) (*Config, error) {
	// Read the config file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse it
	cfg := DefaultConfig()

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
