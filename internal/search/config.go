package search

import (
	"fmt"
	"time"

	"github.com/JaimeStill/recon/pkg/envvar"
)

const (
	ProviderExa        = "exa"
	ProviderDuckDuckGo = "duckduckgo"
)

// Config holds search provider settings.
type Config struct {
	Provider       string `toml:"provider"`
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	Timeout        string `toml:"timeout"`
	MaxConcurrency int    `toml:"max_concurrency"`
	MaxResults     int    `toml:"max_results"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider       string
	BaseURL        string
	Token          string
	Timeout        string
	MaxConcurrency string
	MaxResults     string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxConcurrency != 0 {
		c.MaxConcurrency = overlay.MaxConcurrency
	}
	if overlay.MaxResults != 0 {
		c.MaxResults = overlay.MaxResults
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderExa
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxResults == 0 {
		c.MaxResults = 25
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(env.Provider, &c.Provider)
	envvar.String(env.BaseURL, &c.BaseURL)
	envvar.String(env.Token, &c.Token)
	envvar.String(env.Timeout, &c.Timeout)
	envvar.Int(env.MaxConcurrency, &c.MaxConcurrency)
	envvar.Int(env.MaxResults, &c.MaxResults)
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderExa, ProviderDuckDuckGo:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative")
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive")
	}
	return nil
}
