package generation

import (
	"fmt"
	"time"

	"github.com/JaimeStill/recon/pkg/envvar"
)

const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
)

// Azure authentication modes.
const (
	AuthAPIKey  = "api_key"
	AuthAzureAD = "azure_ad"
)

// Config holds language model provider settings.
type Config struct {
	Provider   string `toml:"provider"`
	BaseURL    string `toml:"base_url"`
	Token      string `toml:"token"`
	Model      string `toml:"model"`
	Deployment string `toml:"deployment"`
	APIVersion string `toml:"api_version"`
	AuthType   string `toml:"auth_type"`
	Timeout    string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider   string
	BaseURL    string
	Token      string
	Model      string
	Deployment string
	APIVersion string
	AuthType   string
	Timeout    string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
// Provider-specific defaults apply after the environment so a provider
// selected through RECON_GENERATION_PROVIDER gets them too.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	c.loadProviderDefaults()
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
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Deployment != "" {
		c.Deployment = overlay.Deployment
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.AuthType != "" {
		c.AuthType = overlay.AuthType
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		c.Model = "gpt-5-mini"
	}
	if c.Timeout == "" {
		c.Timeout = "5m"
	}
}

func (c *Config) loadProviderDefaults() {
	if c.Provider != ProviderAzure {
		return
	}
	if c.APIVersion == "" {
		c.APIVersion = "2024-10-21"
	}
	if c.AuthType == "" {
		c.AuthType = AuthAPIKey
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(env.Provider, &c.Provider)
	envvar.String(env.BaseURL, &c.BaseURL)
	envvar.String(env.Token, &c.Token)
	envvar.String(env.Model, &c.Model)
	envvar.String(env.Deployment, &c.Deployment)
	envvar.String(env.APIVersion, &c.APIVersion)
	envvar.String(env.AuthType, &c.AuthType)
	envvar.String(env.Timeout, &c.Timeout)
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini:
	case ProviderAzure:
		if c.BaseURL == "" {
			return fmt.Errorf("azure provider requires base_url")
		}
		if c.Deployment == "" {
			return fmt.Errorf("azure provider requires deployment")
		}
		if c.AuthType != AuthAPIKey && c.AuthType != AuthAzureAD {
			return fmt.Errorf("unknown auth_type %q", c.AuthType)
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
