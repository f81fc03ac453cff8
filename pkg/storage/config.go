package storage

import (
	"fmt"

	"github.com/JaimeStill/recon/pkg/envvar"
)

// Config holds Azure Blob Storage connection parameters. Either
// ConnectionString or ServiceURL identifies the account; ServiceURL
// authenticates through the default Azure credential chain.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
	MaxListSize      int32  `toml:"max_list_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	ServiceURL       string
	MaxListSize      string
}

// Configured reports whether an account has been specified.
func (c *Config) Configured() bool {
	return c.ConnectionString != "" || c.ServiceURL != ""
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
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
	if overlay.MaxListSize != 0 {
		c.MaxListSize = overlay.MaxListSize
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "recon"
	}
	if c.MaxListSize == 0 {
		c.MaxListSize = 50
	}
	c.MaxListSize = min(c.MaxListSize, MaxListCap)
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(env.ContainerName, &c.ContainerName)
	envvar.String(env.ConnectionString, &c.ConnectionString)
	envvar.String(env.ServiceURL, &c.ServiceURL)
	envvar.Int(env.MaxListSize, &c.MaxListSize)
	c.MaxListSize = min(c.MaxListSize, MaxListCap)
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.MaxListSize < 1 {
		return fmt.Errorf("max_list_size must be positive")
	}
	return nil
}
