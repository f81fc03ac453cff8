// Package config loads the recon service configuration from an optional
// config.toml, an optional config.<RECON_ENV>.toml overlay, and RECON_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/recon/internal/agents"
	"github.com/JaimeStill/recon/internal/generation"
	"github.com/JaimeStill/recon/internal/logging"
	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/internal/search"
	"github.com/JaimeStill/recon/internal/workflow"
	"github.com/JaimeStill/recon/pkg/database"
	"github.com/JaimeStill/recon/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvReconEnv             = "RECON_ENV"
	EnvReconShutdownTimeout = "RECON_SHUTDOWN_TIMEOUT"
	EnvReconVersion         = "RECON_VERSION"
)

var loggingEnv = &logging.Env{
	Level:  "RECON_LOG_LEVEL",
	Format: "RECON_LOG_FORMAT",
}

var databaseEnv = &database.Env{
	Host:            "RECON_DB_HOST",
	Port:            "RECON_DB_PORT",
	Name:            "RECON_DB_NAME",
	User:            "RECON_DB_USER",
	Password:        "RECON_DB_PASSWORD",
	SSLMode:         "RECON_DB_SSL_MODE",
	MaxOpenConns:    "RECON_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "RECON_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "RECON_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "RECON_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "RECON_STORAGE_CONTAINER_NAME",
	ConnectionString: "RECON_STORAGE_CONNECTION_STRING",
	ServiceURL:       "RECON_STORAGE_SERVICE_URL",
	MaxListSize:      "RECON_STORAGE_MAX_LIST_SIZE",
}

var generationEnv = &generation.Env{
	Provider:   "RECON_GENERATION_PROVIDER",
	BaseURL:    "RECON_GENERATION_BASE_URL",
	Token:      "RECON_GENERATION_TOKEN",
	Model:      "RECON_GENERATION_MODEL",
	Deployment: "RECON_GENERATION_DEPLOYMENT",
	APIVersion: "RECON_GENERATION_API_VERSION",
	AuthType:   "RECON_GENERATION_AUTH_TYPE",
	Timeout:    "RECON_GENERATION_TIMEOUT",
}

var searchEnv = &search.Env{
	Provider:       "RECON_SEARCH_PROVIDER",
	BaseURL:        "RECON_SEARCH_BASE_URL",
	Token:          "RECON_SEARCH_TOKEN",
	Timeout:        "RECON_SEARCH_TIMEOUT",
	MaxConcurrency: "RECON_SEARCH_MAX_CONCURRENCY",
	MaxResults:     "RECON_SEARCH_MAX_RESULTS",
}

var memoryEnv = &memory.Env{
	EmbeddingModel: "RECON_MEMORY_EMBEDDING_MODEL",
	BaseURL:        "RECON_MEMORY_BASE_URL",
	Token:          "RECON_MEMORY_TOKEN",
	TopK:           "RECON_MEMORY_TOP_K",
	ChunkSize:      "RECON_MEMORY_CHUNK_SIZE",
	ChunkOverlap:   "RECON_MEMORY_CHUNK_OVERLAP",
}

var workflowEnv = &workflow.Env{
	Timeout: "RECON_WORKFLOW_TIMEOUT",
	Trace:   "RECON_WORKFLOW_TRACE",
}

var agentsEnv = &agents.Env{
	Initiatives: agents.SettingsEnv{
		Model:          "RECON_AGENTS_INITIATIVES_MODEL",
		Memory:         "RECON_AGENTS_INITIATIVES_MEMORY",
		SearchProvider: "RECON_AGENTS_INITIATIVES_SEARCH_PROVIDER",
	},
	Dossier: agents.SettingsEnv{
		Model:          "RECON_AGENTS_DOSSIER_MODEL",
		Memory:         "RECON_AGENTS_DOSSIER_MEMORY",
		SearchProvider: "RECON_AGENTS_DOSSIER_SEARCH_PROVIDER",
	},
	Documents: agents.SettingsEnv{
		Model:  "RECON_AGENTS_DOCUMENTS_MODEL",
		Memory: "RECON_AGENTS_DOCUMENTS_MEMORY",
	},
}

// Config is the root configuration for the recon service and CLI.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Logging         logging.Config    `toml:"logging"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Generation      generation.Config `toml:"generation"`
	Search          search.Config     `toml:"search"`
	Memory          memory.Config     `toml:"memory"`
	Workflow        workflow.Config   `toml:"workflow"`
	Agents          agents.Config     `toml:"agents"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the RECON_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvReconEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads config.toml from the working directory if present.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile reads the base config at path (if present), applies any
// environment overlay beside it, and finalizes all values. Without a base
// file, defaults and environment variables provide all configuration.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(filepath.Dir(path)); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Generation.Merge(&overlay.Generation)
	c.Search.Merge(&overlay.Search)
	c.Memory.Merge(&overlay.Memory)
	c.Workflow.Merge(&overlay.Workflow)
	c.Agents.Merge(&overlay.Agents)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"logging", func() error { return c.Logging.Finalize(loggingEnv) }},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"generation", func() error { return c.Generation.Finalize(generationEnv) }},
		{"search", func() error { return c.Search.Finalize(searchEnv) }},
		{"memory", func() error { return c.Memory.Finalize(memoryEnv) }},
		{"workflow", func() error { return c.Workflow.Finalize(workflowEnv) }},
		{"agents", func() error { return c.Agents.Finalize(agentsEnv) }},
	}

	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if c.Workflow.Trace == workflow.TraceStorage && !c.Storage.Configured() {
		return fmt.Errorf("workflow: trace %q requires storage.connection_string or storage.service_url", workflow.TraceStorage)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvReconShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvReconVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvReconEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
