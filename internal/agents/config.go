package agents

import (
	"fmt"

	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/pkg/envvar"
)

// Settings tune one agent. An empty Model uses the generation default and
// an empty SearchProvider uses the search default.
type Settings struct {
	Model          string `toml:"model"`
	Memory         string `toml:"memory"`
	SearchProvider string `toml:"search_provider"`
}

// SettingsEnv maps Settings fields to environment variable names.
type SettingsEnv struct {
	Model          string
	Memory         string
	SearchProvider string
}

// Config holds per-agent settings.
type Config struct {
	Initiatives Settings `toml:"initiatives"`
	Dossier     Settings `toml:"dossier"`
	Documents   Settings `toml:"documents"`
}

// Env maps each agent's settings to environment variable names.
type Env struct {
	Initiatives SettingsEnv
	Dossier     SettingsEnv
	Documents   SettingsEnv
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.Initiatives.loadEnv(&env.Initiatives)
		c.Dossier.loadEnv(&env.Dossier)
		c.Documents.loadEnv(&env.Documents)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	c.Initiatives.merge(&overlay.Initiatives)
	c.Dossier.merge(&overlay.Dossier)
	c.Documents.merge(&overlay.Documents)
}

func (c *Config) loadDefaults() {
	if c.Initiatives.Memory == "" {
		c.Initiatives.Memory = "ai-intelligence-reports"
	}
	if c.Dossier.Memory == "" {
		c.Dossier.Memory = "intelligence-sources"
	}
	if c.Documents.Memory == "" {
		c.Documents.Memory = "document-chat"
	}
}

func (c *Config) validate() error {
	for name, s := range map[string]Settings{
		NameInitiatives: c.Initiatives,
		NameDossier:     c.Dossier,
		NameDocuments:   c.Documents,
	} {
		if err := memory.ValidateName(s.Memory); err != nil {
			return fmt.Errorf("%s.memory: %w", name, err)
		}
	}
	return nil
}

func (s *Settings) merge(overlay *Settings) {
	if overlay.Model != "" {
		s.Model = overlay.Model
	}
	if overlay.Memory != "" {
		s.Memory = overlay.Memory
	}
	if overlay.SearchProvider != "" {
		s.SearchProvider = overlay.SearchProvider
	}
}

func (s *Settings) loadEnv(env *SettingsEnv) {
	envvar.String(env.Model, &s.Model)
	envvar.String(env.Memory, &s.Memory)
	envvar.String(env.SearchProvider, &s.SearchProvider)
}
