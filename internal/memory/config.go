package memory

import (
	"fmt"

	"github.com/JaimeStill/recon/pkg/envvar"
)

// Config holds embedding and retrieval settings.
type Config struct {
	EmbeddingModel string `toml:"embedding_model"`
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	Dimensions     int    `toml:"dimensions"`
	TopK           int    `toml:"top_k"`
	ChunkSize      int    `toml:"chunk_size"`
	ChunkOverlap   int    `toml:"chunk_overlap"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	EmbeddingModel string
	BaseURL        string
	Token          string
	TopK           string
	ChunkSize      string
	ChunkOverlap   string
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
	if overlay.EmbeddingModel != "" {
		c.EmbeddingModel = overlay.EmbeddingModel
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Dimensions != 0 {
		c.Dimensions = overlay.Dimensions
	}
	if overlay.TopK != 0 {
		c.TopK = overlay.TopK
	}
	if overlay.ChunkSize != 0 {
		c.ChunkSize = overlay.ChunkSize
	}
	if overlay.ChunkOverlap != 0 {
		c.ChunkOverlap = overlay.ChunkOverlap
	}
}

func (c *Config) loadDefaults() {
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "gemini-embedding-001"
	}
	if c.Dimensions == 0 {
		c.Dimensions = 768
	}
	if c.TopK == 0 {
		c.TopK = 5
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 1200
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 200
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(env.EmbeddingModel, &c.EmbeddingModel)
	envvar.String(env.BaseURL, &c.BaseURL)
	envvar.String(env.Token, &c.Token)
	envvar.Int(env.TopK, &c.TopK)
	envvar.Int(env.ChunkSize, &c.ChunkSize)
	envvar.Int(env.ChunkOverlap, &c.ChunkOverlap)
}

func (c *Config) validate() error {
	// memory_passages.embedding is declared vector(768)
	if c.Dimensions != 768 {
		return fmt.Errorf("dimensions must be 768, got %d", c.Dimensions)
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.ChunkSize < 100 {
		return fmt.Errorf("chunk_size must be at least 100")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be between 0 and chunk_size")
	}
	return nil
}
