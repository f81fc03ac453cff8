package middleware

import "github.com/JaimeStill/recon/pkg/envvar"

// CORSConfig holds CORS policy settings. A nil ExposedHeaders defaults to
// the request id header; an empty list exposes nothing.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	ExposedHeaders   []string `toml:"exposed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv maps CORS config fields to environment variable names for override injection.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	ExposedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults and environment variable overrides.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
	}
	if c.ExposedHeaders == nil {
		c.ExposedHeaders = []string{RequestIDHeader}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}

	if env != nil {
		envvar.Bool(env.Enabled, &c.Enabled)
		envvar.List(env.Origins, &c.Origins)
		envvar.List(env.AllowedMethods, &c.AllowedMethods)
		envvar.List(env.AllowedHeaders, &c.AllowedHeaders)
		envvar.List(env.ExposedHeaders, &c.ExposedHeaders)
		envvar.Bool(env.AllowCredentials, &c.AllowCredentials)
		envvar.Int(env.MaxAge, &c.MaxAge)
	}
	return nil
}

// Merge overwrites fields set in overlay. An overlay can enable CORS or
// credentials but not disable them; use the environment for that.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = c.Enabled || overlay.Enabled
	c.AllowCredentials = c.AllowCredentials || overlay.AllowCredentials

	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
	if overlay.ExposedHeaders != nil {
		c.ExposedHeaders = overlay.ExposedHeaders
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}
