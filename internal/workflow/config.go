package workflow

import (
	"fmt"
	"time"

	"github.com/JaimeStill/recon/pkg/envvar"
)

// Trace sink kinds.
const (
	TraceNone    = "none"
	TraceLog     = "log"
	TraceStorage = "storage"
)

// Config holds run execution settings. An empty Timeout leaves runs
// unbounded.
type Config struct {
	Timeout string `toml:"timeout"`
	Trace   string `toml:"trace"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Timeout string
	Trace   string
}

// TimeoutDuration returns Timeout as a time.Duration, zero when unset.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 0
	}
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
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Trace != "" {
		c.Trace = overlay.Trace
	}
}

func (c *Config) loadDefaults() {
	if c.Trace == "" {
		c.Trace = TraceLog
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(env.Timeout, &c.Timeout)
	envvar.String(env.Trace, &c.Trace)
}

func (c *Config) validate() error {
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("timeout must not be negative")
		}
	}
	switch c.Trace {
	case TraceNone, TraceLog, TraceStorage:
	default:
		return fmt.Errorf("unknown trace sink %q", c.Trace)
	}
	return nil
}
