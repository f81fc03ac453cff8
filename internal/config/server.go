package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/JaimeStill/recon/pkg/envvar"
)

var serverEnv = struct {
	Host, Port, ReadTimeout, WriteTimeout, ShutdownTimeout string
}{
	Host:            "RECON_SERVER_HOST",
	Port:            "RECON_SERVER_PORT",
	ReadTimeout:     "RECON_SERVER_READ_TIMEOUT",
	WriteTimeout:    "RECON_SERVER_WRITE_TIMEOUT",
	ShutdownTimeout: "RECON_SERVER_SHUTDOWN_TIMEOUT",
}

// ServerConfig holds HTTP server parameters. WriteTimeout bounds a whole
// agent run served over HTTP, so its default is generous.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(c.ReadTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return mustDuration(c.WriteTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Finalize applies defaults, RECON_SERVER_* overrides, and validation.
func (c *ServerConfig) Finalize() error {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "1m"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "15m"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}

	envvar.String(serverEnv.Host, &c.Host)
	envvar.Int(serverEnv.Port, &c.Port)
	envvar.String(serverEnv.ReadTimeout, &c.ReadTimeout)
	envvar.String(serverEnv.WriteTimeout, &c.WriteTimeout)
	envvar.String(serverEnv.ShutdownTimeout, &c.ShutdownTimeout)

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s: %q", name, v)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.ReadTimeout != "" {
		c.ReadTimeout = overlay.ReadTimeout
	}
	if overlay.WriteTimeout != "" {
		c.WriteTimeout = overlay.WriteTimeout
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
