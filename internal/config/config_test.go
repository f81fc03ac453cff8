package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/recon/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"

[logging]
level = "debug"
format = "json"

[database]
host = "localhost"
port = 5432
name = "recon"
user = "recon"
password = "recon"

[storage]
container_name = "traces"
connection_string = "UseDevelopmentStorage=true"

[api]
base_path = "/api"

[api.pagination]
default_page_size = 25
max_page_size = 50

[generation]
provider = "openai"
model = "gpt-5-mini"

[search]
provider = "duckduckgo"
max_results = 10

[memory]
top_k = 8

[workflow]
trace = "storage"

[agents.dossier]
model = "gpt-5"
memory = "dossier-guidelines"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[agents.initiatives]
search_provider = "exa"
`

const minimalConfig = `
[database]
name = "recon"
user = "recon"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func load(t *testing.T, content string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", content)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := load(t, baseConfig)

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format: got %s, want json", cfg.Logging.Format)
	}
	if cfg.Storage.ContainerName != "traces" {
		t.Errorf("storage container: got %s, want traces", cfg.Storage.ContainerName)
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
	if cfg.Search.Provider != "duckduckgo" {
		t.Errorf("search provider: got %s, want duckduckgo", cfg.Search.Provider)
	}
	if cfg.Memory.TopK != 8 {
		t.Errorf("memory top_k: got %d, want 8", cfg.Memory.TopK)
	}
	if cfg.Agents.Dossier.Model != "gpt-5" {
		t.Errorf("dossier model: got %s, want gpt-5", cfg.Agents.Dossier.Model)
	}
	if cfg.Agents.Dossier.Memory != "dossier-guidelines" {
		t.Errorf("dossier memory: got %s, want dossier-guidelines", cfg.Agents.Dossier.Memory)
	}
	if cfg.Agents.Initiatives.Memory != "ai-intelligence-reports" {
		t.Errorf("initiatives memory default: got %s", cfg.Agents.Initiatives.Memory)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("RECON_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Agents.Initiatives.SearchProvider != "exa" {
		t.Errorf("initiatives search provider: got %s, want exa", cfg.Agents.Initiatives.SearchProvider)
	}
	if cfg.Agents.Dossier.Model != "gpt-5" {
		t.Errorf("dossier model: got %s, want gpt-5 (from base)", cfg.Agents.Dossier.Model)
	}
}

func TestLoadFileOverlayBesideBase(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, t.TempDir())

	t.Setenv("RECON_ENV", "staging")

	cfg, err := config.LoadFile(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	env := map[string]string{
		"RECON_VERSION":                       "2.0.0",
		"RECON_SERVER_PORT":                   "3000",
		"RECON_LOG_LEVEL":                     "warn",
		"RECON_GENERATION_MODEL":              "gpt-5",
		"RECON_SEARCH_MAX_RESULTS":            "40",
		"RECON_MEMORY_TOP_K":                  "3",
		"RECON_WORKFLOW_TIMEOUT":              "2m",
		"RECON_AGENTS_DOCUMENTS_MEMORY":       "handbook",
		"RECON_AGENTS_DOSSIER_SEARCH_PROVIDER": "exa",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"version", cfg.Version, "2.0.0"},
		{"log level", cfg.Logging.Level, "warn"},
		{"generation model", cfg.Generation.Model, "gpt-5"},
		{"workflow timeout", cfg.Workflow.Timeout, "2m"},
		{"documents memory", cfg.Agents.Documents.Memory, "handbook"},
		{"dossier search provider", cfg.Agents.Dossier.SearchProvider, "exa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Search.MaxResults != 40 {
		t.Errorf("search max_results: got %d, want 40", cfg.Search.MaxResults)
	}
	if cfg.Memory.TopK != 3 {
		t.Errorf("memory top_k: got %d, want 3", cfg.Memory.TopK)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("RECON_DB_NAME", "testdb")
	t.Setenv("RECON_DB_USER", "testuser")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Generation.Model != "gpt-5-mini" {
		t.Errorf("generation model default: got %s, want gpt-5-mini", cfg.Generation.Model)
	}
	if cfg.Workflow.Trace != "log" {
		t.Errorf("workflow trace default: got %s, want log", cfg.Workflow.Trace)
	}
	if cfg.Storage.Configured() {
		t.Error("storage should not be configured by default")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{
			name:    "invalid toml",
			content: `[server`,
			want:    "parse config",
		},
		{
			name:    "missing database name",
			content: "[database]\nuser = \"recon\"\n",
			want:    "database",
		},
		{
			name:    "invalid port",
			content: minimalConfig,
			env:     map[string]string{"RECON_SERVER_PORT": "70000"},
			want:    "server",
		},
		{
			name:    "zero write timeout",
			content: minimalConfig,
			env:     map[string]string{"RECON_SERVER_WRITE_TIMEOUT": "0s"},
			want:    "write_timeout",
		},
		{
			name:    "unknown search provider",
			content: minimalConfig,
			env:     map[string]string{"RECON_SEARCH_PROVIDER": "bing"},
			want:    "search",
		},
		{
			name:    "invalid memory name",
			content: minimalConfig,
			env:     map[string]string{"RECON_AGENTS_DOSSIER_MEMORY": "Bad Name"},
			want:    "agents",
		},
		{
			name:    "storage trace without account",
			content: minimalConfig,
			env:     map[string]string{"RECON_WORKFLOW_TRACE": "storage"},
			want:    "requires storage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.content)
			chdir(t, dir)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestEnv(t *testing.T) {
	cfg := load(t, minimalConfig)
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}

	t.Setenv("RECON_ENV", "production")
	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestDurations(t *testing.T) {
	cfg := load(t, baseConfig)

	if got := cfg.ShutdownTimeoutDuration(); got != 30*time.Second {
		t.Errorf("shutdown timeout: got %s, want 30s", got)
	}
	if got := cfg.Server.WriteTimeoutDuration(); got != 15*time.Minute {
		t.Errorf("write timeout: got %s, want 15m", got)
	}
	if got := cfg.Server.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", got)
	}
}

func TestMaxUploadSize(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int64
	}{
		{"default", "", 50 * 1024 * 1024},
		{"override", "10MB", 10 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("RECON_API_MAX_UPLOAD_SIZE", tt.env)
			}
			cfg := load(t, minimalConfig)
			if got := cfg.API.MaxUploadSizeBytes(); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
