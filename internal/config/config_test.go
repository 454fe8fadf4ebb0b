package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != DriverMemory || !cfg.Store.AutoMigrate {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Store.CacheTable != "request_caches" || cfg.Store.BlacklistTable != "blacklist" {
		t.Fatalf("unexpected table defaults: %+v", cfg.Store)
	}
	if got := cfg.FetchTimeout(); got != 5*time.Second {
		t.Fatalf("expected 5s fetch timeout, got %v", got)
	}
	if got := cfg.BlacklistTTL(); got != 24*time.Hour {
		t.Fatalf("expected 24h ttl, got %v", got)
	}
	if got := cfg.SweepInterval(); got != 15*time.Minute {
		t.Fatalf("expected 15m sweep interval, got %v", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  rate_per_client: 2.5
  burst_per_client: 3
auth:
  enabled: true
  api_key: secret
http:
  timeout_seconds: 12
  user_agent: test-agent
blacklist:
  ttl_seconds: 60
  sweep_interval_seconds: 10
store:
  driver: postgres
  dsn: postgres://localhost/images
  cache_table: cached
  max_conns: 4
  auto_migrate: false
api_keys:
  flickr: flickr-key
  mobypicture: moby-key
logging:
  development: false
  error_file: /tmp/errors.log
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Auth.Enabled || cfg.Auth.APIKey != "secret" {
		t.Fatalf("expected auth enabled with secret key")
	}
	if cfg.HTTP.UserAgent != "test-agent" || cfg.FetchTimeout() != 12*time.Second {
		t.Fatalf("expected http overrides to apply: %+v", cfg.HTTP)
	}
	if cfg.Server.RatePerClient != 2.5 || cfg.Server.BurstPerClient != 3 {
		t.Fatalf("expected rate limit overrides: %+v", cfg.Server)
	}
	if cfg.Store.Driver != DriverPostgres || cfg.Store.CacheTable != "cached" || cfg.Store.MaxConns != 4 {
		t.Fatalf("expected store overrides to apply: %+v", cfg.Store)
	}
	if cfg.Store.BlacklistTable != "blacklist" {
		t.Fatalf("expected blacklist table default to survive, got %q", cfg.Store.BlacklistTable)
	}
	if cfg.Store.AutoMigrate {
		t.Fatal("expected auto_migrate override")
	}
	if cfg.APIKeys.Flickr != "flickr-key" || cfg.APIKeys.Mobypicture != "moby-key" {
		t.Fatalf("expected api keys to load: %+v", cfg.APIKeys)
	}
	if cfg.Logging.Development || cfg.Logging.ErrorFile != "/tmp/errors.log" {
		t.Fatalf("expected logging overrides: %+v", cfg.Logging)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected read config error, got %v", err)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:    ServerConfig{Port: 8080},
		HTTP:      HTTPConfig{TimeoutSeconds: 5},
		Blacklist: BlacklistConfig{TTLSeconds: 60, SweepIntervalSeconds: 10},
		Store:     StoreConfig{Driver: DriverMemory},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to validate, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "invalid port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "invalid timeout", mutate: func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, want: "http.timeout_seconds"},
		{name: "negative rate", mutate: func(c *Config) { c.Server.RatePerClient = -1 }, want: "server.rate_per_client"},
		{name: "invalid ttl", mutate: func(c *Config) { c.Blacklist.TTLSeconds = -1 }, want: "blacklist.ttl_seconds"},
		{
			name:   "invalid sweep interval",
			mutate: func(c *Config) { c.Blacklist.SweepIntervalSeconds = 0 },
			want:   "blacklist.sweep_interval_seconds",
		},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "redis" }, want: "store.driver"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store.Driver = DriverPostgres }, want: "store.dsn"},
		{name: "auth missing api key", mutate: func(c *Config) { c.Auth.Enabled = true }, want: "auth.api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
