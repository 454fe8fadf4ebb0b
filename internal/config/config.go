// Package config loads and validates resolver configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Blacklist BlacklistConfig `mapstructure:"blacklist"`
	Store     StoreConfig     `mapstructure:"store"`
	APIKeys   APIKeysConfig   `mapstructure:"api_keys"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int     `mapstructure:"port"`
	RatePerClient  float64 `mapstructure:"rate_per_client"`
	BurstPerClient int     `mapstructure:"burst_per_client"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// HTTPConfig configures outbound page fetches.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
}

// BlacklistConfig controls how long failed pages stay blacklisted.
type BlacklistConfig struct {
	TTLSeconds           int `mapstructure:"ttl_seconds"`
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"`
}

// StoreConfig selects and configures the cache/blacklist backend.
type StoreConfig struct {
	Driver         string `mapstructure:"driver"`
	DSN            string `mapstructure:"dsn"`
	CacheTable     string `mapstructure:"cache_table"`
	BlacklistTable string `mapstructure:"blacklist_table"`
	MaxConns       int32  `mapstructure:"max_conns"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
}

// APIKeysConfig holds credentials spliced into third-party API templates.
type APIKeysConfig struct {
	Flickr      string `mapstructure:"flickr"`
	Mobypicture string `mapstructure:"mobypicture"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	ErrorFile   string `mapstructure:"error_file"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("IMGRESOLVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_client", 0)
	v.SetDefault("server.burst_per_client", 10)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("http.timeout_seconds", 5)
	v.SetDefault("http.user_agent", "imgresolver/1.0")
	v.SetDefault("http.respect_robots", false)
	v.SetDefault("blacklist.ttl_seconds", 86400)
	v.SetDefault("blacklist.sweep_interval_seconds", 900)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.cache_table", "request_caches")
	v.SetDefault("store.blacklist_table", "blacklist")
	v.SetDefault("store.max_conns", 0)
	v.SetDefault("store.auto_migrate", true)
	v.SetDefault("api_keys.flickr", "")
	v.SetDefault("api_keys.mobypicture", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.error_file", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Server.RatePerClient < 0 {
		return fmt.Errorf("server.rate_per_client must be >= 0")
	}
	if c.Blacklist.TTLSeconds <= 0 {
		return fmt.Errorf("blacklist.ttl_seconds must be > 0")
	}
	if c.Blacklist.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("blacklist.sweep_interval_seconds must be > 0")
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn must be set when store.driver is %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverMemory, DriverPostgres, c.Store.Driver)
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// FetchTimeout is the per-page fetch budget.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// BlacklistTTL is how long a blacklist entry survives before a sweep removes it.
func (c Config) BlacklistTTL() time.Duration {
	return time.Duration(c.Blacklist.TTLSeconds) * time.Second
}

// SweepInterval is the period between blacklist sweeps.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.Blacklist.SweepIntervalSeconds) * time.Second
}
